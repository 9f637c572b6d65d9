package ai

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/postforge/postforge/pkg/settings"
)

// LanguageNames maps supported language codes to their English names, used
// when instructing the model.
var LanguageNames = map[string]string{
	"tr": "Turkish",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
}

// DefaultCharacterLimits are the per-platform post length ceilings used when
// the caller does not supply its own.
var DefaultCharacterLimits = map[string]int{
	"twitter":   280,
	"instagram": 2200,
	"facebook":  5000,
	"linkedin":  3000,
}

// ChatSystemPrompt steers the console's chat assistant.
const ChatSystemPrompt = "You are a helpful assistant focused on social media and content creation. Provide concise, practical advice."

// ContentRequest describes a brand-aware multi-platform generation request.
type ContentRequest struct {
	Topic           string
	Platforms       []string
	CharacterLimits map[string]int
	Tone            string
	Language        string
	IncludeEmojis   bool
	IncludeHashtags bool
	HashtagCount    int
}

// languageName resolves a code to a name, defaulting to English.
func languageName(code string) string {
	if name, ok := LanguageNames[code]; ok {
		return name
	}
	return "English"
}

func (r ContentRequest) limit(platform string) int {
	if n, ok := r.CharacterLimits[platform]; ok {
		return n
	}
	if n, ok := DefaultCharacterLimits[platform]; ok {
		return n
	}
	return 280
}

// ContentSystemPrompt is the system message for brand content generation.
func ContentSystemPrompt(language string) string {
	return fmt.Sprintf("You are an expert social media content creator who creates engaging, "+
		"platform-optimized content in %s. You understand the unique characteristics and best "+
		"practices of each platform. Never use asterisks, quotes, or decorative characters in "+
		"your responses.", languageName(language))
}

// BuildContentPrompt assembles the full generation prompt: platform list with
// character limits, tone, brand context, and emoji/hashtag guideline blocks.
func BuildContentPrompt(req ContentRequest, brand *settings.BrandConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create unique social media content in %s for these platforms:\n", languageName(req.Language))
	for _, p := range req.Platforms {
		fmt.Fprintf(&b, "%s (%d character limit)\n", p, req.limit(p))
	}
	fmt.Fprintf(&b, "\nContent Topic: %s\nTone: %s\n", req.Topic, req.Tone)

	if brand != nil {
		fmt.Fprintf(&b, `
Brand Context:
- Name: %s
- Industry: %s
- Brand Voice: %s
- Target Audience: %s
- Brand Values: %s
- Key Keywords: %s
- Description: %s

Please ensure the content aligns with the brand's voice, values, and target audience.
Use brand-specific keywords where appropriate.
`,
			brand.Name, brand.Industry, brand.BrandVoice,
			strings.Join(brand.TargetAudience, ", "),
			strings.Join(brand.Values, ", "),
			strings.Join(brand.Keywords, ", "),
			brand.Description)
	}

	if req.IncludeEmojis {
		b.WriteString(`
Emoji Guidelines:
- Include relevant emojis naturally throughout the content
- Use 2-3 emojis per post, placed strategically
- Ensure emojis match the tone and context
- Adapt emoji usage to each platform's style (more casual on Instagram/Twitter, more professional on LinkedIn)
`)
	} else {
		b.WriteString("\nDo not use any emojis in the content.\n")
	}

	if req.IncludeHashtags {
		fmt.Fprintf(&b, `
Hashtag Guidelines:
- Add exactly %d relevant hashtags at the end of each post
- Make hashtags specific to the content and industry
- Use trending hashtags when relevant
- Format hashtags properly with # symbol
- Adapt hashtag style to each platform
`, req.HashtagCount)
	} else {
		b.WriteString("\nDo not include any hashtags in the content.\n")
	}

	b.WriteString(`
Format Requirements:
- Start each platform's content with the platform name as a header (e.g., "Twitter:", "Instagram:")
- Include all emojis and hashtags within the character limit
- Ensure each post is complete and can stand alone
- Maintain consistent brand voice across platforms while adapting to each platform's style
- Do not use asterisks, quotes, or decorative characters
- Do not add "no emoji" or "no hashtag" text when those features are disabled

CRITICAL: Strictly adhere to these character limits:
`)
	for _, p := range req.Platforms {
		fmt.Fprintf(&b, "- %s: Maximum %d characters (including spaces, emojis, and hashtags)\n", p, req.limit(p))
	}
	return b.String()
}

// BuildImagePrompt assembles the companion image prompt for a content topic.
func BuildImagePrompt(topic, tone, language string, brand *settings.BrandConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a professional social media image for:\n%s\n\nStyle: %s\n", topic, tone)
	if brand != nil {
		fmt.Fprintf(&b, `
Brand Requirements:
- Use brand colors: Primary (%s), Secondary (%s)
- Match brand voice: %s
- Appeal to: %s
- Incorporate brand values: %s
`,
			brand.PrimaryColor, brand.SecondaryColor, brand.BrandVoice,
			strings.Join(brand.TargetAudience, ", "),
			strings.Join(brand.Values, ", "))
	}
	fmt.Fprintf(&b, `
Requirements:
- Visually striking and attention-grabbing
- Suitable for social media
- Professional and polished
- Clear and well-composed
- Any text in the image should be in %s
`, languageName(language))
	return b.String()
}

// BlogRequest describes a long-form article generation request.
type BlogRequest struct {
	Topic    string
	Keywords string
	Tone     string
	Language string
}

// BlogSystemPrompt is the system message for long-form article generation.
func BlogSystemPrompt(language string) string {
	return fmt.Sprintf("You are a professional blog writer. Create engaging and "+
		"well-structured content in %s.", languageName(language))
}

// BuildBlogPrompt assembles the article prompt: topic, optional keyword list,
// tone and the structural requirements.
func BuildBlogPrompt(req BlogRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a comprehensive blog post in %s about:\n%s\n",
		languageName(req.Language), req.Topic)
	if req.Keywords != "" {
		fmt.Fprintf(&b, "\nInclude these keywords: %s\n", req.Keywords)
	}
	fmt.Fprintf(&b, "\nStyle: %s\n", req.Tone)
	b.WriteString(`
Requirements:
- Well-structured with clear sections
- Engaging and informative
- SEO-friendly
- Include a compelling introduction
- End with a strong conclusion
- Approximately 800-1000 words
`)
	return b.String()
}

// BuildBlogImagePrompt assembles the featured-image prompt for an article.
func BuildBlogImagePrompt(topic, tone, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a professional featured image for a blog post about:\n%s\n\nStyle: %s\n", topic, tone)
	fmt.Fprintf(&b, `
Requirements:
- Visually striking and attention-grabbing
- Professional and polished
- Suitable for a blog header
- Clear and well-composed
- Any text in the image should be in %s
`, languageName(language))
	return b.String()
}

var (
	edgeDecoration = regexp.MustCompile(`^[*"']+|[*"']+$`)
	noFeatureTags  = regexp.MustCompile(`#No(Emojis|Hashtags)\b`)
	horizontalRule = regexp.MustCompile(`---+`)
	blankRuns      = regexp.MustCompile(`\n{3,}`)
)

// CleanGeneratedContent strips the decoration models tend to add despite
// instructions: wrapping asterisks/quotes, #NoEmojis/#NoHashtags markers,
// horizontal rules and runs of blank lines.
func CleanGeneratedContent(content string) string {
	content = edgeDecoration.ReplaceAllString(content, "")
	content = noFeatureTags.ReplaceAllString(content, "")
	content = horizontalRule.ReplaceAllString(content, "")
	content = blankRuns.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
