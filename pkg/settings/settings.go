// Package settings holds the brand configuration: identity, tone, provider
// selection, API keys and social account credentials. The configuration lives
// in a single JSON file edited through the console's settings page.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Provider names accepted for TextProvider / ImageProvider.
const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderLeonardo  = "leonardo"
	ProviderRunway    = "runway"
)

// APIKeys holds one key slot per provider.
type APIKeys struct {
	OpenAI    string `json:"openai,omitempty"`
	Gemini    string `json:"gemini,omitempty"`
	Anthropic string `json:"anthropic,omitempty"`
	Leonardo  string `json:"leonardo,omitempty"`
	Runway    string `json:"runway,omitempty"`
}

// ForProvider returns the key configured for the named provider, or "".
func (k APIKeys) ForProvider(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return k.OpenAI
	case ProviderGemini:
		return k.Gemini
	case ProviderAnthropic:
		return k.Anthropic
	case ProviderLeonardo:
		return k.Leonardo
	case ProviderRunway:
		return k.Runway
	}
	return ""
}

// TwitterCredentials are OAuth 1.0a user-context credentials.
type TwitterCredentials struct {
	Username          string `json:"username"`
	APIKey            string `json:"apiKey"`
	APISecret         string `json:"apiSecret"`
	AccessToken       string `json:"accessToken"`
	AccessTokenSecret string `json:"accessTokenSecret"`
}

// Complete reports whether all four signing credentials are present.
func (c *TwitterCredentials) Complete() bool {
	return c != nil && c.APIKey != "" && c.APISecret != "" &&
		c.AccessToken != "" && c.AccessTokenSecret != ""
}

// FacebookCredentials identify a page and its access token.
type FacebookCredentials struct {
	PageID      string `json:"pageId"`
	AccessToken string `json:"accessToken"`
}

// InstagramCredentials identify a business account.
type InstagramCredentials struct {
	Username    string `json:"username"`
	AccessToken string `json:"accessToken"`
}

// LinkedInCredentials identify a member profile.
type LinkedInCredentials struct {
	ProfileID   string `json:"profileId"`
	AccessToken string `json:"accessToken"`
}

// SocialAccounts holds per-platform posting credentials.
type SocialAccounts struct {
	Twitter   *TwitterCredentials   `json:"twitter,omitempty"`
	Facebook  *FacebookCredentials  `json:"facebook,omitempty"`
	Instagram *InstagramCredentials `json:"instagram,omitempty"`
	LinkedIn  *LinkedInCredentials  `json:"linkedin,omitempty"`
}

// BrandConfig is the full brand profile used to steer content generation.
type BrandConfig struct {
	Name           string   `json:"name" validate:"required"`
	Logo           string   `json:"logo,omitempty"`
	Industry       string   `json:"industry"`
	PrimaryColor   string   `json:"primaryColor"`
	SecondaryColor string   `json:"secondaryColor"`
	AccentColor    string   `json:"accentColor"`
	BrandVoice     string   `json:"brandVoice"`
	TargetAudience []string `json:"targetAudience"`
	Languages      []string `json:"languages"`
	Values         []string `json:"values"`
	Keywords       []string `json:"keywords"`
	Competitors    []string `json:"competitors"`
	Description    string   `json:"description"`

	TextProvider  string `json:"textProvider" validate:"omitempty,oneof=openai gemini anthropic"`
	ImageProvider string `json:"imageProvider" validate:"omitempty,oneof=openai gemini leonardo runway"`

	APIKeys        APIKeys        `json:"apiKeys"`
	SocialAccounts SocialAccounts `json:"socialAccounts"`
}

// clone returns a deep copy so callers cannot mutate the stored config.
func (c *BrandConfig) clone() *BrandConfig {
	if c == nil {
		return nil
	}
	out := *c
	out.TargetAudience = append([]string(nil), c.TargetAudience...)
	out.Languages = append([]string(nil), c.Languages...)
	out.Values = append([]string(nil), c.Values...)
	out.Keywords = append([]string(nil), c.Keywords...)
	out.Competitors = append([]string(nil), c.Competitors...)
	if c.SocialAccounts.Twitter != nil {
		tw := *c.SocialAccounts.Twitter
		out.SocialAccounts.Twitter = &tw
	}
	if c.SocialAccounts.Facebook != nil {
		fb := *c.SocialAccounts.Facebook
		out.SocialAccounts.Facebook = &fb
	}
	if c.SocialAccounts.Instagram != nil {
		ig := *c.SocialAccounts.Instagram
		out.SocialAccounts.Instagram = &ig
	}
	if c.SocialAccounts.LinkedIn != nil {
		li := *c.SocialAccounts.LinkedIn
		out.SocialAccounts.LinkedIn = &li
	}
	return &out
}

// Reader is the read-only settings view the executors depend on.
type Reader interface {
	// Current returns a snapshot of the configuration, or nil when the
	// console has not been configured yet.
	Current() *BrandConfig
}

// Service is the file-backed settings store.
type Service struct {
	path string

	mu  sync.RWMutex
	cfg *BrandConfig
}

// NewService loads the configuration at path if it exists. A missing file is
// not an error: Current simply returns nil until the first Save.
func NewService(path string) (*Service, error) {
	s := &Service{path: path}
	if err := s.reload(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return s, nil
}

// Current returns a snapshot of the configuration, or nil if unconfigured.
func (s *Service) Current() *BrandConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.clone()
}

// Save persists cfg to disk and makes it the current snapshot.
func (s *Service) Save(cfg *BrandConfig) error {
	if cfg == nil {
		return fmt.Errorf("settings: nil config")
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("settings: write %s: %w", s.path, err)
	}
	s.mu.Lock()
	s.cfg = cfg.clone()
	s.mu.Unlock()
	return nil
}

// reload reads the settings file into the current snapshot.
func (s *Service) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("settings: read %s: %w", s.path, err)
	}
	var cfg BrandConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("settings: parse %s: %w", s.path, err)
	}
	s.mu.Lock()
	s.cfg = &cfg
	s.mu.Unlock()
	return nil
}

// Path returns the backing file path.
func (s *Service) Path() string { return s.path }
