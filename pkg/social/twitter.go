package social

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/postforge/postforge/pkg/settings"
)

const (
	twitterAPIBase    = "https://api.twitter.com"
	twitterUploadBase = "https://upload.twitter.com"

	maxImageBytes = 5 << 20 // media/upload limit for images
)

// TwitterClient posts tweets with optional media using OAuth 1.0a
// user-context signing.
type TwitterClient struct {
	creds      settings.TwitterCredentials
	httpClient *http.Client

	// Overridable in tests.
	apiBase    string
	uploadBase string
	nonce      func() string
	now        func() time.Time
}

// NewTwitterClient builds a client around the given credentials.
func NewTwitterClient(creds settings.TwitterCredentials) *TwitterClient {
	return &TwitterClient{
		creds:      creds,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiBase:    twitterAPIBase,
		uploadBase: twitterUploadBase,
		nonce:      func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
		now:        time.Now,
	}
}

// Post publishes content as a tweet. When imageURL is set, the image is
// downloaded, uploaded as media, and attached.
func (c *TwitterClient) Post(ctx context.Context, content, imageURL string) (PostResult, error) {
	var mediaID string
	if imageURL != "" {
		id, err := c.uploadImage(ctx, imageURL)
		if err != nil {
			return PostResult{}, fmt.Errorf("twitter: upload media: %w", err)
		}
		mediaID = id
	}

	body := map[string]any{"text": content}
	if mediaID != "" {
		body["media"] = map[string]any{"media_ids": []string{mediaID}}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return PostResult{}, fmt.Errorf("twitter: encode tweet: %w", err)
	}

	endpoint := c.apiBase + "/2/tweets"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return PostResult{}, fmt.Errorf("twitter: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// JSON bodies are excluded from the OAuth 1.0a signature base string.
	req.Header.Set("Authorization", c.authorizationHeader(http.MethodPost, endpoint, nil))

	raw, err := c.do(req)
	if err != nil {
		return PostResult{}, fmt.Errorf("twitter: create tweet: %w", err)
	}
	id := gjson.GetBytes(raw, "data.id").String()
	if id == "" {
		return PostResult{}, fmt.Errorf("twitter: response carried no tweet id")
	}
	return PostResult{PostID: id}, nil
}

// Verify checks the credentials against the account endpoint and returns the
// authenticated screen name.
func (c *TwitterClient) Verify(ctx context.Context) (string, error) {
	endpoint := c.apiBase + "/1.1/account/verify_credentials.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("twitter: build request: %w", err)
	}
	req.Header.Set("Authorization", c.authorizationHeader(http.MethodGet, endpoint, nil))

	raw, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("twitter: verify credentials: %w", err)
	}
	name := gjson.GetBytes(raw, "screen_name").String()
	if name == "" {
		return "", fmt.Errorf("twitter: response carried no screen name")
	}
	return name, nil
}

// uploadImage fetches the image and uploads it via the v1.1 media endpoint,
// returning the media ID to attach.
func (c *TwitterClient) uploadImage(ctx context.Context, imageURL string) (string, error) {
	imgReq, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build image request: %w", err)
	}
	imgResp, err := c.httpClient.Do(imgReq)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	defer func() { _ = imgResp.Body.Close() }()
	if imgResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch image: status %d", imgResp.StatusCode)
	}
	img, err := io.ReadAll(io.LimitReader(imgResp.Body, maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(img) > maxImageBytes {
		return "", fmt.Errorf("image exceeds %d byte media limit", maxImageBytes)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("media", "media")
	if err != nil {
		return "", fmt.Errorf("build multipart: %w", err)
	}
	if _, err := part.Write(img); err != nil {
		return "", fmt.Errorf("write multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	endpoint := c.uploadBase + "/1.1/media/upload.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	// Multipart bodies are excluded from the signature base string.
	req.Header.Set("Authorization", c.authorizationHeader(http.MethodPost, endpoint, nil))

	raw, err := c.do(req)
	if err != nil {
		return "", err
	}
	id := gjson.GetBytes(raw, "media_id_string").String()
	if id == "" {
		return "", fmt.Errorf("upload response carried no media id")
	}
	return id, nil
}

// do executes the request and returns the body, turning non-2xx statuses into
// errors that carry the platform's own message when one is present.
func (c *TwitterClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := gjson.GetBytes(raw, "detail").String()
		if msg == "" {
			msg = gjson.GetBytes(raw, "errors.0.message").String()
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	}
	return raw, nil
}

// authorizationHeader builds the OAuth 1.0a header for a request. extraParams
// are request parameters that participate in the signature (query or
// form-encoded body values); JSON and multipart bodies contribute nothing.
func (c *TwitterClient) authorizationHeader(method, rawURL string, extraParams map[string]string) string {
	oauthParams := map[string]string{
		"oauth_consumer_key":     c.creds.APIKey,
		"oauth_nonce":            c.nonce(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        fmt.Sprintf("%d", c.now().Unix()),
		"oauth_token":            c.creds.AccessToken,
		"oauth_version":          "1.0",
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	// Signature base string: all oauth, query and extra params,
	// percent-encoded, sorted, joined.
	all := make(map[string]string, len(oauthParams)+len(extraParams))
	for k, v := range oauthParams {
		all[k] = v
	}
	for k, vs := range u.Query() {
		if len(vs) > 0 {
			all[k] = vs[0]
		}
	}
	for k, v := range extraParams {
		all[k] = v
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, percentEncode(k)+"="+percentEncode(all[k]))
	}
	baseURL := u.Scheme + "://" + u.Host + u.Path
	baseString := strings.ToUpper(method) + "&" + percentEncode(baseURL) + "&" + percentEncode(strings.Join(pairs, "&"))

	signingKey := percentEncode(c.creds.APISecret) + "&" + percentEncode(c.creds.AccessTokenSecret)
	mac := hmac.New(sha1.New, []byte(signingKey))
	mac.Write([]byte(baseString))
	oauthParams["oauth_signature"] = base64.StdEncoding.EncodeToString(mac.Sum(nil))

	hdrKeys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		hdrKeys = append(hdrKeys, k)
	}
	sort.Strings(hdrKeys)
	hdrPairs := make([]string, 0, len(hdrKeys))
	for _, k := range hdrKeys {
		hdrPairs = append(hdrPairs, fmt.Sprintf("%s=%q", percentEncode(k), percentEncode(oauthParams[k])))
	}
	return "OAuth " + strings.Join(hdrPairs, ", ")
}

// percentEncode implements RFC 3986 encoding as OAuth 1.0a requires:
// everything but unreserved characters is %XX-escaped, uppercase hex.
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= 'A' && ch <= 'Z', ch >= 'a' && ch <= 'z',
			ch >= '0' && ch <= '9', ch == '-', ch == '.', ch == '_', ch == '~':
			b.WriteByte(ch)
		default:
			fmt.Fprintf(&b, "%%%02X", ch)
		}
	}
	return b.String()
}
