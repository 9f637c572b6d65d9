package social

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/postforge/postforge/pkg/settings"
)

func testCreds() settings.TwitterCredentials {
	return settings.TwitterCredentials{
		Username:          "acme",
		APIKey:            "consumer-key",
		APISecret:         "consumer-secret",
		AccessToken:       "access-token",
		AccessTokenSecret: "access-secret",
	}
}

func testClient(srv *httptest.Server) *TwitterClient {
	c := NewTwitterClient(testCreds())
	c.httpClient = srv.Client()
	c.apiBase = srv.URL
	c.uploadBase = srv.URL
	c.nonce = func() string { return "fixednonce" }
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	return c
}

// ─── Post ─────────────────────────────────────────────────────────────────────

func TestTwitterPost_TextOnly(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2/tweets" {
			t.Errorf("path = %q, want /2/tweets", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Write([]byte(`{"data":{"id":"1234567890"}}`))
	}))
	defer srv.Close()

	c := testClient(srv)
	res, err := c.Post(context.Background(), "hello world", "")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if res.PostID != "1234567890" {
		t.Errorf("postID = %q, want %q", res.PostID, "1234567890")
	}
	if gotBody["text"] != "hello world" {
		t.Errorf("tweet text = %v, want %q", gotBody["text"], "hello world")
	}
	if _, ok := gotBody["media"]; ok {
		t.Error("text-only tweet carried a media block")
	}
	if !strings.HasPrefix(gotAuth, "OAuth ") {
		t.Errorf("Authorization = %q, want OAuth scheme", gotAuth)
	}
	for _, want := range []string{
		`oauth_consumer_key="consumer-key"`,
		`oauth_token="access-token"`,
		`oauth_signature_method="HMAC-SHA1"`,
		`oauth_timestamp="1700000000"`,
		`oauth_nonce="fixednonce"`,
		`oauth_version="1.0"`,
		"oauth_signature=",
	} {
		if !strings.Contains(gotAuth, want) {
			t.Errorf("Authorization missing %s in %q", want, gotAuth)
		}
	}
}

func TestTwitterPost_WithImage(t *testing.T) {
	image := []byte("\x89PNG fake image bytes")
	var tweetBody map[string]any
	var uploadedMedia []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/image.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(image)
		case "/1.1/media/upload.json":
			if err := r.ParseMultipartForm(10 << 20); err != nil {
				t.Fatalf("parse multipart: %v", err)
			}
			f, _, err := r.FormFile("media")
			if err != nil {
				t.Fatalf("media form file: %v", err)
			}
			uploadedMedia, _ = io.ReadAll(f)
			w.Write([]byte(`{"media_id_string":"9876"}`))
		case "/2/tweets":
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &tweetBody)
			w.Write([]byte(`{"data":{"id":"42"}}`))
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := testClient(srv)
	res, err := c.Post(context.Background(), "with pic", srv.URL+"/image.png")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if res.PostID != "42" {
		t.Errorf("postID = %q, want %q", res.PostID, "42")
	}
	if string(uploadedMedia) != string(image) {
		t.Error("uploaded media does not match the fetched image")
	}

	media, ok := tweetBody["media"].(map[string]any)
	if !ok {
		t.Fatalf("tweet body carries no media block: %v", tweetBody)
	}
	ids, _ := media["media_ids"].([]any)
	if len(ids) != 1 || ids[0] != "9876" {
		t.Errorf("media_ids = %v, want [9876]", ids)
	}
}

func TestTwitterPost_UploadFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/image.png":
			w.Write([]byte("img"))
		case "/1.1/media/upload.json":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"errors":[{"message":"media type unrecognized"}]}`))
		case "/2/tweets":
			t.Error("tweet must not be created after a failed upload")
		}
	}))
	defer srv.Close()

	c := testClient(srv)
	_, err := c.Post(context.Background(), "content", srv.URL+"/image.png")
	if err == nil {
		t.Fatal("expected upload error, got nil")
	}
	if !strings.Contains(err.Error(), "media type unrecognized") {
		t.Errorf("error = %v, want platform message surfaced", err)
	}
}

// ─── Verify ───────────────────────────────────────────────────────────────────

func TestTwitterVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/1.1/account/verify_credentials.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"screen_name":"acme_coffee"}`))
	}))
	defer srv.Close()

	c := testClient(srv)
	name, err := c.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if name != "acme_coffee" {
		t.Errorf("screen name = %q, want %q", name, "acme_coffee")
	}
}

func TestTwitterVerify_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":[{"message":"Invalid or expired token."}]}`))
	}))
	defer srv.Close()

	c := testClient(srv)
	_, err := c.Verify(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Invalid or expired token.") {
		t.Errorf("error = %v, want platform message surfaced", err)
	}
}

// ─── Signing ──────────────────────────────────────────────────────────────────

func TestAuthorizationHeader_Deterministic(t *testing.T) {
	c := NewTwitterClient(testCreds())
	c.nonce = func() string { return "fixednonce" }
	c.now = func() time.Time { return time.Unix(1700000000, 0) }

	h1 := c.authorizationHeader(http.MethodPost, "https://api.twitter.com/2/tweets", nil)
	h2 := c.authorizationHeader(http.MethodPost, "https://api.twitter.com/2/tweets", nil)
	if h1 != h2 {
		t.Error("signature not deterministic for identical inputs")
	}

	// Query parameters participate in the signature.
	h3 := c.authorizationHeader(http.MethodGet, "https://api.twitter.com/1.1/a.json?b=1", nil)
	h4 := c.authorizationHeader(http.MethodGet, "https://api.twitter.com/1.1/a.json?b=2", nil)
	if h3 == h4 {
		t.Error("differing query params produced identical signatures")
	}
}

func TestPercentEncode(t *testing.T) {
	tests := []struct{ in, want string }{
		{"abcXYZ019", "abcXYZ019"},
		{"-._~", "-._~"},
		{"a b", "a%20b"},
		{"a+b", "a%2Bb"},
		{"ä", "%C3%A4"},
		{"a=b&c", "a%3Db%26c"},
	}
	for _, tt := range tests {
		if got := percentEncode(tt.in); got != tt.want {
			t.Errorf("percentEncode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPosterFactory(t *testing.T) {
	accounts := settings.SocialAccounts{Twitter: &settings.TwitterCredentials{
		APIKey: "k", APISecret: "s", AccessToken: "t", AccessTokenSecret: "ts",
	}}

	if _, err := New("twitter", accounts); err != nil {
		t.Errorf("twitter with full creds: %v", err)
	}

	_, err := New("twitter", settings.SocialAccounts{})
	if _, ok := err.(*MissingCredentialsError); !ok {
		t.Errorf("missing creds error = %T, want *MissingCredentialsError", err)
	}

	_, err = New("instagram", accounts)
	if _, ok := err.(*UnsupportedPlatformError); !ok {
		t.Errorf("instagram error = %T, want *UnsupportedPlatformError", err)
	}

	if _, err := New("myspace", accounts); err == nil {
		t.Error("unknown platform accepted")
	}
}
