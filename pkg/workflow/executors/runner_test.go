package executors_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/postforge/postforge/pkg/ai"
	"github.com/postforge/postforge/pkg/notify"
	"github.com/postforge/postforge/pkg/settings"
	"github.com/postforge/postforge/pkg/social"
	"github.com/postforge/postforge/pkg/workflow"
	"github.com/postforge/postforge/pkg/workflow/executors"
)

// ─── fakes ────────────────────────────────────────────────────────────────────

type settingsStub struct{ cfg *settings.BrandConfig }

func (s settingsStub) Current() *settings.BrandConfig { return s.cfg }

func configuredSettings() settingsStub {
	return settingsStub{cfg: &settings.BrandConfig{
		Name:         "Acme",
		TextProvider: settings.ProviderOpenAI,
		APIKeys:      settings.APIKeys{OpenAI: "sk-test"},
		SocialAccounts: settings.SocialAccounts{
			Twitter: &settings.TwitterCredentials{
				APIKey: "k", APISecret: "s", AccessToken: "t", AccessTokenSecret: "ts",
			},
		},
	}}
}

// fakeClient scripts the AI responses and optionally runs a hook while the
// external call is "in flight".
type fakeClient struct {
	text       string
	image      string
	audio      []byte
	transcript string
	err        error
	onCall     func()
}

func (f *fakeClient) call() {
	if f.onCall != nil {
		f.onCall()
	}
}

func (f *fakeClient) GenerateText(context.Context, ai.TextRequest) (string, error) {
	f.call()
	return f.text, f.err
}

func (f *fakeClient) GenerateImage(context.Context, ai.ImageRequest) (string, error) {
	f.call()
	return f.image, f.err
}

func (f *fakeClient) Synthesize(context.Context, ai.SpeechRequest) ([]byte, error) {
	f.call()
	return f.audio, f.err
}

func (f *fakeClient) Transcribe(context.Context, ai.TranscribeRequest) (string, error) {
	f.call()
	return f.transcript, f.err
}

type fakePoster struct {
	postID       string
	err          error
	gotContent   string
	gotImage     string
	postCalls    int
}

func (f *fakePoster) Post(_ context.Context, content, imageURL string) (social.PostResult, error) {
	f.postCalls++
	f.gotContent = content
	f.gotImage = imageURL
	if f.err != nil {
		return social.PostResult{}, f.err
	}
	return social.PostResult{PostID: f.postID}, nil
}

func (f *fakePoster) Verify(context.Context) (string, error) { return "acme", f.err }

func newRunner(store *workflow.Store, log *notify.Log, st settings.Reader, client ai.Client, poster social.Poster) *executors.Runner {
	return executors.NewRunner(store, log, st,
		executors.WithClientFactory(func(provider, apiKey string) (ai.Client, error) {
			return client, nil
		}),
		executors.WithPosterFactory(func(workflow.SocialPlatform, settings.SocialAccounts) (social.Poster, error) {
			return poster, nil
		}),
	)
}

// ─── AI nodes ─────────────────────────────────────────────────────────────────

func TestRun_TextToText_PropagatesAndLogs(t *testing.T) {
	store := workflow.NewStore()
	log := notify.NewLog()
	store.AddNode(&workflow.Node{ID: "txt", Kind: workflow.KindAI, Operation: workflow.OpTextToText})
	store.AddNode(&workflow.Node{ID: "img", Kind: workflow.KindAI, Operation: workflow.OpTextToImage})
	store.Connect("txt", "img")

	client := &fakeClient{text: "generated caption"}
	r := newRunner(store, log, configuredSettings(), client, nil)

	out, err := r.Run(context.Background(), "txt", executors.Request{
		Prompt: "write a caption", IncludeHashtags: true, HashtagCount: 3,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Message != "generated caption" {
		t.Errorf("message = %q, want %q", out.Message, "generated caption")
	}

	target, _ := store.NodeByID("img")
	if target.Data.InputData.Text() != "generated caption" {
		t.Errorf("propagated text = %q, want %q", target.Data.InputData.Text(), "generated caption")
	}
	if got := target.Data.InputData["hashtagCount"]; got != 3 {
		t.Errorf("hashtagCount = %v, want 3", got)
	}

	results := log.Results()
	if len(results) != 1 {
		t.Fatalf("log entries = %d, want 1", len(results))
	}
	if results[0].NodeID != "txt" || results[0].NodeType != "Text to Text" {
		t.Errorf("entry = %+v", results[0])
	}
}

func TestRun_TextToText_FallsBackToInputData(t *testing.T) {
	store := workflow.NewStore()
	n := &workflow.Node{ID: "txt", Kind: workflow.KindAI, Operation: workflow.OpTextToText}
	n.Data.InputData = workflow.Payload{"text": "upstream prompt"}
	store.AddNode(n)

	client := &fakeClient{text: "ok"}
	r := newRunner(store, notify.NewLog(), configuredSettings(), client, nil)

	if _, err := r.Run(context.Background(), "txt", executors.Request{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRun_TextToImage_MergesUpstreamText(t *testing.T) {
	store := workflow.NewStore()
	log := notify.NewLog()
	img := &workflow.Node{ID: "img", Kind: workflow.KindAI, Operation: workflow.OpTextToImage}
	img.Data.InputData = workflow.Payload{"text": "upstream caption"}
	store.AddNode(img)
	store.AddNode(&workflow.Node{ID: "tw", Kind: workflow.KindSocial, Platform: workflow.PlatformTwitter})
	store.Connect("img", "tw")

	client := &fakeClient{image: "https://img.example/out.png"}
	r := newRunner(store, log, configuredSettings(), client, nil)

	out, err := r.Run(context.Background(), "img", executors.Request{Prompt: "typed prompt"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Image != "https://img.example/out.png" {
		t.Errorf("image = %q", out.Image)
	}

	// Downstream sink received text and image together and materialized.
	sink, _ := store.NodeByID("tw")
	if sink.Data.Content != "upstream caption" {
		t.Errorf("sink content = %q, want %q", sink.Data.Content, "upstream caption")
	}
	if sink.Data.Image != "https://img.example/out.png" {
		t.Errorf("sink image = %q, want set", sink.Data.Image)
	}
}

func TestRun_TextToSpeech_NoPropagation(t *testing.T) {
	store := workflow.NewStore()
	store.AddNode(&workflow.Node{ID: "tts", Kind: workflow.KindAI, Operation: workflow.OpTextToSpeech})
	store.AddNode(&workflow.Node{ID: "down", Kind: workflow.KindAI, Operation: workflow.OpTextToText})
	store.Connect("tts", "down")

	client := &fakeClient{audio: []byte("mp3 bytes")}
	r := newRunner(store, notify.NewLog(), configuredSettings(), client, nil)

	out, err := r.Run(context.Background(), "tts", executors.Request{Prompt: "say this"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if string(out.Audio) != "mp3 bytes" {
		t.Errorf("audio = %q", out.Audio)
	}

	down, _ := store.NodeByID("down")
	if down.Data.InputData != nil {
		t.Errorf("audio node propagated: %v", down.Data.InputData)
	}
}

func TestRun_SpeechToText_PropagatesTranscript(t *testing.T) {
	store := workflow.NewStore()
	store.AddNode(&workflow.Node{ID: "stt", Kind: workflow.KindAI, Operation: workflow.OpSpeechToText})
	store.AddNode(&workflow.Node{ID: "down", Kind: workflow.KindAI, Operation: workflow.OpTextToText})
	store.Connect("stt", "down")

	client := &fakeClient{transcript: "spoken words"}
	r := newRunner(store, notify.NewLog(), configuredSettings(), client, nil)

	out, err := r.Run(context.Background(), "stt", executors.Request{
		Audio: []byte("wav"), FileName: "take1.wav",
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Message != "spoken words" {
		t.Errorf("message = %q", out.Message)
	}

	down, _ := store.NodeByID("down")
	if down.Data.InputData.Text() != "spoken words" {
		t.Errorf("propagated text = %q, want transcript", down.Data.InputData.Text())
	}
}

func TestRun_UnsupportedOperation(t *testing.T) {
	store := workflow.NewStore()
	store.AddNode(&workflow.Node{ID: "v", Kind: workflow.KindAI, Operation: workflow.OpTextToVideo})

	r := newRunner(store, notify.NewLog(), configuredSettings(), &fakeClient{}, nil)

	_, err := r.Run(context.Background(), "v", executors.Request{Prompt: "x"})
	var unsupported *executors.UnsupportedOperationError
	if !errors.As(err, &unsupported) {
		t.Fatalf("error = %v (%T), want *UnsupportedOperationError", err, err)
	}
}

// ─── Failure modes ────────────────────────────────────────────────────────────

func TestRun_NodeNotFound(t *testing.T) {
	r := newRunner(workflow.NewStore(), notify.NewLog(), configuredSettings(), &fakeClient{}, nil)
	_, err := r.Run(context.Background(), "ghost", executors.Request{})
	var notFound *executors.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v (%T), want *NotFoundError", err, err)
	}
}

func TestRun_MissingSettingsMutatesNothing(t *testing.T) {
	store := workflow.NewStore()
	log := notify.NewLog()
	store.AddNode(&workflow.Node{ID: "txt", Kind: workflow.KindAI, Operation: workflow.OpTextToText})
	store.AddNode(&workflow.Node{ID: "down", Kind: workflow.KindAI, Operation: workflow.OpTextToImage})
	store.Connect("txt", "down")

	r := newRunner(store, log, settingsStub{}, &fakeClient{text: "x"}, nil)

	_, err := r.Run(context.Background(), "txt", executors.Request{Prompt: "p"})
	var cfgErr *executors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v (%T), want *ConfigError", err, err)
	}
	if len(log.Results()) != 0 {
		t.Error("failed run produced a log entry")
	}
	down, _ := store.NodeByID("down")
	if down.Data.InputData != nil {
		t.Error("failed run propagated data")
	}
}

func TestRun_EmptyPromptMutatesNothing(t *testing.T) {
	store := workflow.NewStore()
	log := notify.NewLog()
	store.AddNode(&workflow.Node{ID: "txt", Kind: workflow.KindAI, Operation: workflow.OpTextToText})

	r := newRunner(store, log, configuredSettings(), &fakeClient{text: "x"}, nil)

	_, err := r.Run(context.Background(), "txt", executors.Request{})
	var valErr *executors.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error = %v (%T), want *ValidationError", err, err)
	}
	if len(log.Results()) != 0 {
		t.Error("failed run produced a log entry")
	}
}

func TestRun_ProviderErrorMutatesNothing(t *testing.T) {
	store := workflow.NewStore()
	log := notify.NewLog()
	store.AddNode(&workflow.Node{ID: "txt", Kind: workflow.KindAI, Operation: workflow.OpTextToText})
	store.AddNode(&workflow.Node{ID: "down", Kind: workflow.KindAI, Operation: workflow.OpTextToImage})
	store.Connect("txt", "down")

	client := &fakeClient{err: &ai.ServerError{ProviderError: ai.ProviderError{Code: 500, Message: "down"}}}
	r := newRunner(store, log, configuredSettings(), client, nil)

	_, err := r.Run(context.Background(), "txt", executors.Request{Prompt: "p"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(log.Results()) != 0 {
		t.Error("failed run produced a log entry")
	}
	down, _ := store.NodeByID("down")
	if down.Data.InputData != nil {
		t.Error("failed run propagated data")
	}
}

// A node deleted while its external call is in flight drops the result: no
// log entry, no propagation, no error.
func TestRun_NodeDeletedMidFlight(t *testing.T) {
	store := workflow.NewStore()
	log := notify.NewLog()
	store.AddNode(&workflow.Node{ID: "txt", Kind: workflow.KindAI, Operation: workflow.OpTextToText})
	store.AddNode(&workflow.Node{ID: "down", Kind: workflow.KindAI, Operation: workflow.OpTextToImage})
	store.Connect("txt", "down")

	client := &fakeClient{text: "late result"}
	client.onCall = func() { store.DeleteNode("txt") }
	r := newRunner(store, log, configuredSettings(), client, nil)

	out, err := r.Run(context.Background(), "txt", executors.Request{Prompt: "p"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Message != "late result" {
		t.Errorf("message = %q, want the result still returned to the caller", out.Message)
	}
	if len(log.Results()) != 0 {
		t.Error("deleted node produced a log entry")
	}
	down, _ := store.NodeByID("down")
	if down.Data.InputData != nil {
		t.Error("deleted node propagated data")
	}
}

// ─── Social nodes ─────────────────────────────────────────────────────────────

func TestRun_SocialPostsMaterializedContent(t *testing.T) {
	store := workflow.NewStore()
	log := notify.NewLog()
	n := &workflow.Node{ID: "tw", Kind: workflow.KindSocial, Platform: workflow.PlatformTwitter}
	n.Data.Content = "ready to go"
	n.Data.Image = "https://img.example/1.png"
	store.AddNode(n)

	poster := &fakePoster{postID: "tweet-1"}
	r := newRunner(store, log, configuredSettings(), nil, poster)

	out, err := r.Run(context.Background(), "tw", executors.Request{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.PostID != "tweet-1" {
		t.Errorf("postID = %q, want %q", out.PostID, "tweet-1")
	}
	if poster.gotContent != "ready to go" || poster.gotImage != "https://img.example/1.png" {
		t.Errorf("poster got content=%q image=%q", poster.gotContent, poster.gotImage)
	}

	results := log.Results()
	if len(results) != 1 {
		t.Fatalf("log entries = %d, want 1", len(results))
	}
	if !strings.Contains(results[0].Result, "tweet-1") {
		t.Errorf("log result = %q, want post ID included", results[0].Result)
	}
}

func TestRun_SocialWithoutContentIsValidationError(t *testing.T) {
	store := workflow.NewStore()
	store.AddNode(&workflow.Node{ID: "tw", Kind: workflow.KindSocial, Platform: workflow.PlatformTwitter})

	poster := &fakePoster{postID: "x"}
	r := newRunner(store, notify.NewLog(), configuredSettings(), nil, poster)

	_, err := r.Run(context.Background(), "tw", executors.Request{})
	var valErr *executors.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("error = %v (%T), want *ValidationError", err, err)
	}
	if poster.postCalls != 0 {
		t.Error("poster called for an unmaterialized node")
	}
}

func TestRun_SocialPostFailureLogsNothing(t *testing.T) {
	store := workflow.NewStore()
	log := notify.NewLog()
	n := &workflow.Node{ID: "tw", Kind: workflow.KindSocial, Platform: workflow.PlatformTwitter}
	n.Data.Content = "content"
	store.AddNode(n)

	poster := &fakePoster{err: errors.New("duplicate tweet")}
	r := newRunner(store, log, configuredSettings(), nil, poster)

	_, err := r.Run(context.Background(), "tw", executors.Request{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(log.Results()) != 0 {
		t.Error("failed post produced a log entry")
	}
}
