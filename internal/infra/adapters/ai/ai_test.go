package ai_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"telegram-nutrition-bot/internal/config"
	"telegram-nutrition-bot/internal/domain"
	"telegram-nutrition-bot/internal/domain/model"
	ai "telegram-nutrition-bot/internal/infra/adapters/ai"
	"telegram-nutrition-bot/internal/infra/logging"
)

type stubAI struct {
	mu       sync.Mutex
	calls    int
	inFlight int32
	maxSeen  int32
	hold     time.Duration
	result   model.InferenceResult
	err      error
	block    bool
}

func (s *stubAI) Name() string { return "stub" }

func (s *stubAI) Analyze(ctx context.Context, req model.InferenceRequest) (model.InferenceResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	n := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	for {
		m := atomic.LoadInt32(&s.maxSeen)
		if n <= m || atomic.CompareAndSwapInt32(&s.maxSeen, m, n) {
			break
		}
	}

	if s.block {
		<-ctx.Done()
		return model.InferenceResult{}, ctx.Err()
	}
	if s.hold > 0 {
		time.Sleep(s.hold)
	}
	return s.result, s.err
}

var sampleReq = model.InferenceRequest{Prompt: "estimate", Image: []byte{0xff, 0xd8, 0xff}, MIMEType: "image/jpeg"}

func TestLimitedAI_CapsConcurrency(t *testing.T) {
	t.Parallel()
	inner := &stubAI{hold: 30 * time.Millisecond, result: model.InferenceResult{Text: "ok"}}
	limited := ai.NewLimitedAI(inner, 2)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := limited.Analyze(context.Background(), sampleReq); err != nil {
				t.Errorf("Analyze: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&inner.maxSeen); got > 2 {
		t.Fatalf("saw %d concurrent calls, cap is 2", got)
	}
	if inner.calls != 6 {
		t.Fatalf("calls = %d, want 6", inner.calls)
	}
}

func TestLimitedAI_DisabledReturnsInner(t *testing.T) {
	t.Parallel()
	inner := &stubAI{}
	if got := ai.NewLimitedAI(inner, 0); got != inner {
		t.Fatal("limit 0 should return the inner adapter")
	}
}

func TestObservedAI_TimeoutIsInferenceFailure(t *testing.T) {
	t.Parallel()
	inner := &stubAI{block: true}
	observed := ai.NewObservedAI(inner, "m", 20*time.Millisecond, logging.Nop())

	_, err := observed.Analyze(context.Background(), sampleReq)
	if !errors.Is(err, domain.ErrInference) {
		t.Fatalf("expected ErrInference, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded in chain, got %v", err)
	}
}

func TestObservedAI_PassesResultThrough(t *testing.T) {
	t.Parallel()
	want := model.InferenceResult{Text: "Estimated 450 kcal...", Model: "m", Usage: model.Usage{TotalTokens: 9}}
	observed := ai.NewObservedAI(&stubAI{result: want}, "m", time.Second, logging.Nop())

	got, err := observed.Analyze(context.Background(), sampleReq)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestNoopAIAdapter(t *testing.T) {
	t.Parallel()
	res, err := ai.NewNoopAIAdapter(logging.Nop()).Analyze(context.Background(), sampleReq)
	if err != nil || res.Text == "" {
		t.Fatalf("noop: %q, %v", res.Text, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ai.NewNoopAIAdapter(logging.Nop()).Analyze(ctx, sampleReq); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOpenAIAdapter_SendsImageAndReturnsText(t *testing.T) {
	t.Parallel()
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "Estimated 450 kcal..."}}],
			"usage": {"prompt_tokens": 11, "completion_tokens": 7, "total_tokens": 18}
		}`)
	}))
	defer srv.Close()

	a, err := ai.NewOpenAIAdapter("sk-test", srv.URL+"/", "gpt-4o-mini", 256)
	if err != nil {
		t.Fatalf("NewOpenAIAdapter: %v", err)
	}
	res, err := a.Analyze(context.Background(), sampleReq)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Text != "Estimated 450 kcal..." {
		t.Errorf("text = %q", res.Text)
	}
	if res.Usage.TotalTokens != 18 {
		t.Errorf("usage = %+v", res.Usage)
	}
	raw, _ := json.Marshal(gotBody)
	if !strings.Contains(string(raw), "data:image/jpeg;base64,") {
		t.Errorf("request does not carry an inline image: %s", raw)
	}
}

func TestOpenAIAdapter_EmptyChoicesIsFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`)
	}))
	defer srv.Close()

	a, _ := ai.NewOpenAIAdapter("sk-test", srv.URL+"/", "m", 0)
	_, err := a.Analyze(context.Background(), sampleReq)
	if !errors.Is(err, domain.ErrInference) || !errors.Is(err, domain.ErrEmptyResponse) {
		t.Fatalf("expected empty-response inference error, got %v", err)
	}
}

func TestGeminiAdapter_InlineImageRoundTrip(t *testing.T) {
	t.Parallel()
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "Estimated "}, {"text": "450 kcal"}]}}],
			"usageMetadata": {"promptTokenCount": 300, "candidatesTokenCount": 20, "totalTokenCount": 320}
		}`)
	}))
	defer srv.Close()

	g, err := ai.NewGeminiAdapter(context.Background(), "g-key", srv.URL, "gemini-2.0-flash", 512)
	if err != nil {
		t.Fatalf("NewGeminiAdapter: %v", err)
	}
	res, err := g.Analyze(context.Background(), sampleReq)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Text != "Estimated 450 kcal" {
		t.Errorf("text = %q", res.Text)
	}
	if res.Usage.TotalTokens != 320 {
		t.Errorf("usage = %+v", res.Usage)
	}
	if !strings.Contains(body, "inlineData") || !strings.Contains(body, "estimate") {
		t.Errorf("request body missing prompt or inline image: %s", body)
	}
}

func TestGeminiAdapter_NoCandidatesIsFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates": []}`)
	}))
	defer srv.Close()

	g, err := ai.NewGeminiAdapter(context.Background(), "g-key", srv.URL, "gemini-2.0-flash", 0)
	if err != nil {
		t.Fatalf("NewGeminiAdapter: %v", err)
	}
	if _, err := g.Analyze(context.Background(), sampleReq); !errors.Is(err, domain.ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()
	a, err := ai.NewFromConfig(context.Background(), config.AIConfig{Provider: config.ProviderNoop, Timeout: time.Second, ConcurrentLimit: 2}, logging.Nop())
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	if a.Name() != "noop" {
		t.Errorf("name = %q", a.Name())
	}
	if _, err := ai.NewFromConfig(context.Background(), config.AIConfig{Provider: "oracle"}, logging.Nop()); err == nil {
		t.Error("expected error for unknown provider")
	}
	if _, err := ai.NewFromConfig(context.Background(), config.AIConfig{Provider: config.ProviderGemini}, logging.Nop()); err == nil {
		t.Error("expected error for gemini without key")
	}
}
