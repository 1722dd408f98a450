package resultsfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/oneeighty-app/oneeighty/internal/domain/tournament"
	"github.com/oneeighty-app/oneeighty/internal/platform/logging"
	"github.com/oneeighty-app/oneeighty/internal/platform/resilience"
)

func sampleResult() tournament.MatchResult {
	return tournament.MatchResult{
		MatchID:      "m-1",
		TournamentID: "t-1",
		Lines: []tournament.PlayerLine{
			{PlayerID: "p-1", Name: "Anke", IsWinner: true, LegsWon: 3, LegsLost: 1, Average: 61.4},
			{PlayerID: "p-2", Name: "Boris", LegsWon: 1, LegsLost: 3, Average: 48.2},
		},
	}
}

func TestPublisherPublishResult_SendsEventWithBearerToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer feed-secret" {
			t.Fatalf("unexpected authorization header: %s", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("unexpected content type: %s", got)
		}

		var event map[string]any
		if err := jsoniter.NewDecoder(r.Body).Decode(&event); err != nil {
			t.Fatalf("decode event body: %v", err)
		}
		if event["event"] != "match.finished" {
			t.Fatalf("unexpected event name: %v", event["event"])
		}
		if event["tournamentId"] != "t-1" {
			t.Fatalf("unexpected tournament id: %v", event["tournamentId"])
		}
		if event["winnerId"] != "p-1" {
			t.Fatalf("unexpected winner id: %v", event["winnerId"])
		}
		lines, ok := event["lines"].([]any)
		if !ok || len(lines) != 2 {
			t.Fatalf("expected two result lines, got %v", event["lines"])
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	pub := NewPublisher(PublisherConfig{
		WebhookURL: srv.URL,
		Token:      "feed-secret",
	}, logging.NewNop())

	if err := pub.PublishResult(context.Background(), "t-1", sampleResult()); err != nil {
		t.Fatalf("publish result failed: %v", err)
	}
}

func TestPublisherPublishResult_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	pub := NewPublisher(PublisherConfig{
		WebhookURL: srv.URL,
		Retries:    2,
	}, logging.NewNop())

	if err := pub.PublishResult(context.Background(), "t-1", sampleResult()); err != nil {
		t.Fatalf("publish result failed: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected one retry after 503, got %d calls", calls.Load())
	}
}

func TestPublisherPublishResult_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unknown event"}`))
	}))
	defer srv.Close()

	pub := NewPublisher(PublisherConfig{
		WebhookURL: srv.URL,
		Retries:    3,
	}, logging.NewNop())

	err := pub.PublishResult(context.Background(), "t-1", sampleResult())
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if !strings.Contains(err.Error(), "status=400") {
		t.Fatalf("expected status in error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected no retries on 400, got %d calls", calls.Load())
	}
}

func TestPublisherPublishResult_CircuitBreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	pub := NewPublisher(PublisherConfig{
		WebhookURL: srv.URL,
		Retries:    0,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, logging.NewNop())

	for i := 0; i < 2; i++ {
		if err := pub.PublishResult(context.Background(), "t-1", sampleResult()); err == nil {
			t.Fatal("expected error for 500 response")
		}
	}

	err := pub.PublishResult(context.Background(), "t-1", sampleResult())
	if err == nil {
		t.Fatal("expected circuit breaker rejection")
	}
	if !strings.Contains(err.Error(), "temporarily unavailable") {
		t.Fatalf("expected circuit rejection error, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected no request while circuit open, got %d calls", calls.Load())
	}
}

func TestPublisherPublishResult_RejectsInvalidWebhookURL(t *testing.T) {
	t.Parallel()

	pub := NewPublisher(PublisherConfig{
		WebhookURL: "ftp://feed.example.com/hook",
	}, logging.NewNop())

	err := pub.PublishResult(context.Background(), "t-1", sampleResult())
	if err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
	if !strings.Contains(err.Error(), "unsupported scheme") {
		t.Fatalf("expected scheme error, got %v", err)
	}
}
