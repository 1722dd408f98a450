package resultsfeed

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/oneeighty-app/oneeighty/internal/domain/tournament"
	"github.com/oneeighty-app/oneeighty/internal/platform/logging"
	"github.com/oneeighty-app/oneeighty/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errFeedTransient = crerr.New("results feed transient failure")

type PublisherConfig struct {
	WebhookURL     string
	Token          string
	Retries        int
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Publisher delivers finished-match results to an external webhook. Delivery
// is best effort: callers treat failures as log-and-continue, the circuit
// breaker keeps a dead endpoint from slowing result recording down.
type Publisher struct {
	client         *http.Client
	webhookURL     string
	token          string
	retries        int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewPublisher(cfg PublisherConfig, logger *logging.Logger) *Publisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Publisher{
		client: &http.Client{
			Timeout: timeout,
		},
		webhookURL:     strings.TrimSpace(cfg.WebhookURL),
		token:          strings.TrimSpace(cfg.Token),
		retries:        cfg.Retries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type resultEvent struct {
	Event        string       `json:"event"`
	TournamentID string       `json:"tournamentId"`
	MatchID      string       `json:"matchId"`
	WinnerID     string       `json:"winnerId"`
	Lines        []resultLine `json:"lines"`
	PublishedAt  time.Time    `json:"publishedAt"`
}

type resultLine struct {
	PlayerID        string  `json:"playerId"`
	Name            string  `json:"name"`
	IsWinner        bool    `json:"isWinner"`
	LegsWon         int     `json:"legsWon"`
	LegsLost        int     `json:"legsLost"`
	Average         float64 `json:"average"`
	CheckoutRate    float64 `json:"checkoutRate"`
	Count180        int     `json:"count180"`
	HighestCheckout int     `json:"highestCheckout"`
}

func linesToEvent(lines []tournament.PlayerLine) []resultLine {
	out := make([]resultLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, resultLine{
			PlayerID:        line.PlayerID,
			Name:            line.Name,
			IsWinner:        line.IsWinner,
			LegsWon:         line.LegsWon,
			LegsLost:        line.LegsLost,
			Average:         line.Average,
			CheckoutRate:    line.CheckoutRate,
			Count180:        line.Count180,
			HighestCheckout: line.HighestCheckout,
		})
	}
	return out
}

func (p *Publisher) PublishResult(ctx context.Context, tournamentID string, result tournament.MatchResult) error {
	if p.circuitEnabled {
		if err := p.breaker.Allow(); err != nil {
			p.logger.WarnContext(ctx, "results feed circuit breaker rejected request", "state", p.breaker.State())
			return fmt.Errorf("results feed is temporarily unavailable: %w", err)
		}
	}

	webhookURL, err := validateHTTPURL(p.webhookURL)
	if err != nil {
		return crerr.Wrap(err, "invalid RESULTS_FEED_URL")
	}

	body, err := sonic.Marshal(resultEvent{
		Event:        "match.finished",
		TournamentID: tournamentID,
		MatchID:      result.MatchID,
		WinnerID:     result.Winner(),
		Lines:        linesToEvent(result.Lines),
		PublishedAt:  time.Now().UTC(),
	})
	if err != nil {
		return crerr.Wrap(err, "marshal result event")
	}
	bodyText := truncateForLog(string(body), 4096)
	curlPreview := buildFeedCurlPreview(webhookURL, bodyText, p.token != "")

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("resultsfeed.webhook_url", webhookURL),
			attribute.String("resultsfeed.match_id", result.MatchID),
			attribute.String("resultsfeed.request_body", bodyText),
			attribute.String("resultsfeed.request_curl_preview", curlPreview),
		)
	}
	p.logger.InfoContext(ctx, "results feed publish request", "tournament_id", tournamentID, "match_id", result.MatchID, "webhook_url", webhookURL, "curl_preview", curlPreview)

	var lastErr error
	for attempt := 0; attempt <= p.retries; attempt++ {
		lastErr = p.post(ctx, webhookURL, body)
		if lastErr == nil {
			p.logger.InfoContext(ctx, "results feed event published", "tournament_id", tournamentID, "match_id", result.MatchID, "attempt", attempt+1)
			p.recordCircuitResult(nil)
			return nil
		}
		if !stderrors.Is(lastErr, errFeedTransient) {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	p.recordCircuitResult(lastErr)
	return lastErr
}

func (p *Publisher) post(ctx context.Context, webhookURL string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, strings.NewReader(string(body)))
	if err != nil {
		return crerr.Wrap(err, "create results feed request")
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: post results feed event webhook_url=%s: %v", errFeedTransient, webhookURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if isRetryableStatus(resp.StatusCode) {
			return fmt.Errorf(
				"%w: post results feed event status=%d webhook_url=%s body=%s",
				errFeedTransient,
				resp.StatusCode,
				webhookURL,
				strings.TrimSpace(string(raw)),
			)
		}
		return fmt.Errorf(
			"post results feed event status=%d webhook_url=%s body=%s",
			resp.StatusCode,
			webhookURL,
			strings.TrimSpace(string(raw)),
		)
	}

	return nil
}

func validateHTTPURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return candidate, nil
}

func buildFeedCurlPreview(webhookURL string, body string, withToken bool) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}
	appendFlagHeader := func(value string) {
		appendPart("-H")
		appendPart(shellQuote(value))
	}

	appendPart("curl")
	appendPart("-X")
	appendPart("POST")
	appendPart(shellQuote(webhookURL))
	appendFlagHeader("Content-Type: application/json")
	if withToken {
		appendFlagHeader("Authorization: Bearer ***")
	}
	appendPart("-d")
	appendPart(shellQuote(body))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}

func (p *Publisher) recordCircuitResult(err error) {
	if !p.circuitEnabled || p.breaker == nil {
		return
	}
	if err == nil {
		p.breaker.RecordSuccess()
		return
	}
	if stderrors.Is(err, errFeedTransient) {
		p.breaker.RecordFailure()
		return
	}
	p.breaker.RecordSuccess()
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
