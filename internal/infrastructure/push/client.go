package push

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/JuanCGomezS/polla-club/internal/domain/notification"
	"github.com/JuanCGomezS/polla-club/internal/platform/logging"
	"github.com/JuanCGomezS/polla-club/internal/platform/resilience"
)

type ClientConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client delivers push messages through the notification relay's HTTP API.
// It implements notification.Sender.
type Client struct {
	httpClient     *http.Client
	sendURL        string
	apiKey         string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig, logger *logging.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient:     &http.Client{Timeout: timeout},
		sendURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/") + "/v1/send",
		apiKey:         strings.TrimSpace(cfg.APIKey),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		circuitEnabled: cfg.CircuitBreaker.Enabled,
	}
}

type sendRequest struct {
	Tokens []string          `json:"tokens"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

type sendResponse struct {
	Results []sendResult `json:"results"`
}

type sendResult struct {
	Token  string `json:"token"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (c *Client) Send(ctx context.Context, tokens []string, msg notification.Message) ([]notification.SendReport, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "push circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("push relay is temporarily unavailable: %w", err)
		}
	}

	encoded, err := sonic.Marshal(sendRequest{
		Tokens: tokens,
		Title:  msg.Title,
		Body:   msg.Body,
		Data:   msg.Data,
	})
	if err != nil {
		return nil, crerr.Wrap(err, "marshal push request")
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.Write(encoded)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("push.send_url", c.sendURL),
			attribute.Int("push.token_count", len(tokens)),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sendURL, strings.NewReader(buf.String()))
	if err != nil {
		return nil, crerr.Wrap(err, "create push request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordFailure()
		return nil, crerr.Wrapf(err, "send push to %s", c.sendURL)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.recordFailure()
		return nil, crerr.Wrap(err, "read push response")
	}

	if resp.StatusCode/100 != 2 {
		c.recordFailure()
		return nil, crerr.Newf("push relay status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	c.recordSuccess()

	var decoded sendResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return nil, crerr.Wrap(err, "unmarshal push response")
	}

	reports := make([]notification.SendReport, 0, len(decoded.Results))
	for _, r := range decoded.Results {
		reports = append(reports, notification.SendReport{
			Token:   r.Token,
			OK:      r.Status == "ok",
			Invalid: r.Status == "invalid",
			Error:   r.Error,
		})
	}
	return reports, nil
}

func (c *Client) recordFailure() {
	if c.circuitEnabled {
		c.breaker.RecordFailure()
	}
}

func (c *Client) recordSuccess() {
	if c.circuitEnabled {
		c.breaker.RecordSuccess()
	}
}
