// Package webexapi is the REST binding to the cloud messaging platform: a
// pass-through HTTP client for messages plus the device registry used to
// provision the realtime endpoint.
package webexapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"webexbot/internal/domain"
	"webexbot/internal/infra/config"
)

// Default circuit breaker settings.
const (
	defaultBreakerMaxFailures uint32 = 5
	defaultBreakerTimeout            = 30 * time.Second
	defaultBreakerInterval           = 60 * time.Second
)

// StatusError reports a non-2xx response from the cloud.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string { return "unexpected api response status: " + e.Status }

// Unwrap ties StatusError into the domain sentinel chain.
func (e *StatusError) Unwrap() error { return domain.ErrAPIStatus }

// Client talks to the cloud REST API. It is constructed once at startup and
// handed down explicitly; there is no lazily initialized global instance.
// All calls are routed through a circuit breaker so a misbehaving cloud
// endpoint fails fast instead of feeding retry storms.
type Client struct {
	httpClient *http.Client
	baseURL    string
	deviceURL  string
	token      string
	deviceName string
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying *http.Client. Intended for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a REST client for the given bot credential.
func New(cfg config.APIConfig, bot config.BotConfig, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: newPooledClient(cfg),
		baseURL:    cfg.BaseURL,
		deviceURL:  cfg.DeviceURL,
		token:      bot.Token,
		deviceName: bot.DeviceName,
		logger:     logger,
	}
	c.breaker = newBreaker(cfg.Breaker, logger)
	for _, o := range opts {
		o(c)
	}
	return c
}

func newBreaker(cfg config.BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[[]byte] {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultBreakerMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultBreakerTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultBreakerInterval
	}

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "webexapi",
		MaxRequests: 1, // allow 1 probe in half-open state
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}

// newPooledClient creates an *http.Client with connection pooling sized for
// a single bot process hitting a small set of cloud hosts.
func newPooledClient(cfg config.APIConfig) *http.Client {
	connTimeout := cfg.ConnTimeout
	if connTimeout == 0 {
		connTimeout = 30 * time.Second
	}
	respTimeout := cfg.RespTimeout
	if respTimeout == 0 {
		respTimeout = 60 * time.Second
	}

	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   connTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: respTimeout,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   5,
			IdleConnTimeout:       120 * time.Second,
			ForceAttemptHTTP2:     true,
		},
		Timeout: connTimeout + respTimeout,
	}
}

// SendMessage posts a new message.
func (c *Client) SendMessage(ctx context.Context, out *domain.MessageOut) (*domain.Message, error) {
	var msg domain.Message
	err := c.do(ctx, http.MethodPost, c.baseURL+"/messages", out, &msg)
	if err != nil {
		return nil, domain.WrapOp("Client.SendMessage", err)
	}
	return &msg, nil
}

// GetMessage fetches the full message record for an identifier, including
// the plain text the parser consumes.
func (c *Client) GetMessage(ctx context.Context, id string) (*domain.Message, error) {
	var msg domain.Message
	err := c.do(ctx, http.MethodGet, c.baseURL+"/messages/"+id, nil, &msg)
	if err != nil {
		return nil, domain.WrapOp("Client.GetMessage", err)
	}
	return &msg, nil
}

// GetRoom fetches a room record.
func (c *Client) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	var room domain.Room
	err := c.do(ctx, http.MethodGet, c.baseURL+"/rooms/"+id, nil, &room)
	if err != nil {
		return nil, domain.WrapOp("Client.GetRoom", err)
	}
	return &room, nil
}

// GetPerson fetches a person record.
func (c *Client) GetPerson(ctx context.Context, id string) (*domain.Person, error) {
	var person domain.Person
	err := c.do(ctx, http.MethodGet, c.baseURL+"/people/"+id, nil, &person)
	if err != nil {
		return nil, domain.WrapOp("Client.GetPerson", err)
	}
	return &person, nil
}

// GetAttachmentAction fetches the inputs a user submitted through a card.
func (c *Client) GetAttachmentAction(ctx context.Context, id string) (*domain.AttachmentAction, error) {
	var action domain.AttachmentAction
	err := c.do(ctx, http.MethodGet, c.baseURL+"/attachment/actions/"+id, nil, &action)
	if err != nil {
		return nil, domain.WrapOp("Client.GetAttachmentAction", err)
	}
	return &action, nil
}

// do executes one JSON round trip through the circuit breaker and decodes
// the response into out (skipped when out is nil).
func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	payload, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, url, body)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return fmt.Errorf("webexapi circuit open: %w", err)
		}
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, url string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("api request failed", "method", method, "url", url, "status", resp.Status)
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return data, nil
}

// Compile-time interface check.
var _ domain.Messenger = (*Client)(nil)
