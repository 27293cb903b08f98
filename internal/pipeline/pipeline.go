package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/desertthunder/hmx/internal/shared"
)

// RefreshPath is appended to the base URL to build the default refresh endpoint.
const RefreshPath = "/users/refresh"

const refreshKey = "refresh"

// Pipeline runs descriptors against the API. It is safe for concurrent use.
type Pipeline struct {
	client     *http.Client
	refreshURL string
	limiter    *rate.Limiter
	logger     *log.Logger
	group      singleflight.Group
}

// Option configures a [Pipeline].
type Option func(*Pipeline)

// WithHTTPClient sets the client used for every request. Its jar carries the credentials.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.client = c
		}
	}
}

// WithRefreshURL overrides the credential refresh endpoint.
func WithRefreshURL(u string) Option {
	return func(p *Pipeline) { p.refreshURL = u }
}

// WithLimiter throttles every network call, refreshes included.
func WithLimiter(l *rate.Limiter) Option {
	return func(p *Pipeline) { p.limiter = l }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a pipeline for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Pipeline {
	p := &Pipeline{
		client:     &http.Client{},
		refreshURL: strings.TrimRight(baseURL, "/") + RefreshPath,
		logger:     shared.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type response struct {
	status int
	body   []byte
}

// Execute performs one logical call.
//
// A successful call returns the raw JSON payload, or nil when the server sent no body.
// Any failure is a [*Failure] and the payload is nil.
func (p *Pipeline) Execute(ctx context.Context, d Descriptor) (json.RawMessage, error) {
	if d.bodyErr != nil {
		return nil, &Failure{Cause: CauseNetwork, Message: "failed to encode request body", Err: d.bodyErr}
	}

	requestID := uuid.NewString()
	logger := p.logger.With("method", d.method, "url", d.url, "request_id", requestID)

	resp, err := p.send(ctx, d, requestID)
	if err != nil {
		logger.Debug("request failed", "error", err)
		return nil, networkFailure(err)
	}
	logger.Debug("response", "status", resp.status)

	if resp.status == http.StatusForbidden {
		logger.Info("credentials expired, refreshing")
		if err := p.refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, networkFailure(err)
			}
			logger.Warn("credential refresh failed", "error", err)
			if d.onAuthFailure != nil {
				d.onAuthFailure()
			}
			return nil, &Failure{
				Cause:   CauseAuth,
				Message: "session expired, please sign in again",
				Status:  resp.status,
				Err:     err,
			}
		}

		resp, err = p.send(ctx, d, requestID)
		if err != nil {
			logger.Debug("replay failed", "error", err)
			return nil, networkFailure(err)
		}
		logger.Debug("replay response", "status", resp.status)
	}

	return interpret(resp)
}

// send performs a single HTTP exchange and reads the full body.
func (p *Pipeline) send(ctx context.Context, d Descriptor, requestID string) (*response, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	var body io.Reader
	if d.body != nil {
		body = bytes.NewReader(d.body)
	}

	req, err := http.NewRequestWithContext(ctx, d.method, d.url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if d.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return &response{status: resp.StatusCode, body: data}, nil
}

// refresh asks the server for fresh credential cookies, sharing one request among concurrent callers.
//
// The shared request is detached from the caller's cancellation; a cancelled caller stops waiting for it.
func (p *Pipeline) refresh(ctx context.Context) error {
	detached := context.WithoutCancel(ctx)
	ch := p.group.DoChan(refreshKey, func() (any, error) {
		return nil, p.doRefresh(detached)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pipeline) doRefresh(ctx context.Context) error {
	if err := p.wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.refreshURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", shared.ErrRefreshFailed, resp.StatusCode)
	}
	p.logger.Debug("credentials refreshed", "url", p.refreshURL)
	return nil
}

func (p *Pipeline) wait(ctx context.Context) error {
	if p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}

// interpret maps a final response onto a payload or a failure.
func interpret(resp *response) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(resp.body)

	if resp.status < 200 || resp.status > 299 {
		message := http.StatusText(resp.status)
		if len(trimmed) > 0 {
			var body struct {
				Error *string `json:"error"`
			}
			if err := json.Unmarshal(trimmed, &body); err != nil {
				return nil, &Failure{
					Cause:   CauseNetwork,
					Message: "malformed error response",
					Status:  resp.status,
					Err:     err,
				}
			}
			if body.Error != nil && *body.Error != "" {
				message = *body.Error
			}
		}
		if message == "" {
			message = fmt.Sprintf("request failed with status %d", resp.status)
		}
		return nil, &Failure{Cause: CauseServer, Message: message, Status: resp.status}
	}

	if len(trimmed) == 0 {
		return nil, nil
	}
	if !json.Valid(trimmed) {
		return nil, &Failure{
			Cause:   CauseNetwork,
			Message: "malformed response",
			Status:  resp.status,
			Err:     fmt.Errorf("%w: invalid JSON payload", shared.ErrNetwork),
		}
	}
	return json.RawMessage(trimmed), nil
}

func networkFailure(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return &Failure{Cause: CauseNetwork, Message: err.Error(), Err: err}
}
