package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sandevgo/syllabot/internal/core"
	"github.com/sandevgo/syllabot/pkg/log"
)

const (
	ModeComplete = "complete"
	ModeStream   = "stream"

	// maxErrorBody caps how much of a failed gateway response is kept for logs.
	maxErrorBody = 8 << 10
)

// Observer is notified of every gateway response status.
type Observer func(mode string, status int)

// Gateway is an OpenAI-compatible chat completions client with a bearer key.
type Gateway struct {
	baseProvider
	observe Observer
}

type Option func(*Gateway)

func WithObserver(o Observer) Option {
	return func(g *Gateway) { g.observe = o }
}

func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

func NewGateway(cfg core.GatewayConfig, opts ...Option) *Gateway {
	g := &Gateway{baseProvider: newBaseProvider(cfg)}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []core.Message `json:"messages"`
	Stream   bool           `json:"stream,omitempty"`
}

func (g *Gateway) Configured() error {
	if g.cfg.GetGatewayKey() == "" {
		return core.Wrap(core.ErrConfigurationMissing, "AI_GATEWAY_KEY not configured", nil)
	}
	return nil
}

func (g *Gateway) Complete(ctx context.Context, messages []core.Message) (string, error) {
	resp, err := g.send(ctx, messages, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", core.Wrap(core.ErrUpstreamFailure, "read gateway response", err)
	}

	var result struct {
		Choices []struct {
			Message core.Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", core.Wrap(core.ErrUpstreamFailure, "decode gateway response", err)
	}
	if len(result.Choices) == 0 {
		return "", core.Wrap(core.ErrMalformedModelOutput, "gateway returned no choices", nil)
	}
	return result.Choices[0].Message.Content, nil
}

func (g *Gateway) Stream(ctx context.Context, messages []core.Message) (io.ReadCloser, error) {
	resp, err := g.send(ctx, messages, true)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// send issues one request and turns every non-2xx status into an
// *core.UpstreamError. On success the caller owns resp.Body.
func (g *Gateway) send(ctx context.Context, messages []core.Message, stream bool) (*http.Response, error) {
	if err := g.Configured(); err != nil {
		return nil, err
	}
	key := g.cfg.GetGatewayKey()

	headers := map[string]string{
		"Authorization": "Bearer " + key,
	}
	mode := ModeComplete
	if stream {
		mode = ModeStream
		headers["Accept"] = "text/event-stream"
	}

	body := chatRequest{
		Model:    g.cfg.GetGatewayModel(),
		Messages: messages,
		Stream:   stream,
	}
	resp, err := g.doRequest(ctx, http.MethodPost, g.cfg.GetGatewayURL(), body, headers)
	if err != nil {
		return nil, core.Wrap(core.ErrUpstreamFailure, "gateway unreachable", err)
	}
	if g.observe != nil {
		g.observe(mode, resp.StatusCode)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(raw))
	log.FromCtx(ctx).Error().
		Int("status", resp.StatusCode).
		Str("mode", mode).
		Str("body", msg).
		Msg("gateway error")

	return nil, statusError(resp.StatusCode, msg)
}

func statusError(status int, body string) error {
	kind := core.ErrUpstreamFailure
	switch status {
	case http.StatusTooManyRequests:
		kind = core.ErrRateLimited
	case http.StatusPaymentRequired:
		kind = core.ErrPaymentRequired
	}
	if body == "" {
		body = fmt.Sprintf("status %d", status)
	}
	return &core.UpstreamError{Kind: kind, Status: status, Body: body}
}
