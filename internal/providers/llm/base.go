package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sandevgo/syllabot/internal/core"
)

type baseProvider struct {
	client *http.Client
	cfg    core.GatewayConfig
}

// The client has no overall timeout: streamed chat replies may run for a
// long time, so deadlines come from the request context.
func newBaseProvider(cfg core.GatewayConfig) baseProvider {
	return baseProvider{
		client: &http.Client{},
		cfg:    cfg,
	}
}

func (b *baseProvider) doRequest(ctx context.Context, method, url string, body any, headers map[string]string) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", core.SyllabotUserAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	return resp, nil
}
