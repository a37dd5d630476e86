package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// RESTPoller fetches quotes from an HTTP quote endpoint:
// GET {base}/quote?symbol=AG0 returning a Quote as JSON.
type RESTPoller struct {
	baseURL string
	client  *http.Client
}

func NewRESTPoller(baseURL string) *RESTPoller {
	return &RESTPoller{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *RESTPoller) Latest(ctx context.Context, symbol string) (Quote, error) {
	u := fmt.Sprintf("%s/quote?symbol=%s", p.baseURL, url.QueryEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("quote request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("fetch quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("fetch quote: status %d", resp.StatusCode)
	}

	var q Quote
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return Quote{}, fmt.Errorf("decode quote: %w", err)
	}
	if q.Symbol == "" {
		q.Symbol = symbol
	}
	if q.Time.IsZero() {
		q.Time = time.Now()
	}
	return q, nil
}

func (p *RESTPoller) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
