package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Aias00/gold-price-monitor/internal/httpx"
	"github.com/Aias00/gold-price-monitor/internal/model"
)

// ErrHistoryUnavailable means the trading-history page could not be
// fetched. Callers degrade to quote-only or cached history; it never
// aborts the pipeline.
var ErrHistoryUnavailable = errors.New("history unavailable")

// maxHistoryBody caps how much of the quotes page is read.
const maxHistoryBody = 4 << 20

// HistoryClient fetches the exchange's daily-quotes HTML page and extracts
// the rows for one contract.
type HistoryClient struct {
	url      string
	contract string
	client   *httpx.Client
}

func NewHistoryClient(url, contract string, hc *httpx.Client) *HistoryClient {
	return &HistoryClient{url: url, contract: contract, client: hc}
}

// Fetch returns the extracted history rows, sorted ascending by date.
// An empty slice with a nil error means the page parsed but held no rows
// for the contract; callers fall back to other sources either way.
func (h *HistoryClient) Fetch(ctx context.Context) ([]model.HistoryRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistoryUnavailable, err)
	}
	resp, err := h.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistoryUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrHistoryUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxHistoryBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrHistoryUnavailable, err)
	}
	return ExtractRows(string(body), h.contract), nil
}
