package model

import "time"

// PricePoint is one day of the gold price series. Date is the unique key
// within a series; Change/ChangePercent are always relative to the
// chronologically previous point after sorting and trimming.
type PricePoint struct {
	Date          string  `json:"date"`      // YYYY-MM-DD
	Price         float64 `json:"price"`     // CNY per gram, 2 decimals
	Timestamp     string  `json:"timestamp"` // YYYY-MM-DD HH:MM:SS, display + freshness
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// HistoryRow is a raw row extracted from the exchange daily-quotes table,
// before merging and delta computation.
type HistoryRow struct {
	Date  string
	Price float64
}

// Quote is the normalized live quote.
type Quote struct {
	Name         string
	CurrentPrice float64
	PrevClose    float64
	HasPrevClose bool
	Date         string // YYYY-MM-DD
	Timestamp    string // YYYY-MM-DD HH:MM:SS
}

// SeriesData is the payload served to consumers and stored in the cache.
type SeriesData struct {
	Records    []PricePoint `json:"records"`
	Unit       string       `json:"unit"`
	Source     string       `json:"source"`
	LastUpdate string       `json:"lastUpdate"`
}

// CachedSeries is the single rolling cache entry. Overwritten in place on
// every successful fetch, never deleted.
type CachedSeries struct {
	FetchedAt time.Time  `json:"fetchedAt"`
	SourceKey string     `json:"sourceKey"`
	Data      SeriesData `json:"data"`
}

// Latest returns the chronologically newest point. Records are kept sorted
// ascending by date, so this is the last element.
func (s SeriesData) Latest() (PricePoint, bool) {
	if len(s.Records) == 0 {
		return PricePoint{}, false
	}
	return s.Records[len(s.Records)-1], true
}

// Newest returns up to n points ordered newest first, the view the history
// table renders.
func (s SeriesData) Newest(n int) []PricePoint {
	out := make([]PricePoint, 0, n)
	for i := len(s.Records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.Records[i])
	}
	return out
}

// ChartWindow returns the last n points in chronological order.
func (s SeriesData) ChartWindow(n int) []PricePoint {
	if len(s.Records) <= n {
		return s.Records
	}
	return s.Records[len(s.Records)-n:]
}

// MinMax returns the lowest and highest price over the last n points.
func (s SeriesData) MinMax(n int) (min, max float64) {
	w := s.ChartWindow(n)
	if len(w) == 0 {
		return 0, 0
	}
	min, max = w[0].Price, w[0].Price
	for _, p := range w[1:] {
		if p.Price < min {
			min = p.Price
		}
		if p.Price > max {
			max = p.Price
		}
	}
	return min, max
}
