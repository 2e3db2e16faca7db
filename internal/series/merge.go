package series

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Aias00/gold-price-monitor/internal/model"
)

// ErrNoRecords means the merge produced an empty series: no live quote, no
// usable history and no usable cache.
var ErrNoRecords = errors.New("no records available")

const nominalClose = "15:00:00"

// Merge combines extracted history rows, the live quote and the previously
// cached series into one deduplicated, sorted, delta-annotated series
// bounded to limit points.
//
// History is the preferred base; the cached series is only a fallback when
// the history fetch yielded nothing. The live quote point is upserted by
// date last, so on a date collision it wins over the history row. When the
// base is empty and the quote carries a previous close, a synthetic
// previous-day point is added so a fresh install doesn't render a
// single-point flat line.
func Merge(quote model.Quote, history []model.HistoryRow, cached []model.PricePoint, limit int) ([]model.PricePoint, error) {
	var points []model.PricePoint
	if len(history) > 0 {
		points = make([]model.PricePoint, 0, len(history))
		for _, r := range history {
			if !model.ValidDate(r.Date) || !finitePositive(r.Price) {
				continue
			}
			points = append(points, model.PricePoint{
				Date:      r.Date,
				Price:     round2(r.Price),
				Timestamp: r.Date + " " + nominalClose,
			})
		}
	} else {
		points = make([]model.PricePoint, 0, len(cached))
		for _, p := range cached {
			if !model.ValidDate(p.Date) || !finitePositive(p.Price) {
				continue
			}
			points = append(points, model.PricePoint{Date: p.Date, Price: p.Price, Timestamp: p.Timestamp})
		}
	}

	if model.ValidDate(quote.Date) && finitePositive(quote.CurrentPrice) {
		live := model.PricePoint{
			Date:      quote.Date,
			Price:     round2(quote.CurrentPrice),
			Timestamp: quote.Timestamp,
		}
		if len(points) == 0 && quote.HasPrevClose && finitePositive(quote.PrevClose) {
			if prevDate, ok := dayBefore(quote.Date); ok {
				points = append(points, model.PricePoint{
					Date:      prevDate,
					Price:     round2(quote.PrevClose),
					Timestamp: prevDate + " " + nominalClose,
				})
			}
		}
		points = upsert(points, live)
	}

	if len(points) == 0 {
		return nil, ErrNoRecords
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	if len(points) > limit {
		points = points[len(points)-limit:]
	}

	annotate(points)
	return points, nil
}

// upsert replaces the point sharing live's date, or appends.
func upsert(points []model.PricePoint, live model.PricePoint) []model.PricePoint {
	for i := range points {
		if points[i].Date == live.Date {
			points[i] = live
			return points
		}
	}
	return append(points, live)
}

// annotate recomputes Change and ChangePercent against each point's
// immediate predecessor. Deltas are never carried over from a stale merge.
func annotate(points []model.PricePoint) {
	for i := range points {
		if i == 0 {
			points[i].Change = 0
			points[i].ChangePercent = 0
			continue
		}
		prev := decimal.NewFromFloat(points[i-1].Price)
		cur := decimal.NewFromFloat(points[i].Price)
		change := cur.Sub(prev).Round(2)
		points[i].Change = change.InexactFloat64()
		if prev.IsZero() {
			points[i].ChangePercent = 0
			continue
		}
		points[i].ChangePercent = change.Div(prev).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}
}

func dayBefore(date string) (string, bool) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", false
	}
	return t.AddDate(0, 0, -1).Format("2006-01-02"), true
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
