package badge

import (
	"math"
	"strconv"

	"github.com/Aias00/gold-price-monitor/internal/model"
)

// Badge colors: green for up, red for down, gray for neutral.
const (
	ColorUp      = "#10B981"
	ColorDown    = "#EF4444"
	ColorNeutral = "#9CA3AF"
)

// Status is what the badge renderer consumes: the rounded integer price as
// text and a color keyed on the day-over-day change sign.
type Status struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// FromSeries derives the badge status from the newest point of a series.
func FromSeries(data model.SeriesData) (Status, bool) {
	latest, ok := data.Latest()
	if !ok || latest.Price <= 0 {
		return Status{}, false
	}
	st := Status{
		Text:  strconv.Itoa(int(math.Round(latest.Price))),
		Color: ColorNeutral,
	}
	if latest.Change > 0 {
		st.Color = ColorUp
	} else if latest.Change < 0 {
		st.Color = ColorDown
	}
	return st, true
}
