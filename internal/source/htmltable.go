package source

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/net/html"

	"github.com/Aias00/gold-price-monitor/internal/model"
)

// closeOffset is the column distance from the contract-label cell to the
// closing-price cell in the exchange's daily-quotes table.
const closeOffset = 4

// minRowCells filters out header and spacer rows.
const minRowCells = 7

// ExtractRows parses a daily-quotes HTML document and returns one
// {date, price} row per trading day for the given contract label.
//
// The table layout is positional: within a row, the cell left of the
// contract label holds the date and the cell closeOffset positions to the
// right holds the closing price. Rows that don't fit the shape are skipped,
// duplicate dates are resolved in favor of the later occurrence, and the
// result is sorted ascending by date. Malformed input is never an error;
// the worst case is an empty result.
func ExtractRows(doc, contract string) []model.HistoryRow {
	byDate := make(map[string]float64)
	for _, cells := range tableRows(doc) {
		if len(cells) < minRowCells {
			continue
		}
		anchor := -1
		for i, c := range cells {
			if c == contract {
				anchor = i
				break
			}
		}
		if anchor < 1 {
			continue
		}
		date := cells[anchor-1]
		if !model.ValidDate(date) {
			continue
		}
		if anchor+closeOffset >= len(cells) {
			continue
		}
		price, ok := parsePrice(cells[anchor+closeOffset])
		if !ok {
			continue
		}
		byDate[date] = price
	}

	rows := make([]model.HistoryRow, 0, len(byDate))
	for date, price := range byDate {
		rows = append(rows, model.HistoryRow{Date: date, Price: price})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows
}

// tableRows tokenizes the document and returns the plain-text cells of
// every table row. Entities are decoded and whitespace collapsed by the
// tokenizer and cleanCell respectively.
func tableRows(doc string) [][]string {
	z := html.NewTokenizer(strings.NewReader(doc))

	var rows [][]string
	var cells []string
	var cell strings.Builder
	inRow, inCell := false, false

	flushCell := func() {
		if inCell {
			cells = append(cells, cleanCell(cell.String()))
			cell.Reset()
			inCell = false
		}
	}
	flushRow := func() {
		flushCell()
		if inRow && len(cells) > 0 {
			rows = append(rows, cells)
		}
		cells = nil
		inRow = false
	}

	for {
		switch z.Next() {
		case html.ErrorToken:
			flushRow()
			return rows
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "tr":
				flushRow()
				inRow = true
			case "td", "th":
				flushCell()
				if inRow {
					inCell = true
				}
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "tr":
				flushRow()
			case "td", "th":
				flushCell()
			}
		case html.TextToken:
			if inCell {
				cell.Write(z.Text())
			}
		}
	}
}

func cleanCell(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func parsePrice(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	v := d.InexactFloat64()
	if v <= 0 {
		return 0, false
	}
	return v, true
}
