package seatmap

import (
	"fmt"

	"selambus/internal/domain"
)

// Layout is the seat grid of one bus class. An empty cell is an aisle gap.
type Layout struct {
	Class domain.BusClass
	Rows  [][]string
	ids   map[string]struct{}
}

// Has reports whether seatID exists in the layout.
func (l Layout) Has(seatID string) bool {
	_, ok := l.ids[seatID]
	return ok
}

// SeatIDs lists the seat ids row by row.
func (l Layout) SeatIDs() []string {
	out := make([]string, 0, len(l.ids))
	for _, row := range l.Rows {
		for _, id := range row {
			if id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

// buildLayout expands a column pattern over row letters. Pattern entries
// are column numbers, 0 marks the aisle.
func buildLayout(class domain.BusClass, rows int, pattern []int) Layout {
	l := Layout{Class: class, ids: map[string]struct{}{}}
	for r := 0; r < rows; r++ {
		letter := string(rune('A' + r))
		row := make([]string, len(pattern))
		for i, col := range pattern {
			if col == 0 {
				continue
			}
			id := fmt.Sprintf("%s%d", letter, col)
			row[i] = id
			l.ids[id] = struct{}{}
		}
		l.Rows = append(l.Rows, row)
	}
	return l
}

var layouts = map[domain.BusClass]Layout{
	domain.ClassEconomy:  buildLayout(domain.ClassEconomy, 12, []int{1, 2, 0, 3, 4}),
	domain.ClassBusiness: buildLayout(domain.ClassBusiness, 10, []int{1, 0, 2, 3}),
	domain.ClassLuxury:   buildLayout(domain.ClassLuxury, 8, []int{1, 0, 2}),
}

// LayoutFor returns the layout of class.
func LayoutFor(class domain.BusClass) (Layout, bool) {
	l, ok := layouts[class]
	return l, ok
}

// DefaultPrices are the per-seat fares in birr.
var DefaultPrices = map[domain.BusClass]int64{
	domain.ClassEconomy:  150,
	domain.ClassBusiness: 250,
	domain.ClassLuxury:   350,
}

var (
	DefaultBooked    = []string{"A1", "A2", "B3", "C4", "D5"}
	DefaultWomenOnly = []string{"E1", "E2", "F1", "F2"}
)
