package seatmap

import (
	"strings"

	"selambus/internal/domain"
	"selambus/internal/domain/models"
	"selambus/internal/utils"
)

// View is everything the seat page renders, derived from state.
type View struct {
	BusType       domain.BusClass          `json:"busType"`
	Phase         Phase                    `json:"phase"`
	Rows          [][]models.SeatCell      `json:"rows"`
	SelectedSeats []string                 `json:"selectedSeats"`
	Summary       string                   `json:"summary"`
	SeatCount     int                      `json:"seatCount"`
	SeatPrice     int64                    `json:"seatPrice"`
	TotalPrice    int64                    `json:"totalPrice"`
	TotalLabel    string                   `json:"totalLabel"`
	Passengers    []models.PassengerRecord `json:"passengers"`
	MaxSeats      int                      `json:"maxSeats"`
}

func (m *Manager) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewLocked()
}

func (m *Manager) viewLocked() View {
	selected := make(map[string]struct{}, len(m.selected))
	for _, id := range m.selected {
		selected[id] = struct{}{}
	}

	rows := make([][]models.SeatCell, 0, len(m.layout.Rows))
	for _, row := range m.layout.Rows {
		cells := make([]models.SeatCell, 0, len(row))
		for _, id := range row {
			if id == "" {
				cells = append(cells, models.SeatCell{Aisle: true})
				continue
			}
			cells = append(cells, m.cell(id, selected))
		}
		rows = append(rows, cells)
	}

	price := m.prices[m.layout.Class]
	total := price * int64(len(m.selected))
	summary := "No seats selected"
	if len(m.selected) > 0 {
		summary = strings.Join(m.selected, ", ")
	}

	forms := make([]models.PassengerRecord, 0, len(m.selected))
	for _, id := range m.selected {
		p := m.forms[id]
		p.SeatNumber = id
		forms = append(forms, p)
	}

	return View{
		BusType:       m.layout.Class,
		Phase:         m.phaseLocked(),
		Rows:          rows,
		SelectedSeats: append([]string{}, m.selected...),
		Summary:       summary,
		SeatCount:     len(m.selected),
		SeatPrice:     price,
		TotalPrice:    total,
		TotalLabel:    utils.FormatBirr(total),
		Passengers:    forms,
		MaxSeats:      MaxSeats,
	}
}

// cell applies booked > selected > womenOnly > available.
func (m *Manager) cell(id string, selected map[string]struct{}) models.SeatCell {
	c := models.SeatCell{SeatID: id, Clickable: true}
	if m.isBooked(id) {
		c.State, c.Clickable, c.Tooltip = models.SeatBooked, false, "Already booked"
		return c
	}
	if _, ok := selected[id]; ok {
		c.State, c.Tooltip = models.SeatSelected, "Selected - Click to deselect"
		return c
	}
	if _, ok := m.womenOnly[id]; ok {
		c.State, c.Tooltip = models.SeatWomenOnly, "Women only seat - Click to select"
		return c
	}
	c.State, c.Tooltip = models.SeatAvailable, "Click to select"
	return c
}
