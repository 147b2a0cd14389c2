package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/board"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/timeline"
)

type slotItem struct {
	Label   string `json:"label"`
	Minutes int    `json:"minutes"`
}

type timelineResponse struct {
	Step        int        `json:"step_minutes"`
	WindowStart int        `json:"window_start"`
	WindowTotal int        `json:"window_total"`
	Slots       []slotItem `json:"slots"`
}

type cellItem struct {
	Slot      string `json:"slot"`
	State     string `json:"state"`
	BookingID string `json:"booking_id,omitempty"`
}

type placementItem struct {
	BookingID    string  `json:"booking_id"`
	Status       string  `json:"status"`
	Kind         string  `json:"kind"`
	Title        string  `json:"title"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	LeftPercent  float64 `json:"left_percent"`
	WidthPercent float64 `json:"width_percent"`
}

type rowItem struct {
	ResourceID    string          `json:"resource_id"`
	Kind          string          `json:"kind"`
	Role          string          `json:"role,omitempty"`
	Name          string          `json:"name"`
	Color         string          `json:"color,omitempty"`
	Holiday       bool            `json:"holiday"`
	TransportCost int             `json:"transport_cost,omitempty"`
	Cells         []cellItem      `json:"cells"`
	Bookings      []placementItem `json:"bookings"`
}

type skippedItem struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type conflictItem struct {
	ResourceID string `json:"resource_id"`
	First      string `json:"first_booking_id"`
	Second     string `json:"second_booking_id"`
}

type viewResponse struct {
	Date         string         `json:"date"`
	Axis         string         `json:"axis"`
	Header       []string       `json:"header"`
	Rows         []rowItem      `json:"rows"`
	SkippedCount int            `json:"skipped_count"`
	Skipped      []skippedItem  `json:"skipped,omitempty"`
	Conflicts    []conflictItem `json:"conflicts,omitempty"`
	FetchErrors  []string       `json:"fetch_errors,omitempty"`
}

func timelineBody(g timeline.Grid) timelineResponse {
	resp := timelineResponse{Step: g.Step, WindowStart: g.WindowStart(), WindowTotal: g.WindowTotal()}
	for _, s := range g.Slots {
		resp.Slots = append(resp.Slots, slotItem{Label: s.Label, Minutes: s.Minutes})
	}
	return resp
}

func viewBody(v board.View) viewResponse {
	resp := viewResponse{
		Date:         v.Date.String(),
		Axis:         string(v.Axis),
		Rows:         make([]rowItem, 0, len(v.Rows)),
		SkippedCount: v.SkippedCount(),
		FetchErrors:  v.FetchErrors,
	}
	for _, c := range v.Header.Cells {
		resp.Header = append(resp.Header, c.Slot.Label)
	}
	for _, row := range v.Rows {
		item := rowItem{
			ResourceID:    row.Resource.ID,
			Kind:          string(row.Resource.Kind),
			Role:          string(row.Resource.Role),
			Name:          row.Name,
			Color:         row.Color,
			Holiday:       row.Holiday,
			TransportCost: row.TransportCost,
			Cells:         make([]cellItem, 0, len(row.Cells)),
			Bookings:      make([]placementItem, 0, len(row.Bookings)),
		}
		for _, c := range row.Cells {
			item.Cells = append(item.Cells, cellItem{Slot: c.Slot.Label, State: string(c.State), BookingID: c.BookingID})
		}
		for _, p := range row.Bookings {
			item.Bookings = append(item.Bookings, placementItem{
				BookingID:    p.BookingID,
				Status:       string(p.Status),
				Kind:         string(p.Kind),
				Title:        p.Title,
				StartTime:    p.Start,
				EndTime:      p.End,
				LeftPercent:  p.LeftPercent,
				WidthPercent: p.WidthPercent,
			})
		}
		resp.Rows = append(resp.Rows, item)
	}
	for _, s := range v.Skipped {
		resp.Skipped = append(resp.Skipped, skippedItem{Kind: s.Kind, ID: s.ID, Reason: s.Reason})
	}
	for _, c := range v.Conflicts {
		resp.Conflicts = append(resp.Conflicts, conflictItem{ResourceID: c.ResourceID, First: c.FirstID, Second: c.SecondID})
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
