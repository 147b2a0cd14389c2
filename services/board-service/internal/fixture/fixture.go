// Package fixture serves board inputs from a JSON document, for offline inspection with
// boardctl and for running the service without a database.
package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/calendar"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/model"
)

type Staff struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Color    string `json:"color,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
}

type Bed struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type Shift struct {
	StaffID       string        `json:"staff_id"`
	Date          calendar.Date `json:"date"`
	StartTime     string        `json:"start_time"`
	EndTime       string        `json:"end_time"`
	TransportCost int           `json:"transport_cost,omitempty"`
}

type Booking struct {
	ID           string        `json:"id"`
	Date         calendar.Date `json:"date"`
	StartTime    string        `json:"start_time"`
	EndTime      string        `json:"end_time"`
	StaffID      string        `json:"staff_id,omitempty"`
	BedID        string        `json:"bed_id,omitempty"`
	Status       string        `json:"status"`
	Kind         string        `json:"kind,omitempty"`
	CustomerName string        `json:"customer_name,omitempty"`
	MenuName     string        `json:"menu_name,omitempty"`
	Note         string        `json:"note,omitempty"`
}

// Document is the whole fixture. It satisfies the board's ShiftSource, BookingSource and
// Registry interfaces.
type Document struct {
	Staff    []Staff   `json:"staff"`
	BedList  []Bed     `json:"beds"`
	Shifts   []Shift   `json:"shifts"`
	Bookings []Booking `json:"bookings"`
}

func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &doc, nil
}

func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

func (d *Document) ActiveStaff(context.Context) ([]model.StaffMember, error) {
	var out []model.StaffMember
	for _, s := range d.Staff {
		active := s.IsActive == nil || *s.IsActive
		if !active {
			continue
		}
		role := model.Role(s.Role)
		if role == "" {
			role = model.RoleStaff
		}
		out = append(out, model.StaffMember{ID: s.ID, Name: s.Name, Role: role, Color: s.Color, IsActive: true})
	}
	return out, nil
}

func (d *Document) Beds(context.Context) ([]model.BedInfo, error) {
	out := make([]model.BedInfo, 0, len(d.BedList))
	for _, b := range d.BedList {
		out = append(out, model.BedInfo{ID: b.ID, Name: b.Name})
	}
	return out, nil
}

func (d *Document) ShiftsForMonth(_ context.Context, staffID string, month calendar.Month) ([]model.Shift, error) {
	var out []model.Shift
	for _, s := range d.Shifts {
		if s.StaffID != staffID || !month.Contains(s.Date) {
			continue
		}
		out = append(out, model.Shift{
			StaffID:       s.StaffID,
			Date:          s.Date,
			StartTime:     s.StartTime,
			EndTime:       s.EndTime,
			TransportCost: s.TransportCost,
		})
	}
	return out, nil
}

func (d *Document) BookingsForDate(_ context.Context, date calendar.Date) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range d.Bookings {
		if b.Date != date {
			continue
		}
		kind := model.BookingKind(b.Kind)
		if kind == "" {
			kind = model.KindAppointment
		}
		out = append(out, model.Booking{
			ID:           b.ID,
			Date:         b.Date,
			StartTime:    b.StartTime,
			EndTime:      b.EndTime,
			StaffID:      b.StaffID,
			BedID:        b.BedID,
			Status:       model.Status(b.Status),
			Kind:         kind,
			CustomerName: b.CustomerName,
			MenuName:     b.MenuName,
			Note:         b.Note,
		})
	}
	return out, nil
}
