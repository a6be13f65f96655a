package service

import (
	"fmt"

	"github.com/smartcity/parking/internal/domain"
)

// EventCatalog is a static, read-only list of events near zones
type EventCatalog struct {
	events []domain.Event
}

// NewEventCatalog creates a catalog over events
func NewEventCatalog(events []domain.Event) *EventCatalog {
	return &EventCatalog{events: events}
}

// List returns events filtered by zone id and date. Zero values disable a filter.
func (c *EventCatalog) List(zoneID int, date string) []domain.Event {
	out := make([]domain.Event, 0)
	for _, e := range c.events {
		if zoneID != 0 && e.ZoneID != zoneID {
			continue
		}
		if date != "" && e.Date != date {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Get returns the event with the given id
func (c *EventCatalog) Get(id int) (domain.Event, error) {
	for _, e := range c.events {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.Event{}, fmt.Errorf("events: event %d: %w", id, domain.ErrNotFound)
}

// DefaultEvents returns the built-in 2026 Seattle event list
func DefaultEvents() []domain.Event {
	return []domain.Event{
		{ID: 1, Name: "Tech Innovation Summit", ZoneID: 1, Date: "2026-02-07", StartTime: "09:00", EndTime: "17:00", ExpectedImpact: "High"},
		{ID: 2, Name: "Business Conference", ZoneID: 2, Date: "2026-02-07", StartTime: "09:00", EndTime: "17:00", ExpectedImpact: "Medium"},
		{ID: 3, Name: "Weekend Market", ZoneID: 3, Date: "2026-02-08", StartTime: "10:00", EndTime: "16:00", ExpectedImpact: "High"},
		{ID: 4, Name: "Capitol Hill Block Party", ZoneID: 4, Date: "2026-07-24", StartTime: "12:00", EndTime: "22:00", ExpectedImpact: "High"},
		{ID: 5, Name: "Seahawks vs 49ers", ZoneID: 6, Date: "2026-09-13", StartTime: "13:00", EndTime: "17:00", ExpectedImpact: "High"},
		{ID: 6, Name: "Super Bowl Watch Party", ZoneID: 6, Date: "2026-02-08", StartTime: "15:00", EndTime: "20:00", ExpectedImpact: "High"},
		{ID: 7, Name: "Mariners vs Yankees", ZoneID: 7, Date: "2026-04-17", StartTime: "19:00", EndTime: "22:00", ExpectedImpact: "High"},
		{ID: 8, Name: "Seattle International Film Festival", ZoneID: 8, Date: "2026-05-16", StartTime: "10:00", EndTime: "22:00", ExpectedImpact: "High"},
		{ID: 9, Name: "University District Street Fair", ZoneID: 9, Date: "2026-05-23", StartTime: "10:00", EndTime: "18:00", ExpectedImpact: "High"},
		{ID: 10, Name: "Fremont Solstice Parade", ZoneID: 10, Date: "2026-06-20", StartTime: "13:00", EndTime: "17:00", ExpectedImpact: "High"},
	}
}
