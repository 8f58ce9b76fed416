package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/javiermolinar/timeflow/internal/schedule"
)

// ListTimeSlots returns the slots owned by ownerID. The endpoint returns
// every owner's slots, so filtering happens here. An empty ownerID returns all.
func (c *Client) ListTimeSlots(ctx context.Context, ownerID string) ([]schedule.AvailabilitySlot, error) {
	var slots []schedule.AvailabilitySlot
	if err := c.do(ctx, http.MethodGet, "/timeSlots", nil, nil, &slots); err != nil {
		return nil, err
	}
	if ownerID == "" {
		return slots, nil
	}
	return schedule.SlotsOwnedBy(slots, ownerID), nil
}

// TimeSlots is ListTimeSlots for one owner.
func (c *Client) TimeSlots(ctx context.Context, ownerID string) ([]schedule.AvailabilitySlot, error) {
	return c.ListTimeSlots(ctx, ownerID)
}

// CreateTimeSlot adds a weekly slot for req.UserID. Teacher working hours
// are created with IsBusy set.
func (c *Client) CreateTimeSlot(ctx context.Context, req TimeSlotRequest) error {
	req.Time = schedule.WireTime(req.Time)
	return c.do(ctx, http.MethodPost, "/timeSlots", nil, req, nil)
}

// DeleteTimeSlot removes a slot.
func (c *Client) DeleteTimeSlot(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/timeSlots/"+url.PathEscape(id), nil, nil, nil)
}

// FreeSlots returns the open slots of a teacher.
func (c *Client) FreeSlots(ctx context.Context, ownerID string) ([]schedule.AvailabilitySlot, error) {
	var slots []schedule.AvailabilitySlot
	if err := c.do(ctx, http.MethodGet, "/timeSlots/free/"+url.PathEscape(ownerID), nil, nil, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}
