// Package inventory is the HTTP client for the remote inventory service.
// Every call is bounded by a fixed per-request timeout; calls that exceed it
// surface as domain.ErrPeerUnavailable rather than hangs.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hoteldesk/booking-system/internal/booking/application"
	"github.com/hoteldesk/booking-system/internal/booking/domain"
)

type Client struct {
	log  *slog.Logger
	http *resty.Client
}

func NewClient(log *slog.Logger, baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0)
	return &Client{log: log, http: c}
}

type availabilityResp struct {
	Success           bool   `json:"success"`
	AvailableQuantity int    `json:"available_quantity"`
	IsAvailable       bool   `json:"is_available"`
	Error             string `json:"error"`
}

type roomResp struct {
	Success bool `json:"success"`
	Room    struct {
		ID                 int64  `json:"id"`
		RoomNumber         string `json:"room_number"`
		RoomType           string `json:"room_type"`
		PricePerNightCents int64  `json:"price_per_night_cents"`
		TotalQuantity      int    `json:"total_quantity"`
	} `json:"room"`
	Error string `json:"error"`
}

type reserveResp struct {
	Success           bool   `json:"success"`
	RemainingQuantity int    `json:"remaining_quantity"`
	Error             string `json:"error"`
}

func (c *Client) CheckAvailability(ctx context.Context, roomID int64, date time.Time) (application.AvailabilityInfo, error) {
	var out availabilityResp
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("date", date.Format(domain.DateLayout)).
		SetResult(&out).
		SetError(&out).
		Get(fmt.Sprintf("/rooms/%d/availability", roomID))
	if err != nil {
		return application.AvailabilityInfo{}, fmt.Errorf("%w: %v", domain.ErrPeerUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return application.AvailabilityInfo{}, peerError("availability check", resp.StatusCode(), out.Error)
	}
	return application.AvailabilityInfo{
		AvailableQuantity: out.AvailableQuantity,
		IsAvailable:       out.IsAvailable,
	}, nil
}

func (c *Client) GetRoom(ctx context.Context, roomID int64) (application.RoomInfo, error) {
	var out roomResp
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&out).
		Get(fmt.Sprintf("/rooms/%d", roomID))
	if err != nil {
		return application.RoomInfo{}, fmt.Errorf("%w: %v", domain.ErrPeerUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return application.RoomInfo{}, peerError("room lookup", resp.StatusCode(), out.Error)
	}
	return application.RoomInfo{
		ID:                 out.Room.ID,
		RoomNumber:         out.Room.RoomNumber,
		RoomType:           out.Room.RoomType,
		PricePerNightCents: out.Room.PricePerNightCents,
		TotalQuantity:      out.Room.TotalQuantity,
	}, nil
}

func (c *Client) Reserve(ctx context.Context, roomID int64, date time.Time) (int, error) {
	var out reserveResp
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"date": date.Format(domain.DateLayout)}).
		SetResult(&out).
		SetError(&out).
		Post(fmt.Sprintf("/rooms/%d/reserve", roomID))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrPeerUnavailable, err)
	}
	if resp.StatusCode() == http.StatusConflict {
		c.log.Warn("reserve rejected by inventory", "room_id", roomID, "reason", out.Error)
		return 0, fmt.Errorf("%w: %s", domain.ErrRoomUnavailable, out.Error)
	}
	if resp.StatusCode() != http.StatusOK {
		return 0, peerError("reserve", resp.StatusCode(), out.Error)
	}
	return out.RemainingQuantity, nil
}

// peerError maps an unexpected peer status to an error. 5xx answers count as
// peer unavailability; anything else is unexpected and bubbles up as-is.
func peerError(op string, status int, msg string) error {
	if status >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %s returned %d", domain.ErrPeerUnavailable, op, status)
	}
	if msg == "" {
		msg = "unexpected response"
	}
	return fmt.Errorf("inventory %s failed with status %d: %s", op, status, msg)
}
