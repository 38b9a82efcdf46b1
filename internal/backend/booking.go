package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gridpoint/facilitymap-core/internal/asset"
)

// bookedDateWire is one row of the booked-dates list.
type bookedDateWire struct {
	BookedDate string `json:"booked_date"`
}

// BookedDates fetches the dates a desk is already reserved on. Rows
// with unparseable dates are dropped with a warning rather than failing
// the whole availability check.
func (c *Client) BookedDates(ctx context.Context, assetID int) ([]time.Time, error) {
	url := fmt.Sprintf("%s/%d", c.url(c.cfg.Endpoints.DeskBooking, ""), assetID)

	var rows []bookedDateWire
	if err := c.getJSON(ctx, url, &rows); err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		d, err := asset.ParseDate(row.BookedDate)
		if err != nil {
			c.logger.Warn("dropping unparseable booked date", "asset_id", assetID, "value", row.BookedDate)
			continue
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// BookingRequest is the desk booking submission payload. Dates are in
// the backend's d/m/yyyy property format.
type BookingRequest struct {
	Email        string      `json:"email"`
	BookingDates []string    `json:"bookingDates"`
	Desk         asset.Asset `json:"Desk"`
}

// CreateBooking submits a desk booking.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) error {
	return c.sendJSON(ctx, http.MethodPost, c.url(c.cfg.Endpoints.DeskBooking, ""), req, nil)
}
