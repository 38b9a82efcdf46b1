package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gridpoint/facilitymap-core/internal/asset"
	"github.com/gridpoint/facilitymap-core/internal/backend"
)

// windowDays is the length of the booking window beyond today.
const windowDays = 7

// Backend is the subset of the REST client the booking flow needs.
type Backend interface {
	BookedDates(ctx context.Context, assetID int) ([]time.Time, error)
	CreateBooking(ctx context.Context, req backend.BookingRequest) error
}

// DeltaSink receives the Reserved flip when a booking starts today.
// The sync engine routes it through the same merge path as socket
// deltas, so the store, the map glyph and remote clients all see it.
type DeltaSink interface {
	ApplyLocalDelta(d asset.Delta)
}

// Logger is the minimal logging interface the flow depends on.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// State is the booking flow lifecycle state.
type State int

const (
	Idle State = iota
	FetchingAvailability
	Ready
	Submitting
	Committed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FetchingAvailability:
		return "fetching_availability"
	case Ready:
		return "ready"
	case Submitting:
		return "submitting"
	case Committed:
		return "committed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Flow drives one desk-booking interaction: fetch the desk's existing
// bookings, offer the open weekdays in the coming week, submit the
// user's selection. A submitted booking that starts today also flips
// the desk's Reserved property immediately instead of waiting for the
// backend to push the change back.
//
// Submission is optimistic. The local Reserved flip and the booked-date
// bookkeeping happen before the POST, and a failed POST is recorded but
// not rolled back.
//
// Thread Safety: all methods are safe for concurrent use.
type Flow struct {
	backend Backend
	sink    DeltaSink
	logger  Logger
	now     func() time.Time

	mu     sync.Mutex
	state  State
	desk   asset.Asset
	email  string
	booked map[string]struct{}
	err    error
}

// NewFlow creates an idle booking flow. The sink may be nil when no
// local delta routing is wanted.
func NewFlow(b Backend, sink DeltaSink, logger Logger) *Flow {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Flow{
		backend: b,
		sink:    sink,
		logger:  logger,
		now:     time.Now,
		booked:  make(map[string]struct{}),
	}
}

// State returns the current lifecycle state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the error recorded by a failed submission, if any.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Begin starts a booking interaction for a desk: fetches its existing
// bookings and moves the flow to Ready. A fetch failure returns the
// flow to Idle.
func (f *Flow) Begin(ctx context.Context, desk asset.Asset, email string) error {
	f.mu.Lock()
	f.state = FetchingAvailability
	f.desk = desk
	f.email = email
	f.err = nil
	f.booked = make(map[string]struct{})
	f.mu.Unlock()

	dates, err := f.backend.BookedDates(ctx, desk.AssetID)
	if err != nil {
		f.mu.Lock()
		f.state = Idle
		f.mu.Unlock()
		return fmt.Errorf("fetching booked dates for desk %d: %w", desk.AssetID, err)
	}

	f.mu.Lock()
	for _, d := range dates {
		f.booked[asset.FormatDate(d)] = struct{}{}
	}
	f.state = Ready
	f.mu.Unlock()

	f.logger.Debug("booking availability loaded",
		"desk", desk.AssetID, "booked", len(dates))
	return nil
}

// Available returns the open dates in the booking window: today plus
// the next seven days, minus weekends, minus dates already booked.
func (f *Flow) Available() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.availableLocked()
}

// NextAvailable returns the earliest open date in the window, if any.
func (f *Flow) NextAvailable() (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	open := f.availableLocked()
	if len(open) == 0 {
		return time.Time{}, false
	}
	return open[0], true
}

func (f *Flow) availableLocked() []time.Time {
	today := dateOnly(f.now())

	var open []time.Time
	for i := 0; i <= windowDays; i++ {
		day := today.AddDate(0, 0, i)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if _, taken := f.booked[asset.FormatDate(day)]; taken {
			continue
		}
		open = append(open, day)
	}
	return open
}

// Submit books the selected dates for the desk started with Begin.
// Every date must be an open weekday. When the earliest date is today
// the desk's Reserved property is flipped through the sink before the
// POST. Success moves the flow to Committed; a POST failure moves it
// to Failed without undoing the local flip.
func (f *Flow) Submit(ctx context.Context, dates []time.Time) error {
	f.mu.Lock()
	if f.state != Ready {
		f.mu.Unlock()
		return ErrInvalidState
	}
	if len(dates) == 0 {
		f.mu.Unlock()
		return ErrNoDates
	}

	for _, d := range dates {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			f.mu.Unlock()
			return fmt.Errorf("%w: %s is a weekend", ErrUnavailable, asset.FormatDate(d))
		}
		if _, taken := f.booked[asset.FormatDate(d)]; taken {
			f.mu.Unlock()
			return fmt.Errorf("%w: %s is already booked", ErrUnavailable, asset.FormatDate(d))
		}
	}

	f.state = Submitting
	desk, email := f.desk, f.email

	startsToday := false
	today := asset.FormatDate(dateOnly(f.now()))
	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		s := asset.FormatDate(d)
		formatted = append(formatted, s)
		f.booked[s] = struct{}{}
		if s == today {
			startsToday = true
		}
	}
	f.mu.Unlock()

	if startsToday && f.sink != nil {
		f.sink.ApplyLocalDelta(asset.Delta{
			Type:    desk.Type,
			AssetID: desk.AssetID,
			Props:   map[string]string{asset.PropReserved: "true"},
		})
	}

	err := f.backend.CreateBooking(ctx, backend.BookingRequest{
		Email:        email,
		BookingDates: formatted,
		Desk:         desk,
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = Failed
		f.err = err
		f.logger.Warn("booking submission failed",
			"desk", desk.AssetID, "error", err)
		return fmt.Errorf("submitting booking for desk %d: %w", desk.AssetID, err)
	}

	f.state = Committed
	f.logger.Debug("booking committed",
		"desk", desk.AssetID, "dates", len(formatted))
	return nil
}

// Reset returns a committed or failed flow to Idle so it can be reused
// for another desk.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = Idle
	f.desk = asset.Asset{}
	f.email = ""
	f.err = nil
	f.booked = make(map[string]struct{})
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
