// Package booking drives the desk-booking flow: availability lookup
// for a bookable desk, weekday-only selection inside a rolling
// one-week window, and optimistic submission to the booking backend.
package booking
