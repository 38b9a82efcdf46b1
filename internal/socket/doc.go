// Package socket maintains the live-update connection that fans asset
// deltas out to every connected client.
//
// The connection redials on a fixed delay after any close. Nothing is
// buffered or replayed across a reconnect: a delta missed while
// disconnected is permanently lost, and the next full asset fetch heals
// the gap.
package socket
