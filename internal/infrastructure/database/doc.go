// Package database provides the local SQLite store used by FacilityMap Core.
//
// Only non-critical, per-deployment preferences are persisted here (the
// favorites store). Facility data — locations, assets, rooms, warnings —
// always comes from the remote backend and is never written locally.
//
// The wrapper configures WAL mode, busy timeout and foreign keys via
// connection-string pragmas and restricts the pool to a single connection,
// which is the safe configuration for SQLite's single-writer model.
package database
