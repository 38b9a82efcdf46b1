// Package favorites stores per-location view presets: a saved camera,
// map style and layer visibility snapshot that navigation applies when
// the user returns to a favorited location.
//
// The SQLite repository keeps the whole table cached in memory, so
// lookups on the navigation path never block on the database.
package favorites
