// Package sync is the state-consistency core of the facility map: one
// engine that owns the current location, fans navigation fetches out
// concurrently with stale-response guards, and merges asset mutations
// from user actions, REST responses and socket pushes into the asset
// store and the map adapter in a single pass.
//
// Views never mutate state directly. They call the engine's operations
// and re-read its snapshots when notified through Subscribe.
package sync
