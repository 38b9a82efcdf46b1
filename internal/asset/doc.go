// Package asset provides the Asset Store for FacilityMap Core.
//
// The store holds per-type collections of placeable map entities (desks,
// sensors) keyed by asset id. It is the single source of truth for asset
// state: every mutation that changes rendering-relevant fields must be
// mirrored into the map's asset layer in the same logical step, because
// the map is the only visible surface for asset state.
//
// # Merge semantics
//
// The store is written from three call sites — direct user actions, REST
// response callbacks and the live socket handler. Merges are tolerant:
// patches for unknown ids are ignored, duplicate adds are rejected, and
// malformed deltas are dropped with a warning rather than raised, since a
// crashed handler would desynchronize the whole session.
//
// # Dynamic properties
//
// Assets carry a fixed field set plus a string property bag whose kinds
// (Text/Date) come from the remote asset-type schema; the Schema type
// drives form rendering and value serialization.
package asset
