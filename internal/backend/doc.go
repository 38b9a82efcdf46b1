// Package backend is the HTTP client for the facility backend: sitemap,
// assets and their type schema, room geometry, warnings, sidebar, users
// and desk booking.
//
// Validation policy varies by endpoint and the asymmetry is deliberate.
// Rooms and warnings are strict: one malformed entry rejects the whole
// payload, because rendering a floor from partial geometry is worse
// than rendering nothing. Sitemap and sidebar are lenient: broken
// entries are pruned and the rest survive. Callers treat transport
// failures as "no data" and degrade locally.
package backend
