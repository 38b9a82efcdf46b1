// Package location provides the Location Graph Store for FacilityMap Core.
//
// The graph is the facility hierarchy (Global → Region → Campus → Building
// → Floor) rebuilt once from the remote sitemap on startup. Nodes are
// immutable after Load; navigation only changes which node is current.
//
// # Key behaviors
//
//   - Load fails soft: malformed input yields an empty graph, and nodes
//     missing a name or id are pruned and unlinked from their parent.
//   - Resolve redirects buildings to their first floor, so the current
//     location is never a building during normal navigation.
//   - Items order is significant: it determines floor ordinals and
//     breadcrumb order.
//
// # Usage
//
//	graph := location.Load(raw)
//	node, ok := graph.Resolve("/bldg1")
//	segments := location.SegmentsOf(node)
package location
