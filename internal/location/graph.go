package location

import "strings"

// FullNameSeparator joins segment names in FullName output.
const FullNameSeparator = " > "

// Graph holds the full facility hierarchy, keyed by node id.
//
// A Graph is immutable after Load. The whole application assumes the graph
// is always present, so loading fails soft: malformed input produces an
// empty graph rather than an error.
type Graph struct {
	nodes map[string]*Node
}

// Load validates and wires a raw sitemap payload into a Graph.
//
// Nodes missing a name or id are pruned and unlinked from their parent's
// item list. Parent back-references are wired from parentId, and floors get
// their ordinal number from their position among the parent's items when
// the payload does not carry one explicitly.
func Load(raw map[string]*RawNode) *Graph {
	if raw == nil {
		return &Graph{nodes: map[string]*Node{}}
	}

	// Prune first so parent wiring never sees an invalid node.
	for id, rn := range raw {
		if rn == nil || rn.Name == "" || rn.ID == "" {
			prune(id, raw)
		}
	}

	nodes := make(map[string]*Node, len(raw))
	for id, rn := range raw {
		nodes[id] = &Node{
			ID:            rn.ID,
			Name:          rn.Name,
			Type:          rn.Type,
			Items:         rn.Items,
			OrdinalNumber: InvalidFloorNumber,
			Longitude:     rn.Longitude,
			Latitude:      rn.Latitude,
			Config:        rn.Config,
		}
	}

	for id, rn := range raw {
		node := nodes[id]
		if rn.ParentID != "" {
			node.Parent = nodes[rn.ParentID]
		}
		if node.Type == TypeFloor {
			node.OrdinalNumber = floorOrdinal(node, rn)
		}
	}

	return &Graph{nodes: nodes}
}

// prune removes a node from the raw payload and unlinks it from its
// parent's item list.
func prune(id string, raw map[string]*RawNode) {
	rn := raw[id]
	if rn != nil && rn.ParentID != "" {
		if parent := raw[rn.ParentID]; parent != nil {
			for i, itemID := range parent.Items {
				if itemID == id {
					parent.Items = append(parent.Items[:i], parent.Items[i+1:]...)
					break
				}
			}
		}
	}
	delete(raw, id)
}

// floorOrdinal derives a floor's level: an explicit ordinal wins, otherwise
// the floor's position among its parent's items, otherwise zero.
func floorOrdinal(node *Node, rn *RawNode) int {
	if rn.OrdinalNumber != nil {
		return *rn.OrdinalNumber
	}
	if node.Parent != nil {
		for i, itemID := range node.Parent.Items {
			if itemID == node.ID {
				return i
			}
		}
	}
	return 0
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Root returns the top of the hierarchy: the parentless Global node,
// or any parentless node when no Global exists. Nil for an empty graph.
func (g *Graph) Root() *Node {
	var fallback *Node
	for _, n := range g.nodes {
		if n.Parent != nil {
			continue
		}
		if n.Type == TypeGlobal {
			return n
		}
		if fallback == nil {
			fallback = n
		}
	}
	return fallback
}

// Get returns the node with the provided id, or nil.
func (g *Graph) Get(id string) *Node {
	return g.nodes[id]
}

// Resolve looks up a node by URL path.
//
// Leading and trailing slashes are stripped before the lookup. When the
// resolved node is a building with at least one floor, the first floor is
// returned instead — buildings are never directly current, they always
// drill down to a floor. Callers detect the redirect by comparing
// Path(node) with the requested path.
func (g *Graph) Resolve(path string) (*Node, bool) {
	path = strings.Trim(path, "/")

	node, ok := g.nodes[path]
	if !ok {
		return nil, false
	}

	if node.Type == TypeBuilding && len(node.Items) > 0 {
		if floor := g.nodes[node.Items[0]]; floor != nil {
			return floor, true
		}
	}

	return node, true
}

// SegmentsOf walks parent references and returns the root→node path.
func SegmentsOf(node *Node) []*Node {
	if node == nil {
		return nil
	}

	segments := []*Node{node}
	for n := node.Parent; n != nil; n = n.Parent {
		segments = append([]*Node{n}, segments...)
	}
	return segments
}

// Path returns the URL path for a node ("/" for nil).
func Path(node *Node) string {
	if node == nil || node.ID == "" {
		return "/"
	}
	return "/" + node.ID
}

// FullName concatenates names from the node up to, but not including, the
// nearest ancestor of type Global, Region or Campus. It is used for search
// and favorites display. An unknown id is returned as-is.
func (g *Graph) FullName(id string) string {
	node := g.nodes[id]
	if node == nil {
		return id
	}

	name := node.Name
	for n := node; n != nil && !isEssentialType(n.Type); {
		n = n.Parent
		if n != nil {
			name = n.Name + FullNameSeparator + name
		}
	}
	return name
}

// isEssentialType reports whether the type terminates FullName expansion.
func isEssentialType(t Type) bool {
	return t == TypeGlobal || t == TypeRegion || t == TypeCampus
}

// HasFloors reports whether the node with the provided id has at least one
// floor among its direct children.
func (g *Graph) HasFloors(id string) bool {
	node := g.nodes[id]
	if node == nil {
		return false
	}
	for _, itemID := range node.Items {
		if child := g.nodes[itemID]; child != nil && child.Type == TypeFloor {
			return true
		}
	}
	return false
}

// BuildingID returns the id of the building a node belongs to: the node
// itself for buildings, the parent for floors, empty otherwise. Rooms are
// scoped per building, so navigation compares this to decide on refetch.
func BuildingID(node *Node) string {
	switch {
	case node == nil:
		return ""
	case node.Type == TypeBuilding:
		return node.ID
	case node.Type == TypeFloor && node.Parent != nil:
		return node.Parent.ID
	default:
		return ""
	}
}

// FacilityID returns the map-provider facility id for a node. Floors fall
// back to their building's config.
func FacilityID(node *Node) string {
	if node == nil {
		return ""
	}
	if node.Config != nil && node.Config.FacilityID != "" {
		return node.Config.FacilityID
	}
	if node.Type == TypeFloor && node.Parent != nil && node.Parent.Config != nil {
		return node.Parent.Config.FacilityID
	}
	return ""
}

// TilesetID returns the map-provider tileset id for a node. Floors fall
// back to their building's config.
func TilesetID(node *Node) string {
	if node == nil {
		return ""
	}
	if node.Config != nil && node.Config.TilesetID != "" {
		return node.Config.TilesetID
	}
	if node.Type == TypeFloor && node.Parent != nil && node.Parent.Config != nil {
		return node.Parent.Config.TilesetID
	}
	return ""
}

// StateSets returns the state sets driving indoor layer styling for a
// node, with the same floor→building fallback as the other config lookups.
func StateSets(node *Node) []StateSet {
	if node == nil {
		return nil
	}
	if node.Config != nil && len(node.Config.StateSets) > 0 {
		return node.Config.StateSets
	}
	if node.Type == TypeFloor && node.Parent != nil && node.Parent.Config != nil {
		return node.Parent.Config.StateSets
	}
	return nil
}

// StateSetFor resolves the state set id whose name matches the given
// layer id, or "" when the node has none.
func StateSetFor(node *Node, layerID string) string {
	for _, s := range StateSets(node) {
		if s.Name == layerID {
			return s.ID
		}
	}
	return ""
}
