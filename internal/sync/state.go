package sync

import (
	"github.com/gridpoint/facilitymap-core/internal/backend"
	"github.com/gridpoint/facilitymap-core/internal/location"
)

// LoadState tracks one fetched data set through its lifecycle. Error is
// distinct from an empty Ready state: a strict-schema rejection or a
// network failure surfaces as Error, an empty payload as Ready.
type LoadState int

const (
	StateIdle LoadState = iota
	StateLoading
	StateReady
	StateError
)

func (s LoadState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// LoadStates is the per-data-set loading snapshot views render from.
type LoadStates struct {
	Rooms    LoadState `json:"rooms"`
	Warnings LoadState `json:"warnings"`
	Sidebar  LoadState `json:"sidebar"`
}

// Current is the committed navigation state. Segments and Path are
// derived from Node on every commit and never set independently.
type Current struct {
	Node     *location.Node
	Segments []*location.Node
	Path     string
}

// NavResult reports what a Navigate call did.
type NavResult struct {
	// Path is the normalized path actually navigated to.
	Path string

	// Redirected is set when the requested path resolved elsewhere,
	// such as a building drilling down to its first floor. Callers
	// replace the requested path in their history rather than pushing
	// a new entry.
	Redirected bool

	// Changed is false when the idempotent-navigation guard fired and
	// nothing was fetched.
	Changed bool
}

// IndoorSelection is the transient per-location indoor state: the
// selected indoor feature and any stateset values applied to it. It is
// reset on every navigation.
type IndoorSelection struct {
	LocationID string
	StateSets  map[string]string
}

// Session is the signed-in user and their rights. A zero Session means
// nobody is signed in.
type Session struct {
	User   backend.User
	Rights backend.Rights
	Active bool
}
