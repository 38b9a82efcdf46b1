// Package mapview owns the rendering surface of the engine: the camera,
// the indoor tileset selection and the toggleable overlay layers.
//
// The Adapter mediates between navigation and the Engine. Layers are
// the sole authority on their own visibility; the adapter coordinates
// exclusion between them, notifies observers and re-queries state
// instead of caching it. HeadlessEngine is a full Engine that retains
// render state in memory, used by the state API and the tests.
package mapview
