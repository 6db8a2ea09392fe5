// Package cable holds the editable skeleton of a neuron: a vertex/edge mesh
// whose vertices carry the SWC id, parent id, structure type and radius as
// named scalar layers.
//
// The mesh can be mutated freely between operations (vertices extruded,
// deleted or rewired). Nothing here caches ids or vertex indices across
// calls: every operation that trusts the labeling first runs Ensure, which
// re-derives ids and parents from the current edges when they no longer
// form a consistent 1..N tree.
package cable
