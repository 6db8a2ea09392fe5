// Package swc reads neuron morphology files and writes SWC.
//
// Three dialects are understood: SWC proper ("n T x y z R P" rows), the
// legacy Node/Branch format (.nbf) and the legacy fixed-count format used by
// early NEURON exports ("1 <count>" followed by count rows). Every parse
// produces an ordered list of branches for the surface builder together with
// an analysis summary of the data.
package swc
