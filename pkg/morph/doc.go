// Package morph defines the skeleton data model shared by the parsers, the
// cable model and the surface builder: typed SWC points, raw file entries,
// branches and parent-to-child segments.
package morph
