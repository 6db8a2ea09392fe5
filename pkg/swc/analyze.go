package swc

import (
	"github.com/chazu/swcmesher/pkg/morph"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Summary describes the extent of a parsed morphology.
type Summary struct {
	// HasData is false when no entry decoded to a number. The bounds and
	// radius range are meaningless in that case.
	HasData      bool
	LineCount    int
	SegmentCount int
	NodeCount    int
	Unparsed     int // entries whose fields are not numeric
	RadiusMin    float64
	RadiusMax    float64
	Min          v3.Vec
	Max          v3.Vec
}

// Analyze scans every entry of every branch once. The first decodable entry
// seeds all running minima and maxima. NodeCount is the number of entries
// visited; parsers replace it with the number of distinct file nodes.
func Analyze(branches []morph.Branch) Summary {
	s := Summary{SegmentCount: len(branches)}
	for _, b := range branches {
		for _, e := range b {
			s.NodeCount++
			sm, ok := e.Sample()
			if !ok {
				s.Unparsed++
				continue
			}
			if !s.HasData {
				s.HasData = true
				s.RadiusMin, s.RadiusMax = sm.Radius, sm.Radius
				s.Min, s.Max = sm.Pos, sm.Pos
				continue
			}
			if sm.Radius < s.RadiusMin {
				s.RadiusMin = sm.Radius
			}
			if sm.Radius > s.RadiusMax {
				s.RadiusMax = sm.Radius
			}
			s.Min = s.Min.Min(sm.Pos)
			s.Max = s.Max.Max(sm.Pos)
		}
	}
	return s
}

// Size returns the bounding box extent, or the zero vector without data.
func (s Summary) Size() v3.Vec {
	if !s.HasData {
		return v3.Vec{}
	}
	return s.Max.Sub(s.Min)
}
