package morph

import (
	"fmt"
	"strconv"
)

// Entry is the raw field tuple of one node line. Legacy formats may carry
// fields that are not numbers; those entries are kept and simply do not
// decode to a Sample.
type Entry struct {
	Fields []string
	sample Sample
	ok     bool
}

// NewEntry decodes the first four fields as x, y, z, radius when possible.
func NewEntry(fields []string) Entry {
	e := Entry{Fields: fields}
	if len(fields) < 4 {
		return e
	}
	var vals [4]float64
	for i := 0; i < 4; i++ {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return e
		}
		vals[i] = f
	}
	e.sample.Pos.X, e.sample.Pos.Y, e.sample.Pos.Z = vals[0], vals[1], vals[2]
	e.sample.Radius = vals[3]
	e.ok = true
	return e
}

// SampleEntry builds an entry from an already decoded sample.
func SampleEntry(s Sample) Entry {
	return Entry{
		Fields: []string{
			formatFloat(s.Pos.X), formatFloat(s.Pos.Y), formatFloat(s.Pos.Z), formatFloat(s.Radius),
		},
		sample: s,
		ok:     true,
	}
}

// Sample returns the decoded sample and whether decoding succeeded.
func (e Entry) Sample() (Sample, bool) {
	return e.sample, e.ok
}

func (e Entry) String() string {
	return fmt.Sprintf("%v", e.Fields)
}

// Branch is an ordered chain of entries. A branch of k entries describes
// k-1 consecutive segments.
type Branch []Entry

// SegmentCount returns the number of consecutive pairs in the branch.
func (b Branch) SegmentCount() int {
	if len(b) < 2 {
		return 0
	}
	return len(b) - 1
}

// SegmentBranch converts a parent-to-child segment into a two-entry branch.
func SegmentBranch(s Segment, def float64) Branch {
	return Branch{SampleEntry(s.Parent.Sample(def)), SampleEntry(s.Child.Sample(def))}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
