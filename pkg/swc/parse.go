package swc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/chazu/swcmesher/pkg/morph"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Options tunes a parse.
type Options struct {
	// SegmentLimit truncates the branch list after parsing. 0 means no limit.
	SegmentLimit int
}

// Result is the full output of a parse.
type Result struct {
	Dialect   Dialect
	LineCount int
	// Points holds the SWC nodes in file order. Empty for legacy dialects.
	Points []morph.Point
	// Segments holds one parent-to-child pair per SWC point whose parent
	// resolves, ordered by ascending point id. Empty for legacy dialects.
	Segments []morph.Segment
	// Branches is the ordered chain list consumed by the surface builder.
	Branches []morph.Branch
	Summary  Summary
	Warnings []string
}

// ParseFile reads path in the dialect chosen from its suffix.
func ParseFile(path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("swc: open: %w", err)
	}
	defer f.Close()

	res, err := Parse(f, DetectDialect(path), opts)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	return res, nil
}

// Parse reads r in the given dialect.
func Parse(r io.Reader, d Dialect, opts Options) (*Result, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, fmt.Errorf("swc: read: %w", err)
	}

	var res *Result
	switch d {
	case DialectSWC:
		res, err = parseSWC(lines)
	case DialectNBF:
		res, err = parseNBF(lines)
	case DialectLegacy:
		res, err = parseLegacy(lines)
	default:
		return nil, fmt.Errorf("swc: unknown dialect %v", d)
	}
	if err != nil {
		return nil, err
	}
	res.Dialect = d

	if opts.SegmentLimit > 0 {
		if len(res.Branches) > opts.SegmentLimit {
			res.Branches = res.Branches[:opts.SegmentLimit]
		}
		if len(res.Segments) > opts.SegmentLimit {
			res.Segments = res.Segments[:opts.SegmentLimit]
		}
	}

	nodes := res.Summary.NodeCount
	res.Summary = Analyze(res.Branches)
	res.Summary.LineCount = res.LineCount
	res.Summary.NodeCount = nodes
	return res, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// swcRecord is one decoded SWC row keyed by its literal label.
type swcRecord struct {
	key       string
	parentKey string
	point     morph.Point
}

func parseSWC(lines []string) (*Result, error) {
	records := make(map[string]swcRecord)
	var order []string

	for i, raw := range lines {
		l := strings.TrimSpace(raw)
		if l == "" || l[0] == '#' {
			continue
		}
		rec, err := decodeSWCLine(l)
		if err != nil {
			return nil, &ParseError{Line: i + 1, Text: l, Msg: err.Error()}
		}
		if _, seen := records[rec.key]; !seen {
			order = append(order, rec.key)
		}
		records[rec.key] = rec
	}

	keys := make([]string, len(order))
	copy(keys, order)
	sort.SliceStable(keys, func(a, b int) bool {
		ia, ib := records[keys[a]].point.ID, records[keys[b]].point.ID
		if ia != ib {
			return ia < ib
		}
		return keys[a] < keys[b]
	})

	res := &Result{LineCount: len(order)}
	for _, k := range order {
		res.Points = append(res.Points, records[k].point)
	}
	for _, k := range keys {
		child := records[k]
		parent, ok := records[child.parentKey]
		if !ok {
			continue
		}
		seg := morph.Segment{Parent: parent.point, Child: child.point}
		res.Segments = append(res.Segments, seg)
		res.Branches = append(res.Branches, morph.SegmentBranch(seg, 0))
	}
	res.Summary.NodeCount = len(order)
	return res, nil
}

func decodeSWCLine(l string) (swcRecord, error) {
	fields := strings.Fields(l)
	if len(fields) != 7 {
		return swcRecord{}, fmt.Errorf("expected 7 fields, got %d", len(fields))
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return swcRecord{}, fmt.Errorf("label: %w", err)
	}
	typ, err := strconv.Atoi(fields[1])
	if err != nil {
		return swcRecord{}, fmt.Errorf("type: %w", err)
	}
	var xyzr [4]float64
	for j := 0; j < 4; j++ {
		f, err := strconv.ParseFloat(fields[2+j], 64)
		if err != nil {
			return swcRecord{}, fmt.Errorf("field %d: %w", 3+j, err)
		}
		xyzr[j] = f
	}
	parent, err := strconv.Atoi(fields[6])
	if err != nil {
		return swcRecord{}, fmt.Errorf("parent: %w", err)
	}
	return swcRecord{
		key:       fields[0],
		parentKey: fields[6],
		point: morph.Point{
			ID:     id,
			Type:   morph.Type(typ),
			Pos:    v3.Vec{X: xyzr[0], Y: xyzr[1], Z: xyzr[2]},
			Radius: morph.RadiusFromStored(xyzr[3]),
			Parent: parent,
		},
	}, nil
}

// parseNBF reads the Node/Branch format. Each Branch marker closes the
// current chain; Node lines append their fields to it.
func parseNBF(lines []string) (*Result, error) {
	res := &Result{LineCount: len(lines)}
	var cur morph.Branch
	flush := func() {
		if len(cur) > 0 {
			res.Branches = append(res.Branches, cur)
			cur = nil
		}
	}
	for _, raw := range lines {
		l := strings.TrimSpace(raw)
		if l == "" {
			continue
		}
		if strings.HasPrefix(l, "Branch") {
			flush()
		}
		if strings.HasPrefix(l, "Node") {
			cur = append(cur, morph.NewEntry(strings.Fields(l)[1:]))
			res.Summary.NodeCount++
		}
	}
	flush()
	return res, nil
}

// parseLegacy reads the fixed-count format: a "1 <count>" control line
// announces how many of the following lines belong to the next chain.
func parseLegacy(lines []string) (*Result, error) {
	res := &Result{LineCount: len(lines)}
	var cur morph.Branch
	remaining := 0
	for i, raw := range lines {
		l := strings.TrimSpace(raw)
		if l == "" {
			continue
		}
		fields := strings.Fields(l)
		if remaining > 0 {
			cur = append(cur, morph.NewEntry(fields))
			remaining--
			res.Summary.NodeCount++
			continue
		}
		if len(fields) != 2 {
			return nil, &ParseError{Line: i + 1, Text: l, Msg: fmt.Sprintf("expected 2 control values, got %d", len(fields))}
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 0 {
			return nil, &ParseError{Line: i + 1, Text: l, Msg: "invalid entry count"}
		}
		if fields[0] != "1" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("line %d: unexpected first control value %q", i+1, fields[0]))
		}
		if len(cur) > 0 {
			res.Branches = append(res.Branches, cur)
			cur = nil
		}
		remaining = n
	}
	if len(cur) > 0 {
		res.Branches = append(res.Branches, cur)
	}
	return res, nil
}
