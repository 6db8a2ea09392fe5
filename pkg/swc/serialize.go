package swc

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/swcmesher/pkg/morph"
)

// Header is the first line of every written SWC file.
const Header = "# n T x y z R P"

// Serialize renders points as SWC lines. Points must be ordered so that the
// i-th point carries id i+1; the cable model guarantees this once
// reconciled. The root (id 1) is always written with parent -1, and an unset
// radius is written as defaultRadius.
func Serialize(points []morph.Point, defaultRadius float64) ([]string, error) {
	lines := make([]string, 0, len(points)+1)
	lines = append(lines, Header)
	for i, p := range points {
		if p.ID != i+1 {
			return nil, fmt.Errorf("swc: point %d has id %d, want %d (model not reconciled)", i, p.ID, i+1)
		}
		parent := p.Parent
		if p.ID == 1 {
			parent = morph.RootParent
		}
		lines = append(lines, strings.Join([]string{
			strconv.Itoa(p.ID),
			strconv.Itoa(int(p.Type)),
			fmtFloat(p.Pos.X),
			fmtFloat(p.Pos.Y),
			fmtFloat(p.Pos.Z),
			fmtFloat(p.Radius.Or(defaultRadius)),
			strconv.Itoa(parent),
		}, " "))
	}
	return lines, nil
}

// ExportPath appends the .swc extension when path lacks it.
func ExportPath(path string) string {
	if strings.HasSuffix(path, ".swc") {
		return path
	}
	return path + ".swc"
}

// WriteFile writes lines to path (with .swc enforced) and returns the path
// actually written.
func WriteFile(path string, lines []string) (string, error) {
	path = ExportPath(path)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("swc: create: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, l := range lines {
		w.WriteString(l)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return "", fmt.Errorf("swc: write: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("swc: close: %w", err)
	}
	return path, nil
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
