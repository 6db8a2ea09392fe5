package swc

import "strings"

// Dialect identifies an input file format.
type Dialect int

const (
	DialectSWC    Dialect = iota // n T x y z R P rows
	DialectNBF                   // Branch / Node markers
	DialectLegacy                // "1 <count>" control lines
)

func (d Dialect) String() string {
	switch d {
	case DialectSWC:
		return "swc"
	case DialectNBF:
		return "nbf"
	case DialectLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// DetectDialect picks the dialect from the file name suffix: .nbf is
// Node/Branch, .swc and .swc.txt are SWC, anything else is legacy.
func DetectDialect(path string) Dialect {
	switch {
	case strings.HasSuffix(path, ".nbf"):
		return DialectNBF
	case strings.HasSuffix(path, ".swc"), strings.HasSuffix(path, ".swc.txt"):
		return DialectSWC
	default:
		return DialectLegacy
	}
}

// BaseName strips the directory and any SWC suffix from path.
func BaseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	for _, suf := range []string{".swc.txt", ".swc", ".nbf"} {
		if strings.HasSuffix(path, suf) {
			return strings.TrimSuffix(path, suf)
		}
	}
	return path
}
