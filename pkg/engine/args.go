package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// sexpVec3 carries a position between builtins; (vec3 x y z) builds one.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}

func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// callArgs is a builtin argument list split into positional values and
// keyword values. A trailing keyword with no value maps to nil.
type callArgs struct {
	pos []zygo.Sexp
	kw  map[string]zygo.Sexp
}

func splitArgs(in []zygo.Sexp) callArgs {
	a := callArgs{kw: map[string]zygo.Sexp{}}
	for i := 0; i < len(in); i++ {
		name, ok := keywordName(in[i])
		if !ok {
			a.pos = append(a.pos, in[i])
			continue
		}
		var val zygo.Sexp = zygo.SexpNull
		if i+1 < len(in) {
			i++
			val = in[i]
		}
		a.kw[name] = val
	}
	return a
}

func keywordName(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	return strings.CutPrefix(str.S, kwPrefix)
}

func describe(s zygo.Sexp) string {
	if s == nil {
		return "nothing"
	}
	return fmt.Sprintf("%T %s", s, s.SexpString(nil))
}

func argNumber(s zygo.Sexp) (float64, error) {
	if v, ok := s.(*zygo.SexpFloat); ok {
		return v.Val, nil
	}
	if v, ok := s.(*zygo.SexpInt); ok {
		return float64(v.Val), nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(s))
}

func argInt(s zygo.Sexp) (int, error) {
	v, ok := s.(*zygo.SexpInt)
	if !ok {
		return 0, fmt.Errorf("expected integer, got %s", describe(s))
	}
	return int(v.Val), nil
}

func argString(s zygo.Sexp) (string, error) {
	v, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected string, got %s", describe(s))
	}
	return v.S, nil
}

// argBool reads true or false; nil reads as false.
func argBool(s zygo.Sexp) (bool, error) {
	if s == zygo.SexpNull {
		return false, nil
	}
	v, ok := s.(*zygo.SexpBool)
	if !ok {
		return false, fmt.Errorf("expected boolean, got %s", describe(s))
	}
	return v.Val, nil
}

// argPosition reads a (vec3 x y z) value or three numbers from the front of
// args, returning how many arguments it used.
func argPosition(args []zygo.Sexp) (v3.Vec, int, error) {
	if len(args) == 0 {
		return v3.Vec{}, 0, fmt.Errorf("expected position")
	}
	if v, ok := args[0].(*sexpVec3); ok {
		return v.vec, 1, nil
	}
	if len(args) < 3 {
		return v3.Vec{}, 0, fmt.Errorf("expected vec3 or x y z, got %d values", len(args))
	}
	var p v3.Vec
	for i, dst := range []*float64{&p.X, &p.Y, &p.Z} {
		f, err := argNumber(args[i])
		if err != nil {
			return v3.Vec{}, 0, err
		}
		*dst = f
	}
	return p, 3, nil
}

func intResult(n int) zygo.Sexp { return &zygo.SexpInt{Val: int64(n)} }

func strResult(s string) zygo.Sexp { return &zygo.SexpStr{S: s} }
