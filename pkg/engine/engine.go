// Package engine runs scripted edit sessions. A script is zygomys Lisp
// whose builtins drive the cable model registry the way a user drives the
// modeling host: import a file, extrude and delete vertices, emit radius
// spheres, move them, absorb them back, and export SWC.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chazu/swcmesher/pkg/cable"
	"github.com/chazu/swcmesher/pkg/scene"
	"github.com/chazu/swcmesher/pkg/swc"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a problem in the script itself: bad syntax, an unknown
// symbol, or a builtin rejecting its arguments. Line is 0 when unknown.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Session is the state a script edits. The registry and scene are mutated
// in place; a session must not be shared by concurrent runs.
type Session struct {
	Registry *cable.Registry
	Scene    scene.Scene

	// Import is applied to load-swc.
	Import swc.Options
	// DefaultRadius is used for unset radii when spheres are made and
	// when SWC is exported.
	DefaultRadius float64
	// Dir resolves relative paths in the script. Empty means the working
	// directory.
	Dir string
}

// NewSession returns a session over an empty registry and scene.
func NewSession(logger *log.Logger) *Session {
	return &Session{
		Registry:      cable.NewRegistry(logger),
		Scene:         scene.NewMemory(),
		DefaultRadius: 1,
	}
}

func (s *Session) path(p string) string {
	if s.Dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.Dir, p)
}

// Result bundles the output of a successful run.
type Result struct {
	// Value is the printed value of the last expression.
	Value string
	// Exported lists the SWC files written, in order.
	Exported []string
}

// Engine wraps the zygomys interpreter for scripted sessions.
// Each call to Run creates a fresh sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
	logger     *log.Logger
}

// NewEngine creates a new Engine instance. A nil logger uses log.Default().
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{timeout: EvalTimeout, logger: logger}
}

// SetTimeout replaces the per-run time limit. Zero or less restores
// EvalTimeout.
func (e *Engine) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = EvalTimeout
	}
	e.timeout = d
}

// Run evaluates source against the session.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval failure: returns nil result + eval errors + nil error
//   - On fatal failure (timeout, cancellation, panic): returns nil + nil + error
//
// After a fatal failure the session may be half edited and should be
// discarded.
func (e *Engine) Run(ctx context.Context, source string, s *Session) (*Result, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, evalErrs, err := e.evaluate(source, s)
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ctx, ch, gen, &e.mu, &e.generation, e.timeout)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string, s *Session) (*Result, []EvalError, error) {
	// Empty source is a valid program that changes nothing.
	if strings.TrimSpace(source) == "" {
		return &Result{}, nil, nil
	}

	// Sandbox mode keeps scripts away from the filesystem and syscalls;
	// only the builtins below touch files.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	res := &Result{}
	registerBuiltins(env, s, res, e.logger)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}

	v, err := env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}
	if v != nil && v != zygo.SexpNull {
		res.Value = v.SexpString(nil)
	}
	return res, nil, nil
}

// Locations zygomys puts in its messages, longest form first.
var linePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`),
	regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`),
}

// parseZygomysError turns a zygomys failure into EvalErrors, pulling the
// line number out of the message when there is one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, p := range linePatterns {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
