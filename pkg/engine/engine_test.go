package engine

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func newTestEngine() (*Engine, *Session) {
	logger := log.New(io.Discard)
	return NewEngine(logger), NewSession(logger)
}

func TestRunValues(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \n\t  \n  ", ""},
		{"arithmetic", "(+ 1 2)", "3"},
		{"last expression wins", "(def x 10)\n(def y 20)\n(+ x y)", "30"},
		{"comment lines", "; header\n(* 2 21) ;; trailing", "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, s := newTestEngine()
			res, evalErrs, err := eng.Run(context.Background(), tt.source, s)
			if err != nil {
				t.Fatalf("Run() fatal error = %v", err)
			}
			if len(evalErrs) > 0 {
				t.Fatalf("Run() eval errors = %v", evalErrs)
			}
			if res == nil {
				t.Fatal("Run() result = nil")
			}
			if res.Value != tt.want {
				t.Errorf("Value = %q, want %q", res.Value, tt.want)
			}
			if s.Registry.Len() != 0 {
				t.Errorf("registry has %d models, want 0", s.Registry.Len())
			}
		})
	}
}

func TestRunScriptErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unbalanced paren", "(+ 1 2"},
		{"unknown symbol", "(+ 1 undefined-symbol)"},
		{"edit without model", "(extrude 0 (vec3 1 0 0))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, s := newTestEngine()
			res, evalErrs, err := eng.Run(context.Background(), tt.source, s)
			if err != nil {
				t.Fatalf("Run() fatal error = %v, want eval error", err)
			}
			if res != nil {
				t.Errorf("Run() result = %+v, want nil", res)
			}
			if len(evalErrs) == 0 || evalErrs[0].Message == "" {
				t.Fatalf("eval errors = %v, want a message", evalErrs)
			}
		})
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Col: 0, Message: "something went wrong"}
	s := e.Error()
	if !strings.Contains(s, "line 5") {
		t.Errorf("Error() should contain line info, got: %s", s)
	}
	if !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() should contain message, got: %s", s)
	}

	e2 := EvalError{Message: "no location"}
	if strings.Contains(e2.Error(), "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", e2.Error())
	}
}

func TestRunDeterministic(t *testing.T) {
	eng := NewEngine(log.New(io.Discard))

	// Fresh sessions given the same script end in the same state.
	for i := 0; i < 3; i++ {
		s := NewSession(log.New(io.Discard))
		res, evalErrs, err := eng.Run(context.Background(), `(new-cable "c") (extrude 1 (vec3 5 0 0)) (vertex-count)`, s)
		if err != nil {
			t.Fatalf("iteration %d: unexpected fatal error: %v", i, err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("iteration %d: unexpected eval errors: %v", i, evalErrs)
		}
		if res.Value != "3" {
			t.Errorf("iteration %d: Value = %q, want 3", i, res.Value)
		}
	}
}

func TestWaitTimeout(t *testing.T) {
	var mu sync.Mutex
	var gen uint64 = 1
	ch := make(chan evalResult) // Never sends

	start := time.Now()
	_, _, err := waitWithTimeout(context.Background(), ch, 1, &mu, &gen, 50*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error message, got: %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timeout took far longer than requested")
	}
}

func TestWaitCancelled(t *testing.T) {
	var mu sync.Mutex
	var gen uint64 = 1
	ch := make(chan evalResult)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := waitWithTimeout(ctx, ch, 1, &mu, &gen, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestWaitGenerationDiscardsStale(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2) // Current generation is 2

	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	// Pass generation 1 (stale).
	_, _, err := waitWithTimeout(context.Background(), ch, 1, &mu, &gen, time.Second)
	if !errors.Is(err, ErrSuperseded) {
		t.Errorf("expected ErrSuperseded, got: %v", err)
	}
}

func TestSetTimeout(t *testing.T) {
	eng := NewEngine(nil)
	if eng.timeout != EvalTimeout {
		t.Errorf("default timeout = %s, want %s", eng.timeout, EvalTimeout)
	}
	eng.SetTimeout(time.Second)
	if eng.timeout != time.Second {
		t.Errorf("timeout = %s, want 1s", eng.timeout)
	}
	eng.SetTimeout(0)
	if eng.timeout != EvalTimeout {
		t.Errorf("timeout after reset = %s, want %s", eng.timeout, EvalTimeout)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
		{
			name:     "short line format",
			msg:      "line 3: extrude: vertex index 9 out of range",
			wantLine: 3,
			wantMsg:  "out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
