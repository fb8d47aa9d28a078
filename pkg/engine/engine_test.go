package engine

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chazu/meshedit/pkg/mesh"
)

func TestEvaluateWithoutGeometry(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t  \n  "},
		{"comments", ";; nothing to build\n; :size 3"},
		{"arithmetic", "(+ 1 2)"},
		{"definitions", "(def x 10) (def y (* x 2)) (+ x y)"},
	}

	eng := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := eng.EvaluateFull(tt.source)
			if err != nil {
				t.Fatalf("unexpected fatal error: %v", err)
			}
			if len(res.Errors) > 0 || len(res.Warnings) > 0 {
				t.Fatalf("unexpected findings: errors %v, warnings %v", res.Errors, res.Warnings)
			}
			m := res.Mesh
			if m == nil {
				t.Fatal("expected an empty mesh, got nil")
			}
			if m.VertexCount() != 0 || m.HalfEdgeCount() != 0 || m.FaceCount() != 0 {
				t.Errorf("expected no elements, got %d vertices, %d half-edges, %d faces",
					m.VertexCount(), m.HalfEdgeCount(), m.FaceCount())
			}
		})
	}
}

func TestEvaluateDefinitionsDriveGeometry(t *testing.T) {
	source := `
(def half 1.5)
(def size (* half 2))
(cube :size size)
(extrude (face 5) :direction (vec3 0 1 0) :distance half)
`
	m, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}

	// The new ring sits half above the top face at y = 1.5.
	for _, v := range m.Vertices()[8:] {
		if v.Position.Y != 3 {
			t.Errorf("vertex %s at y=%g, want 3", v.ID, v.Position.Y)
		}
	}
	if errs := mesh.Validate(m); len(errs) != 0 {
		t.Errorf("expected a closed mesh, got %v", errs)
	}
}

func TestEvaluateRejectsBadSource(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unmatched paren", "(+ 1 2"},
		{"undefined symbol", "(+ 1 undefined-symbol)"},
		{"error after geometry", "(cube :size 2)\n(extrude (face 9) :distance 1)"},
	}

	eng := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, evalErrs, err := eng.Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if m != nil {
				t.Errorf("expected nil mesh, got %d faces", m.FaceCount())
			}
			if len(evalErrs) == 0 || evalErrs[0].Message == "" {
				t.Fatalf("expected an eval error with a message, got %v", evalErrs)
			}
		})
	}
}

func TestEvaluateSyntaxErrorHasLineInfo(t *testing.T) {
	eng := NewEngine()

	// Put the error on line 2.
	source := "(+ 1 2)\n(+ 3"
	m, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if m != nil {
		t.Fatal("expected nil mesh on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}

	// Line info depends on the zygomys error format; only the message is
	// guaranteed.
	e := evalErrs[0]
	if e.Message == "" {
		t.Error("eval error message should not be empty")
	}
	if e.Line > 0 {
		t.Logf("extracted line info: line=%d, message=%q", e.Line, e.Message)
	} else {
		t.Logf("no line info extracted (line=0), message=%q", e.Message)
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

	e2 := EvalError{Line: 0, Col: 0, Message: "no location"}
	s2 := e2.Error()
	if strings.Contains(s2, "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", s2)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine()

	// Each evaluation starts from a fresh mesh, so repeated runs agree.
	for i := 0; i < 5; i++ {
		m, evalErrs, err := eng.Evaluate("(cube :size 2) (extrude (face 0) :distance 1)")
		if err != nil {
			t.Fatalf("iteration %d: unexpected fatal error: %v", i, err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("iteration %d: unexpected eval errors: %v", i, evalErrs)
		}
		if m.VertexCount() != 12 || m.FaceCount() != 10 {
			t.Errorf("iteration %d: expected 12 vertices and 10 faces, got %d and %d",
				i, m.VertexCount(), m.FaceCount())
		}
	}
}

func TestEvaluateTimeout(t *testing.T) {
	// Exercise the timeout plumbing directly with a channel that never
	// sends; a script that zygomys would loop on forever is not needed.
	var mu sync.Mutex
	var gen uint64 = 1
	ch := make(chan evalResult)

	const timeout = 50 * time.Millisecond
	done := make(chan struct{})
	var resultErr error
	go func() {
		defer close(done)
		_, resultErr = waitWithTimeout(ch, 1, &mu, &gen, timeout)
	}()

	select {
	case <-done:
		if resultErr == nil {
			t.Fatal("expected timeout error, got nil")
		}
		if !strings.Contains(resultErr.Error(), "timed out") {
			t.Errorf("expected timeout error message, got: %v", resultErr)
		}
	case <-time.After(timeout + 2*time.Second):
		t.Fatal("test itself timed out waiting for evaluation timeout")
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2) // Current generation is 2

	ch := make(chan evalResult, 1)
	ch <- evalResult{result: &EvalResult{}}

	// Pass generation 1 (stale).
	_, err := waitWithTimeout(ch, 1, &mu, &gen, EvalTimeout)
	if err == nil {
		t.Fatal("expected error for stale generation")
	}
	if !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestEngineOptions(t *testing.T) {
	eng := NewEngine(WithTimeout(time.Second), WithTolerance(0.5))
	if eng.timeout != time.Second {
		t.Errorf("timeout = %s, want 1s", eng.timeout)
	}
	if eng.tolerance != 0.5 {
		t.Errorf("tolerance = %g, want 0.5", eng.tolerance)
	}

	// Non-positive values keep the defaults.
	eng = NewEngine(WithTimeout(0), WithTolerance(-1))
	if eng.timeout != EvalTimeout {
		t.Errorf("timeout = %s, want %s", eng.timeout, EvalTimeout)
	}
	if eng.tolerance != DefaultTolerance {
		t.Errorf("tolerance = %g, want %g", eng.tolerance, DefaultTolerance)
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
			msg:      "line 3: bad face",
			wantLine: 3,
			wantMsg:  "bad face",
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
