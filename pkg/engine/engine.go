// Package engine provides the Lisp evaluation engine for mesh edit scripts.
// It wraps zygomys in a sandboxed environment and produces a half-edge mesh
// from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/meshedit/pkg/logging"
	"github.com/chazu/meshedit/pkg/mesh"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code, or a broken mesh.
type EvalError struct {
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	Message string `json:"message"`
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// EvalResult bundles the full output of an evaluation.
type EvalResult struct {
	Mesh     *mesh.Mesh
	Errors   []EvalError
	Warnings []EvalWarning
}

// Engine wraps the zygomys interpreter for mesh scripts.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment and a fresh mesh for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	timeout   time.Duration
	tolerance float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout overrides the evaluation time limit.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithTolerance sets the tolerance used by builtins whose :tolerance
// argument is omitted.
func WithTolerance(tol float64) Option {
	return func(e *Engine) {
		if tol > 0 {
			e.tolerance = tol
		}
	}
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		timeout:   EvalTimeout,
		tolerance: DefaultTolerance,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate takes Lisp source code and produces a new mesh.
//
// Return semantics:
//   - On success: returns mesh + nil errors + nil error
//   - On parse/eval failure or a mesh that fails validation: returns nil
//     mesh + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*mesh.Mesh, []EvalError, error) {
	res, err := e.EvaluateFull(source)
	if err != nil {
		return nil, nil, err
	}
	return res.Mesh, res.Errors, nil
}

// EvaluateFull is Evaluate with warnings from imports and validation
// included in the result.
func (e *Engine) EvaluateFull(source string) (*EvalResult, error) {
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

		res := e.evaluate(source)
		ch <- evalResult{result: res}
	}()

	started := time.Now()
	res, err := waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout)
	if err != nil {
		logging.Warn("evaluation failed", "generation", gen, "err", err)
		return nil, err
	}
	logging.Debug("evaluation finished", "generation", gen,
		"elapsed", time.Since(started), "errors", len(res.Errors), "warnings", len(res.Warnings))
	return res, nil
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) *EvalResult {
	// Empty source is a valid program that produces an empty mesh.
	if strings.TrimSpace(source) == "" {
		return &EvalResult{Mesh: mesh.New()}
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	s := newSession(e.tolerance)
	registerBuiltins(env, s)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return &EvalResult{Errors: parseZygomysError(err), Warnings: s.warnings}
	}
	if _, err := env.Run(); err != nil {
		return &EvalResult{Errors: parseZygomysError(err), Warnings: s.warnings}
	}

	res := &EvalResult{Mesh: s.mesh, Warnings: s.warnings}
	for _, v := range mesh.Validate(s.mesh) {
		if v.Severity == mesh.SeverityError {
			res.Errors = append(res.Errors, EvalError{Message: v.Error()})
		} else {
			res.Warnings = append(res.Warnings, EvalWarning{Message: v.Error()})
		}
	}
	if len(res.Errors) > 0 {
		res.Mesh = nil
	}
	return res
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
