package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/meshedit/pkg/edit"
	"github.com/chazu/meshedit/pkg/mesh"
	"github.com/chazu/meshedit/pkg/objimport"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms mesh script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: face-count -> face_count
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpFace wraps a mesh.FaceID so it can be passed between builtins.
type sexpFace struct {
	id mesh.FaceID
}

func (f *sexpFace) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(face %s)", f.id)
}
func (f *sexpFace) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// float returns the keyword argument name as a number, or def when absent.
func (a kwArgs) float(name string, def float64) (float64, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts a whole number from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a v3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toFace extracts a mesh.FaceID from a sexpFace.
func toFace(s zygo.Sexp) (mesh.FaceID, error) {
	if f, ok := s.(*sexpFace); ok {
		return f.id, nil
	}
	return mesh.NoFace, fmt.Errorf("expected face reference, got %T (%s)", s, s.SexpString(nil))
}

func intSexp(n int) zygo.Sexp {
	return &zygo.SexpInt{Val: int64(n)}
}

// ---------------------------------------------------------------------------
// Evaluation session
// ---------------------------------------------------------------------------

// DefaultTolerance is the tolerance builtins use when :tolerance is omitted
// and the engine was not configured with another.
const DefaultTolerance = 1e-10

// session is the mutable state a single evaluation works on. It is owned by
// the evaluating goroutine.
type session struct {
	mesh      *mesh.Mesh
	tolerance float64
	warnings  []EvalWarning
}

func newSession(tolerance float64) *session {
	return &session{mesh: mesh.New(), tolerance: tolerance}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the mesh builtins into a zygomys environment.
// The builtins operate on the session mesh, editing it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *session) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: v3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (cube :size 2)
	// -----------------------------------------------------------------------
	env.AddFunction("cube", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		size, err := pa.float("size", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cube: %w", err)
		}
		if !(size > 0) {
			return zygo.SexpNull, fmt.Errorf("cube: size must be positive, got %g", size)
		}
		m, err := mesh.NewCube(size)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cube: %w", err)
		}
		s.mesh = m
		return intSexp(m.FaceCount()), nil
	})

	// -----------------------------------------------------------------------
	// (obj `v 0 0 0 ...` :tolerance 1e-6)
	// -----------------------------------------------------------------------
	env.AddFunction("obj", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("obj requires the OBJ text as first argument")
		}
		text, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("obj: text: %w", err)
		}
		tol, err := pa.float("tolerance", s.tolerance)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("obj: %w", err)
		}

		rep, err := objimport.Parse(s.mesh, text, tol)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("obj: %w", err)
		}
		for _, w := range rep.Warnings {
			s.warnings = append(s.warnings, EvalWarning{Message: "obj: " + w.Error()})
		}
		return intSexp(rep.Faces), nil
	})

	// -----------------------------------------------------------------------
	// (face 0) -- the i-th live face in store order
	// -----------------------------------------------------------------------
	env.AddFunction("face", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("face requires exactly 1 argument, got %d", len(args))
		}
		i, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("face: %w", err)
		}
		f, ok := s.mesh.FaceAt(i)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("face: index %d out of range, mesh has %d faces", i, s.mesh.FaceCount())
		}
		return &sexpFace{id: f}, nil
	})

	// -----------------------------------------------------------------------
	// (extrude (face 0) :direction (vec3 0 1 0) :distance 5 :tolerance 2)
	//
	// :direction defaults to the face normal.
	// -----------------------------------------------------------------------
	env.AddFunction("extrude", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("extrude requires a face reference as first argument")
		}
		f, err := toFace(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude: %w", err)
		}

		var dir v3.Vec
		if v, ok := pa.kw["direction"]; ok {
			dir, err = toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("extrude: direction: %w", err)
			}
		} else {
			dir, err = s.mesh.FaceNormal(f)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("extrude: %w", err)
			}
		}
		if _, ok := pa.kw["distance"]; !ok {
			return zygo.SexpNull, fmt.Errorf("extrude requires :distance")
		}
		dist, err := pa.float("distance", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude: %w", err)
		}
		tol, err := pa.float("tolerance", s.tolerance)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude: %w", err)
		}

		res, err := edit.Extrude(s.mesh, f, dir, dist, tol)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpFace{id: res.TopFace}, nil
	})

	// -----------------------------------------------------------------------
	// (inset (face 0) :distance 1 :tolerance 1)
	// -----------------------------------------------------------------------
	env.AddFunction("inset", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("inset requires a face reference as first argument")
		}
		f, err := toFace(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("inset: %w", err)
		}
		if _, ok := pa.kw["distance"]; !ok {
			return zygo.SexpNull, fmt.Errorf("inset requires :distance")
		}
		dist, err := pa.float("distance", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("inset: %w", err)
		}
		tol, err := pa.float("tolerance", s.tolerance)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("inset: %w", err)
		}

		res, err := edit.Inset(s.mesh, f, dist, tol)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpFace{id: res.InsetFace}, nil
	})

	// -----------------------------------------------------------------------
	// (face-count) (vertex-count) (edge-count)
	// -----------------------------------------------------------------------
	// The mesh is looked up on each call since cube and obj replace it.
	counters := map[string]func() int{
		"face_count":   func() int { return s.mesh.FaceCount() },
		"vertex_count": func() int { return s.mesh.VertexCount() },
		"edge_count":   func() int { return s.mesh.EdgeCount() },
	}
	for fn, count := range counters {
		count := count
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 0 {
				return zygo.SexpNull, fmt.Errorf("%s takes no arguments", strings.ReplaceAll(name, "_", "-"))
			}
			return intSexp(count()), nil
		})
	}
}
