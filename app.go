package main

import (
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/chazu/meshedit/pkg/config"
	"github.com/chazu/meshedit/pkg/engine"
	"github.com/chazu/meshedit/pkg/export"
	"github.com/chazu/meshedit/pkg/logging"
	"github.com/chazu/meshedit/pkg/mesh"
	"github.com/chazu/meshedit/pkg/tessellate"
)

// App evaluates edit scripts and packages the resulting mesh for a
// renderer.
type App struct {
	engine *engine.Engine
	cfg    config.Config
	log    *log.Logger
}

// MeshData is the JSON-serializable render snapshot.
type MeshData = tessellate.Mesh

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// Counts summarises the size of the evaluated mesh.
type Counts struct {
	Vertices  int `json:"vertices"`
	HalfEdges int `json:"halfEdges"`
	Edges     int `json:"edges"`
	Faces     int `json:"faces"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	RunID     string          `json:"runId"`
	Meshes    []MeshData      `json:"meshes"`
	Loops     [][]uint32      `json:"loops"`
	Wireframe []uint32        `json:"wireframe"`
	Counts    Counts          `json:"counts"`
	Errors    []EvalErrorData `json:"errors"`
	Warnings  []EvalErrorData `json:"warnings"`
}

// NewApp creates an App with the default configuration.
func NewApp() *App {
	return NewAppWithConfig(config.Default())
}

// NewAppWithConfig creates an App whose engine and exports follow cfg.
func NewAppWithConfig(cfg config.Config) *App {
	return &App{
		engine: engine.NewEngine(
			engine.WithTimeout(cfg.Engine.Timeout()),
			engine.WithTolerance(cfg.Engine.Tolerance),
		),
		cfg: cfg,
		log: logging.With("component", "app"),
	}
}

// Evaluate takes Lisp source and returns the mesh snapshot plus errors.
// The slices in the result are never nil so that JSON always carries [].
func (a *App) Evaluate(source string) EvalResult {
	result, _ := a.evaluate(source)
	return result
}

// EvaluateToSTL evaluates source like Evaluate and also writes the mesh to
// path as STL. Nothing is written when evaluation fails.
func (a *App) EvaluateToSTL(source, path string) (EvalResult, error) {
	result, m := a.evaluate(source)
	if m == nil {
		return result, nil
	}
	if err := export.SaveSTL(m, path); err != nil {
		return result, err
	}
	a.log.Info("wrote stl", "run", result.RunID, "path", path)
	return result, nil
}

func (a *App) evaluate(source string) (EvalResult, *mesh.Mesh) {
	result := EvalResult{
		RunID:     uuid.NewString(),
		Meshes:    []MeshData{},
		Loops:     [][]uint32{},
		Wireframe: []uint32{},
		Errors:    []EvalErrorData{},
		Warnings:  []EvalErrorData{},
	}
	runLog := a.log.With("run", result.RunID)

	// Step 1: Evaluate the Lisp source into a mesh.
	res, err := a.engine.EvaluateFull(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		runLog.Error("evaluate fatal error", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result, nil
	}

	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Line: w.Line, Message: w.Message})
	}

	// Step 2: Convert eval errors to the result format.
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		runLog.Info("evaluation rejected", "errors", len(result.Errors))
		return result, nil
	}

	// Step 3: Export the mesh.
	m := res.Mesh
	result.Counts = countsOf(m)
	if m.FaceCount() > 0 {
		result.Meshes = append(result.Meshes, *a.snapshot(m))
		result.Loops = tessellate.FaceLoops(m)
	}
	if a.cfg.Export.Wireframe {
		result.Wireframe = tessellate.Wireframe(m)
	}

	runLog.Info("evaluated",
		"vertices", result.Counts.Vertices, "faces", result.Counts.Faces,
		"warnings", len(result.Warnings))
	return result, m
}

func (a *App) snapshot(m *mesh.Mesh) *MeshData {
	if a.cfg.Export.Flat {
		return export.Flat(m, "mesh")
	}
	return tessellate.Tessellate(m, "mesh", tessellate.WithNormals(a.cfg.Export.Normals))
}

func countsOf(m *mesh.Mesh) Counts {
	return Counts{
		Vertices:  m.VertexCount(),
		HalfEdges: m.HalfEdgeCount(),
		Edges:     m.EdgeCount(),
		Faces:     m.FaceCount(),
	}
}
