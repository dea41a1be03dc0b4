// Package pipeline composes the asset stages into a single run: geometry,
// materials, capability negotiation, export and verification.
package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/arframe/internal/capability"
	"github.com/Faultbox/arframe/internal/config"
	"github.com/Faultbox/arframe/internal/export"
	"github.com/Faultbox/arframe/internal/geometry"
	"github.com/Faultbox/arframe/internal/logger"
	"github.com/Faultbox/arframe/internal/material"
	"github.com/Faultbox/arframe/internal/metrics"
	"github.com/Faultbox/arframe/internal/texture"
	"github.com/Faultbox/arframe/internal/verify"
	"github.com/Faultbox/arframe/pkg/formats"
)

// Request is one invocation.
type Request struct {
	ImagePath   string
	OutputPath  string
	WidthCM     float64
	HeightCM    float64
	ThicknessCM float64 // zero selects the flat variant
}

// Result summarizes a verified document.
type Result struct {
	Path      string
	Size      int64
	Signature formats.Signature
	Backend   string
	Config    capability.Config

	Dimensions geometry.Dimensions
	Variant    geometry.Variant
	Points     int
	Faces      int
	Materials  []string
	AssetID    uuid.UUID

	// Texture is the sibling texture left next to the document, empty when the
	// texture was embedded.
	Texture string

	Diagnostics []Diagnostic
}

// Pipeline runs requests against one configuration.
type Pipeline struct {
	cfg     *config.Config
	metrics *metrics.Collector
}

// New creates a pipeline.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{cfg: cfg, metrics: metrics.NewCollector()}
}

// Metrics returns the collector the pipeline records into.
func (p *Pipeline) Metrics() *metrics.Collector {
	return p.metrics
}

// Run produces and verifies one document. On error no document is left at
// req.OutputPath; use Classify to map the error to a kind.
func (p *Pipeline) Run(req Request) (*Result, error) {
	start := time.Now()
	backend := p.cfg.Export.Backend

	res, err := p.run(req)

	kind := Classify(err)
	p.metrics.RecordRun(backend, string(kind), time.Since(start))
	if res != nil {
		p.metrics.RecordDocument(backend, res.Signature.Encoding.String(), res.Size)
		for _, d := range res.Diagnostics {
			p.metrics.RecordDiagnostic(string(d.Kind))
		}
	}
	if werr := p.metrics.WriteTextfile(p.cfg.Metrics.Textfile); werr != nil {
		logger.Warn("Failed to write metrics", zap.String("path", p.cfg.Metrics.Textfile), zap.Error(werr))
	}

	if err != nil {
		logger.Error("Run failed",
			zap.String("kind", string(kind)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}
	logger.Info("Run complete",
		zap.String("path", res.Path),
		zap.Int64("size", res.Size),
		zap.Int("diagnostics", len(res.Diagnostics)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (p *Pipeline) run(req Request) (*Result, error) {
	if req.ImagePath == "" || req.OutputPath == "" {
		return nil, fmt.Errorf("%w: image and output paths are required", ErrInvalidRequest)
	}

	// Dimensions are checked before anything touches the filesystem.
	dims, err := geometry.FromCentimeters(req.WidthCM, req.HeightCM, req.ThicknessCM)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Backend:    p.cfg.Export.Backend,
		Dimensions: dims,
		Variant:    dims.Variant(),
	}

	mesh, outline, err := p.buildMesh(dims, res)
	if err != nil {
		return nil, err
	}

	backend, cfg, err := p.negotiate(res)
	if err != nil {
		return nil, err
	}
	res.Config = cfg

	staged, err := texture.Stage(req.ImagePath, filepath.Dir(req.OutputPath))
	if err != nil {
		return nil, err
	}
	logger.Debug("Texture staged",
		zap.String("path", staged.Path),
		zap.String("source", string(staged.Source)),
		zap.Bool("transcoded", staged.Transcoded),
	)

	specs, err := material.Compose(p.cfg.Material, dims.Variant(), outline)
	if err != nil {
		return nil, err
	}
	mesh.AssignMaterials(material.Tags(specs))
	for _, s := range specs {
		res.Materials = append(res.Materials, s.Name)
	}

	doc := &export.Document{
		Mesh:        mesh,
		Materials:   specs,
		TexturePath: staged.Path,
		AssetID:     export.AssetID(staged.Sum, dims),
	}
	res.AssetID = doc.AssetID
	res.Points = len(mesh.Points)
	res.Faces = len(mesh.Faces)

	logger.Debug("Exporting",
		zap.String("backend", backend.Name()),
		zap.String("format", cfg.Format.String()),
		zap.Bool("embed_textures", cfg.EmbedTextures),
		zap.String("path", req.OutputPath),
	)
	if err := backend.Export(doc, cfg, req.OutputPath); err != nil {
		removeOutput(req.OutputPath)
		return nil, err
	}

	vr, mismatch, err := verify.Verify(req.OutputPath, p.cfg.Export.Policy.Format)
	if err != nil {
		removeOutput(req.OutputPath)
		return nil, err
	}
	res.Path = vr.Path
	res.Size = vr.Size
	res.Signature = vr.Signature
	if mismatch != nil {
		res.diagnose(KindFormatMismatch, mismatch.String())
	}

	res.Texture = staged.Path
	if cfg.EmbedTextures && staged.Copied {
		if err := os.Remove(staged.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Failed to remove embedded texture", zap.String("path", staged.Path), zap.Error(err))
		} else {
			res.Texture = ""
		}
	}
	return res, nil
}

// buildMesh builds the geometry and applies the optional outline. An outline
// failure is a diagnostic, never an error.
func (p *Pipeline) buildMesh(dims geometry.Dimensions, res *Result) (*geometry.Mesh, bool, error) {
	mesh, err := geometry.Build(dims, geometry.BuildOptions{Anchor: p.cfg.Geometry.Anchor})
	if err != nil {
		return nil, false, err
	}
	logger.Debug("Mesh built",
		zap.String("variant", dims.Variant().String()),
		zap.Int("points", len(mesh.Points)),
		zap.Int("faces", len(mesh.Faces)),
	)

	if !p.cfg.Geometry.Outline.Enabled {
		return mesh, false, nil
	}
	if err := geometry.AddOutline(mesh, p.cfg.Geometry.Outline.Options()); err != nil {
		res.diagnose(KindUVOrNormalHeuristicFailed, err.Error())
		return mesh, false, nil
	}
	return mesh, true, nil
}

// negotiate resolves the backend and intersects the policy with what it supports.
func (p *Pipeline) negotiate(res *Result) (export.Backend, capability.Config, error) {
	backend, err := export.Lookup(p.cfg.Export.Backend, p.cfg.Export.BackendOptions())
	if err != nil {
		return nil, capability.Config{}, err
	}
	set, err := backend.Capabilities()
	if err != nil {
		return nil, capability.Config{}, fmt.Errorf("%w: %s: %v", export.ErrBackendUnavailable, backend.Name(), err)
	}
	cfg, dropped, err := capability.Negotiate(p.cfg.Export.Policy, set)
	if err != nil {
		return nil, capability.Config{}, fmt.Errorf("%s: %w", backend.Name(), err)
	}
	for _, opt := range dropped {
		res.diagnose(KindUnsupportedOptionDropped,
			fmt.Sprintf("%s backend does not support %s", backend.Name(), opt))
	}
	logger.Debug("Capabilities negotiated",
		zap.String("backend", backend.Name()),
		zap.String("supported", joinOptions(set.Supported())),
		zap.String("format", cfg.Format.String()),
	)
	return backend, cfg, nil
}

func (r *Result) diagnose(kind Kind, msg string) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Kind: kind, Message: msg})
	logger.Warn(msg, zap.String("kind", string(kind)))
}

func removeOutput(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to remove output", zap.String("path", path), zap.Error(err))
	}
}

func joinOptions(opts []capability.Option) string {
	s := make([]string, len(opts))
	for i, o := range opts {
		s[i] = string(o)
	}
	return strings.Join(s, ",")
}
