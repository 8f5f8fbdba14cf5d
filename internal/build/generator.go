// Package build composes hashing, the regeneration gate, and the template
// compiler into the mesh build orchestrator.
package build

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/storefront-tools/meshbuild/internal/artifact"
	"github.com/storefront-tools/meshbuild/internal/config"
	mberrors "github.com/storefront-tools/meshbuild/internal/errors"
	"github.com/storefront-tools/meshbuild/internal/hashing"
	"github.com/storefront-tools/meshbuild/internal/meshconfig"
	"github.com/storefront-tools/meshbuild/internal/metrics"
	"github.com/storefront-tools/meshbuild/internal/template"
)

// Options control a single build invocation.
type Options struct {
	Force       bool
	Environment string
}

// Generator drives artifact generation for one configuration.
type Generator struct {
	config   *config.Config
	recorder metrics.Recorder
	now      func() time.Time
}

// NewGenerator creates a build generator.
func NewGenerator(cfg *config.Config) *Generator {
	return &Generator{config: cfg, recorder: metrics.NoopRecorder{}, now: time.Now}
}

// WithRecorder injects a metrics recorder.
func (g *Generator) WithRecorder(r metrics.Recorder) *Generator {
	if r != nil {
		g.recorder = r
	}
	return g
}

// Build loads the effective environment, decides whether the resolver
// artifact needs regeneration, and writes the artifact plus mesh.json when it
// does. Unchanged inputs produce zero writes.
func (g *Generator) Build(opts Options) (*GenerationResult, error) {
	start := g.now()
	result, err := g.build(opts)
	g.recorder.ObserveBuildDuration(g.now().Sub(start))
	switch {
	case err != nil:
		g.recorder.IncBuildOutcome("failed")
	case result.Regenerated:
		g.recorder.IncBuildOutcome("regenerated")
	default:
		g.recorder.IncBuildOutcome("skipped")
	}
	return result, err
}

func (g *Generator) build(opts Options) (*GenerationResult, error) {
	env, err := g.config.Environment(opts.Environment)
	if err != nil {
		return nil, err
	}

	meshCfg, err := g.assembleMeshConfig(env)
	if err != nil {
		return nil, err
	}

	vars := Variables(g.config, env)

	// The effective configuration digest covers the normalized mesh config
	// (volatile build timestamp excluded) and the template variable set,
	// since both feed the generated outputs.
	meshDigest, err := hashing.HashCanonicalObject(meshCfg, meshconfig.VolatileKeys())
	if err != nil {
		return nil, err
	}
	varsDigest, err := hashing.HashCanonicalObject(vars, nil)
	if err != nil {
		return nil, err
	}
	configDigest := hashing.HashBytes([]byte(string(meshDigest) + ":" + string(varsDigest)))

	templatePath := g.config.Mesh.Template
	if _, err := os.Stat(templatePath); os.IsNotExist(err) {
		return nil, mberrors.TemplateMissing(templatePath)
	}
	templateDigest, err := hashing.HashFile(templatePath)
	if err != nil {
		return nil, err
	}

	prev, artifactExisted := g.readPriorMetadata()

	decision := Decide(templateDigest, configDigest, prev, artifactExisted, opts.Force)
	g.recorder.IncRegenReason(decision.Reason)
	slog.Info("Regeneration decision",
		"needed", decision.Needed,
		"reason", decision.Reason,
		"template_digest", templateDigest.Short(),
		"config_digest", configDigest.Short())

	if !decision.Needed {
		if err := g.ensureMeshJSON(meshCfg); err != nil {
			return nil, err
		}
		return &GenerationResult{Regenerated: false, Reason: decision.Reason, Metadata: *prev}, nil
	}

	templateText, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, mberrors.Wrap(err, mberrors.CategoryFileSystem, mberrors.SeverityFatal, "failed to read template").
			WithContext("path", templatePath)
	}

	body := template.Compile(string(templateText), vars)
	if unresolved := template.Unresolved(body); len(unresolved) > 0 {
		slog.Warn("Compiled artifact still contains placeholders", "placeholders", unresolved)
	}

	meta := artifact.GenerationMetadata{
		TemplateDigest: templateDigest,
		ConfigDigest:   configDigest,
		GeneratedAt:    g.now().UTC(),
		FormatVersion:  artifact.FormatVersion,
		SourceRevision: SourceRevision(filepath.Dir(templatePath)),
	}
	embedded, err := artifact.Embed(body, meta)
	if err != nil {
		return nil, mberrors.Wrap(err, mberrors.CategorySerialization, mberrors.SeverityFatal, "failed to embed metadata")
	}

	artifactPath := g.config.Mesh.Artifact
	if err := os.MkdirAll(filepath.Dir(artifactPath), 0o755); err != nil {
		return nil, mberrors.ArtifactWriteFailed(artifactPath, err)
	}
	if err := artifact.WriteFileAtomic(artifactPath, []byte(embedded), 0o644); err != nil {
		return nil, mberrors.ArtifactWriteFailed(artifactPath, err)
	}

	if err := meshconfig.WriteMeshJSON(g.config.Mesh.ConfigOutput, meshCfg); err != nil {
		return nil, err
	}

	slog.Info("Artifact regenerated",
		"artifact", artifactPath,
		"mesh_config", g.config.Mesh.ConfigOutput,
		"reason", decision.Reason)

	return &GenerationResult{Regenerated: true, Reason: decision.Reason, Metadata: meta}, nil
}

// assembleMeshConfig builds the normalized mesh configuration for an
// environment: cloned sources re-pointed at the environment base URL, type
// defs normalized to SDL, resolver references and response config attached.
// The volatile build timestamp is stamped here and excluded from hashing.
func (g *Generator) assembleMeshConfig(env config.Environment) (meshconfig.MeshConfig, error) {
	cfg := meshconfig.MeshConfig{
		Sources:             meshconfig.CloneSources(g.config.Mesh.Sources),
		AdditionalResolvers: g.config.Mesh.Resolvers,
		ResponseConfig:      g.config.Mesh.Response,
		Timestamp:           g.now().UTC().Format(time.RFC3339),
	}
	if err := meshconfig.RewriteSourceURLs(&cfg, env.CommerceBaseURL); err != nil {
		return meshconfig.MeshConfig{}, err
	}
	return meshconfig.Normalize(cfg, g.config.Mesh.TypeDefs)
}

// readPriorMetadata recovers the metadata embedded in the existing artifact.
// Any failure (missing file, unreadable, absent or corrupt marker) yields
// (nil, existed) and the gate regenerates.
func (g *Generator) readPriorMetadata() (*artifact.GenerationMetadata, bool) {
	data, err := os.ReadFile(g.config.Mesh.Artifact)
	if err != nil {
		return nil, false
	}
	meta, ok := artifact.Extract(string(data))
	if !ok {
		return nil, true
	}
	return &meta, true
}

// ensureMeshJSON writes mesh.json only when it is missing, so a skipped build
// with intact outputs performs zero writes.
func (g *Generator) ensureMeshJSON(cfg meshconfig.MeshConfig) error {
	if _, err := os.Stat(g.config.Mesh.ConfigOutput); err == nil {
		return nil
	}
	return meshconfig.WriteMeshJSON(g.config.Mesh.ConfigOutput, cfg)
}
