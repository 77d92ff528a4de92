package cmd

import (
	"context"

	"github.com/lilBchii/tide/internal/compile"
	"github.com/lilBchii/tide/internal/config"
	"github.com/lilBchii/tide/internal/export"
	"github.com/lilBchii/tide/internal/logging"
	"github.com/lilBchii/tide/internal/preview"
	"github.com/lilBchii/tide/internal/scheduler"
	"github.com/lilBchii/tide/internal/session"
	"github.com/lilBchii/tide/internal/world"
)

// app bundles the wired components every command works with.
type app struct {
	cfg      *config.Config
	env      *config.Env
	logger   logging.Logger
	catalog  *world.Catalog
	compiler *compile.CommandCompiler
	pipeline *compile.Pipeline
	renderer *preview.Renderer
	runner   *scheduler.Runner
	session  *session.Session
	exporter *export.Exporter
}

// newApp loads configuration and wires the full component graph.
func newApp(ctx context.Context) (*app, error) {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	env, err := config.NewEnv()
	if err != nil {
		return nil, err
	}
	if err := env.EnsureDirs(); err != nil {
		return nil, err
	}

	catalog := world.NewCatalog(env.FontsDir, logger)

	fontDirs := []string{env.FontsDir}
	if cfg.Compiler.FontDir != "" {
		fontDirs = append(fontDirs, cfg.Compiler.FontDir)
	}
	compiler := compile.NewCommandCompiler(cfg.Compiler.Command, fontDirs, logger)
	pipeline := compile.NewPipeline(compiler, logger)

	renderer := preview.NewRenderer(compiler, preview.Options{
		Gap:             cfg.Preview.PageGap,
		ScrollThreshold: cfg.Preview.ScrollThreshold,
	}, logger)
	renderer.SetZoom(cfg.Preview.Zoom)
	renderer.SetViewportHeight(cfg.Preview.ViewportHeight)

	runner := scheduler.NewRunner(32, logger)

	a := &app{
		cfg:      cfg,
		env:      env,
		logger:   logger,
		catalog:  catalog,
		compiler: compiler,
		pipeline: pipeline,
		renderer: renderer,
		runner:   runner,
		session:  session.New(pipeline, renderer, runner, catalog, env, logger),
		exporter: export.New(pipeline, compiler, compiler, logger),
	}
	logger.Debug(ctx, "components wired", "compiler", cfg.Compiler.Command)
	return a, nil
}

// close releases background resources.
func (a *app) close() {
	a.runner.Close()
}
