package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lilBchii/tide/internal/project"
	"github.com/lilBchii/tide/internal/server"
)

var (
	serveHost string
	servePort int
	serveMain string
)

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Watch a project and serve the live preview",
	Long: `Serve opens the project, compiles it, and exposes the rendered pages
over HTTP. Edits to project files trigger a recompile; connected
browsers reload automatically.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "bind host (defaults to configuration)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "bind port (defaults to configuration)")
	serveCmd.Flags().StringVarP(&serveMain, "main", "m", "", "project-relative main file")
}

func runServe(cmd *cobra.Command, args []string) error {
	root, err := projectRoot(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.session.Open(ctx, root, serveMain); err != nil {
		return err
	}
	if err := a.session.ForcePreview(ctx); err != nil {
		return err
	}

	watcher, err := project.NewWatcher(root, project.DefaultDebounce, a.logger)
	if err != nil {
		return err
	}
	watcher.AddHandler(func(changes []project.Change) {
		for _, change := range changes {
			applyChange(ctx, a, root, change)
		}
		if err := a.session.ForcePreview(ctx); err != nil {
			a.logger.Warn(ctx, err, "cannot refresh preview")
		}
	})
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	go a.session.Run(ctx)

	cfg := a.cfg.Server
	if serveHost != "" {
		cfg.Host = serveHost
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	srv := server.New(a.renderer.Cache(), cfg, a.logger)
	return srv.Start(ctx)
}

// applyChange folds one watcher event into the live world.
func applyChange(ctx context.Context, a *app, root string, change project.Change) {
	w := a.session.World()
	switch change.Kind {
	case project.ChangeDeleted:
		w.Remove(change.ID)
	default:
		file, err := project.LoadFile(root, change.Path)
		if err != nil {
			a.logger.Warn(ctx, err, "cannot reload changed file", "path", change.Path)
			return
		}
		project.Populate(w, []*project.ImportedFile{file})
	}
}
