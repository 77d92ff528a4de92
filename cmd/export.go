package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOut    string
	exportMain   string
)

var exportCmd = &cobra.Command{
	Use:   "export [dir]",
	Short: "Compile a project and write PDF, PNG, or SVG artifacts",
	Long: `Export always compiles the project from its current sources; it never
reuses preview state. PNG and SVG exports write one file per page named
<base>-<n>.<ext>.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "output format (pdf, png, svg); inferred from -o when empty")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output path")
	exportCmd.Flags().StringVarP(&exportMain, "main", "m", "", "project-relative main file")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	root, err := projectRoot(args)
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.session.Open(ctx, root, exportMain); err != nil {
		return err
	}

	format := exportFormat
	if format == "" {
		if ext := strings.TrimPrefix(filepath.Ext(exportOut), "."); ext != "" {
			format = strings.ToLower(ext)
		} else {
			format = a.cfg.Export.Format
		}
	}

	out := exportOut
	if out == "" {
		base := strings.TrimSuffix(a.session.World().Main().Name(), filepath.Ext(a.session.World().Main().Name()))
		out = filepath.Join(root, base+"."+format)
	}

	w := a.session.World()
	switch format {
	case "pdf":
		err = a.exporter.PDF(ctx, w, out)
	case "png":
		err = a.exporter.PNG(ctx, w, out)
	case "svg":
		err = a.exporter.SVG(ctx, w, out)
	default:
		return fmt.Errorf("unsupported export format %q (want pdf, png, or svg)", format)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Exported %s\n", out)
	return nil
}
