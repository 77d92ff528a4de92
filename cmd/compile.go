package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var compileMain string

var compileCmd = &cobra.Command{
	Use:   "compile [dir]",
	Short: "Compile a project once and print diagnostics",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVarP(&compileMain, "main", "m", "", "project-relative main file")
}

func runCompile(cmd *cobra.Command, args []string) error {
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

	if err := a.session.Open(ctx, root, compileMain); err != nil {
		return err
	}

	result := a.pipeline.Compile(ctx, a.session.World().Snapshot())
	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning.Message)
	}
	if result.Err != nil {
		return result.Err
	}
	fmt.Printf("Compiled %d page(s) in %s\n", result.Document.PageCount(), result.Duration.Round(time.Millisecond))
	return nil
}
