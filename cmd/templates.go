package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lilBchii/tide/internal/config"
	"github.com/lilBchii/tide/internal/fileid"
	"github.com/lilBchii/tide/internal/project"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage project templates",
	RunE:  runTemplatesList,
}

var templatesInstallCmd = &cobra.Command{
	Use:   "install <name> [dir]",
	Short: "Install a template into a project as main.typ",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runTemplatesInstall,
}

var templatesExportCmd = &cobra.Command{
	Use:   "export <file> <name>",
	Short: "Save a project file as a reusable template",
	Args:  cobra.ExactArgs(2),
	RunE:  runTemplatesExport,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesInstallCmd)
	templatesCmd.AddCommand(templatesExportCmd)
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	env, err := config.NewEnv()
	if err != nil {
		return err
	}
	names, err := project.ListTemplates(env.TemplatesDir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No templates installed.")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

func runTemplatesInstall(cmd *cobra.Command, args []string) error {
	env, err := config.NewEnv()
	if err != nil {
		return err
	}
	root, err := projectRoot(args[1:])
	if err != nil {
		return err
	}
	id, err := project.InstallTemplate(env.TemplatesDir, args[0], root)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Installed template %s as %s\n", args[0], string(id))
	return nil
}

func runTemplatesExport(cmd *cobra.Command, args []string) error {
	env, err := config.NewEnv()
	if err != nil {
		return err
	}
	root, err := projectRoot(nil)
	if err != nil {
		return err
	}
	id := fileid.FromName(args[0])
	if err := project.ExportTemplate(root, id, env.TemplatesDir, args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved template %s\n", args[1])
	return nil
}
