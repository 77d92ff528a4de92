package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lilBchii/tide/internal/config"
	"github.com/lilBchii/tide/internal/project"
)

var projectsForget string

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List recently opened projects",
	RunE:  runProjects,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	projectsCmd.Flags().StringVar(&projectsForget, "forget", "", "remove the given project root from the list")
}

func runProjects(cmd *cobra.Command, args []string) error {
	env, err := config.NewEnv()
	if err != nil {
		return err
	}

	if projectsForget != "" {
		if err := project.Forget(env.RecentCache(), projectsForget); err != nil {
			return err
		}
	}

	recents, err := project.LoadRecent(env.RecentCache())
	if err != nil {
		return err
	}
	if len(recents) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recent projects.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROOT\tMAIN")
	for _, recent := range recents {
		main := recent.Main
		if main == "" {
			main = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\n", recent.Root, main)
	}
	return tw.Flush()
}
