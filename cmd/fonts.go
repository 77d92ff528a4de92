package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var fontsCmd = &cobra.Command{
	Use:   "fonts",
	Short: "List the font faces available to the compiler",
	RunE:  runFonts,
}

func init() {
	rootCmd.AddCommand(fontsCmd)
}

func runFonts(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tFAMILY\tSTYLE\tSOURCE")
	for i := 0; i < a.catalog.Len(); i++ {
		face, ok := a.catalog.Font(i)
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, face.Family, face.Style, face.Source)
	}
	return tw.Flush()
}
