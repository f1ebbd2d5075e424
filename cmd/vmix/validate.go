package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phanxgames/vmix/sessionfile"
)

var validateCmd = &cobra.Command{
	Use:   "validate <session.yaml>",
	Short: "Check a session file",
	Long:  `Parses the session file and reports its sources without opening a window.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := sessionfile.Read(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: version %d, %dx%d, %d sources\n",
			args[0], d.Version, d.Resolution.Width, d.Resolution.Height, len(d.Sources))
		for i, sd := range d.Sources {
			fmt.Fprintf(out, "  %2d  %-8s %s %s\n", i, sd.Kind, sd.Name, sd.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
