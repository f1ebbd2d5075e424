package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/vmix"
)

var rootCmd = &cobra.Command{
	Use:   "vmix",
	Short: "vmix plays and records live video-mixing sessions",
	Long:  `vmix composites the sources of a session file in real time, fades the output and records it as PNG frames.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		level := slog.LevelInfo
		if debug {
			level = slog.LevelDebug
		}
		vmix.SetLogger(vmix.NewLogger(os.Stderr, level))
		vmix.SetDebugMode(debug)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("settings", "vmix.yaml", "Settings file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug checks and per-frame logging")
}

func loadSettings(cmd *cobra.Command) (vmix.Settings, error) {
	path, _ := cmd.Flags().GetString("settings")
	return vmix.LoadSettings(path)
}
