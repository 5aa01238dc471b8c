// Main entry point for the FyAnnotate GUI
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"fyannotate/internal/logging"
	"fyannotate/internal/ui"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the GUI command. run receives the parsed options and is
// replaced in tests so no window is opened.
func NewRootCmd(run func(ui.Options)) *cobra.Command {
	var (
		dirFlag         string
		annotationsFlag string
		dbPathFlag      string
		restoreFlag     bool
		logLevelFlag    string
	)

	rootCmd := &cobra.Command{
		Use:   "fyannotate",
		Short: "FyAnnotate - draw bounding boxes on a folder of images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := ui.Options{
				Annotations: annotationsFlag,
				DBPath:      dbPathFlag,
				Restore:     restoreFlag,
				Logger:      logging.NewConsole(logging.ParseLevel(logLevelFlag)),
			}
			if dirFlag != "" {
				dir, err := filepath.Abs(dirFlag)
				if err != nil {
					return err
				}
				info, err := os.Stat(dir)
				if err != nil {
					return fmt.Errorf("unable to open folder: %w", err)
				}
				if !info.IsDir() {
					return fmt.Errorf("%s is not a directory", dir)
				}
				opts.Dir = dir
			}
			run(opts)
			return nil
		},
	}

	rootCmd.Flags().StringVar(&dirFlag, "dir", "", "Folder of images to open at start")
	rootCmd.Flags().StringVar(&annotationsFlag, "annotations", "", "Annotation file to load at start")
	rootCmd.Flags().StringVar(&dbPathFlag, "dbpath", "", "Path to session database")
	rootCmd.Flags().BoolVar(&restoreFlag, "restore", true, "Reopen the last folder at its last image")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "info", "Log level (debug, info, warn, error)")

	return rootCmd
}

func main() {
	if err := NewRootCmd(ui.CreateApplication).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
