package main

import (
	"fmt"
	"os"
	"path/filepath"

	"fyannotate/internal/annotation"
	"fyannotate/internal/logging"
	"fyannotate/internal/scan"
	"fyannotate/internal/service"
	"fyannotate/internal/session"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	dbPathFlag   string
	logLevelFlag string
	dryRunFlag   bool
	cliLogger    func(string)
	svc          *service.Service
)

// NewRootCmd creates the root command for the CLI application.
// It takes a function `openSession` which opens the session database for the
// commands that read it, so tests can inject their own. Annotation commands
// never open the database and keep working while the GUI holds it.
func NewRootCmd(openSession func(dbPath string, logger session.LoggerFunc) (*session.DB, error)) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "fyannotate-cli",
		Short: "FyAnnotate CLI - inspect and maintain annotation files",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}, logging.ParseLevel(logLevelFlag))
			cliLogger = logging.Func(logger, "cli")
			svc = service.NewService(nil, scan.FileScannerImpl{}, cliLogger)
			return nil
		},
	}

	// List the image set of a folder
	imagesCmd := &cobra.Command{
		Use:   "images [directory]",
		Short: "List the images the annotator would open in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			items, err := svc.ListImages(dir)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				cmd.Printf("No images found in %s\n", dir)
				return nil
			}
			for _, p := range items.Paths() {
				cmd.Println(p)
			}
			return nil
		},
	}
	rootCmd.AddCommand(imagesCmd)

	// List annotated images
	listCmd := &cobra.Command{
		Use:   "list [annotations.json]",
		Short: "List annotated images with their box counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := annotation.LoadFile(args[0])
			if err != nil {
				return err
			}
			if len(store) == 0 {
				cmd.Printf("No annotations found in %s\n", args[0])
				return nil
			}
			for _, key := range store.Keys() {
				cmd.Printf("%s (%d)\n", key, len(store[key]))
			}
			return nil
		},
	}
	rootCmd.AddCommand(listCmd)

	// Show boxes of one image
	showCmd := &cobra.Command{
		Use:   "show [annotations.json] [image]",
		Short: "Print the boxes of one image as x0 y0 x1 y1",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := annotation.LoadFile(args[0])
			if err != nil {
				return err
			}
			name := filepath.Base(args[1])
			rects := store.Rects(name)
			if len(rects) == 0 {
				cmd.Printf("No boxes for %s\n", name)
				return nil
			}
			for _, r := range rects {
				cmd.Printf("%d %d %d %d\n", r.X0, r.Y0, r.X1, r.Y1)
			}
			return nil
		},
	}
	rootCmd.AddCommand(showCmd)

	// Totals
	statsCmd := &cobra.Command{
		Use:   "stats [annotations.json]",
		Short: "Print the number of annotated images and boxes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := annotation.LoadFile(args[0])
			if err != nil {
				return err
			}
			cmd.Printf("Images: %d\n", len(store))
			cmd.Printf("Boxes: %d\n", store.Count())
			return nil
		},
	}
	rootCmd.AddCommand(statsCmd)

	// Drop entries for images that are no longer in a folder
	pruneCmd := &cobra.Command{
		Use:   "prune [annotations.json] [directory]",
		Short: "Remove annotations for images missing from a directory",
		Long: `Remove every entry whose image name is not in the directory's image set and
rewrite the annotation file. Use --dryrun to preview what will be removed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			store, err := annotation.LoadFile(path)
			if err != nil {
				return err
			}
			items, err := svc.ListImages(args[1])
			if err != nil {
				return err
			}
			removed := svc.PruneAnnotations(store, items)
			if len(removed) == 0 {
				cmd.Println("Nothing to prune.")
				return nil
			}
			for _, key := range removed {
				if dryRunFlag {
					cmd.Printf("[DRY RUN] Would remove %s\n", key)
				} else {
					cmd.Printf("Removed %s\n", key)
				}
			}
			if dryRunFlag {
				cmd.Printf("[DRY RUN] %s was not modified.\n", path)
				return nil
			}
			return annotation.SaveFile(path, store)
		},
	}
	pruneCmd.Flags().BoolVar(&dryRunFlag, "dryrun", false, "Show what would be removed but do not modify the file")
	rootCmd.AddCommand(pruneCmd)

	// Render boxes onto an image
	renderCmd := &cobra.Command{
		Use:   "render [annotations.json] [image] [output]",
		Short: "Write the display-size image with its boxes drawn",
		Long: `Write the image resized to 512x512 with its boxes outlined in red, as the
annotator shows it. The output format follows the output file extension.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := annotation.LoadFile(args[0])
			if err != nil {
				return err
			}
			rects := store.Rects(filepath.Base(args[1]))
			img, err := svc.Images.Render(args[1], rects)
			if err != nil {
				return err
			}
			if err := imaging.Save(img, args[2]); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[2], err)
			}
			cmd.Printf("Wrote %s with %d boxes\n", args[2], len(rects))
			return nil
		},
	}
	rootCmd.AddCommand(renderCmd)

	// Image metadata
	infoCmd := &cobra.Command{
		Use:   "info [image]",
		Short: "Print dimensions, file details and EXIF fields of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, _, err := svc.Images.GetImageInfo(args[0])
			if err != nil {
				return err
			}
			for _, line := range info.Details() {
				cmd.Println(line)
			}
			return nil
		},
	}
	rootCmd.AddCommand(infoCmd)

	// Session contents
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Print the remembered folder, annotation file and image positions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionDB, err := openSession(dbPathFlag, cliLogger)
			if err != nil {
				return fmt.Errorf("failed to open session DB: %w", err)
			}
			defer sessionDB.Close()

			lastFolder, err := sessionDB.LastFolder()
			if err != nil {
				return err
			}
			lastAnnotations, err := sessionDB.LastAnnotations()
			if err != nil {
				return err
			}
			folders, err := sessionDB.Folders()
			if err != nil {
				return err
			}
			cmd.Printf("Database: %s\n", sessionDB.Path())
			cmd.Printf("Last folder: %s\n", lastFolder)
			cmd.Printf("Last annotations: %s\n", lastAnnotations)
			for _, dir := range folders {
				index, _, err := sessionDB.FolderIndex(dir)
				if err != nil {
					return err
				}
				cmd.Printf("  %s: image %d\n", dir, index+1)
			}
			return nil
		},
	}
	rootCmd.AddCommand(sessionCmd)

	// Define persistent flags on the rootCmd returned by NewRootCmd
	// This ensures flags are available when NewRootCmd is called from main or tests.
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "dbpath", "", "Path to session database")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "warn", "Log level (debug, info, warn, error)")

	return rootCmd
}

func main() {
	rootCmd := NewRootCmd(session.Open)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
