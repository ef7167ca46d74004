package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"coverfetch/internal/api/coverart"
	"coverfetch/internal/api/itunes"
	"coverfetch/internal/api/musicbrainz"
	"coverfetch/internal/config"
	"coverfetch/internal/core/orchestrator"
	"coverfetch/internal/core/resolver"
	"coverfetch/internal/core/tagger"
	"coverfetch/internal/fetch"
	"coverfetch/internal/shared"
)

const toolVersion = "1.0.0"

// NewRootCommand creates the root command: scan a directory and enrich its
// files with cover art and metadata.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "coverfetch [directory]",
		Version: toolVersion,
		Short:   "Find & embed cover art and descriptive tags for local audio files.",
		Long: fmt.Sprintf(`coverfetch (v%s)

Scans a folder of audio files, looks each one up against the iTunes Search
API and MusicBrainz + Cover Art Archive (no API keys required), and embeds
the found cover art and descriptive tags (album, date, genre, artist, title,
track number) directly into each file. Existing values are preserved unless
the matching --update-* flag and --force are given.`, toolVersion),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runScanCommand,
	}

	cmd.Flags().BoolP("recursive", "r", false, "Scan subfolders")
	cmd.Flags().IntP("concurrency", "n", 0, "Parallel workers (default from config)")
	cmd.Flags().Bool("dry-run", false, "Search & report only; do not write")
	cmd.Flags().Bool("force", false, "Overwrite existing cover art and (with --update-*) tags")
	cmd.Flags().Bool("quiet", false, "Show a progress bar instead of per-file lines")
	cmd.Flags().String("ext", "mp3", "File extension to process (mp3 or flac)")
	cmd.Flags().Bool("id3v24", false, "Save MP3 tags as ID3v2.4 (default v2.3)")
	cmd.Flags().String("config", "", "Path to a JSON config file")
	cmd.Flags().Bool("debug", false, "Enable debug logging")

	// Tag update controls
	cmd.Flags().Bool("update-album", false, "Overwrite album when discovered (with --force)")
	cmd.Flags().Bool("update-year", false, "Overwrite year/date when discovered (with --force)")
	cmd.Flags().Bool("update-genre", false, "Overwrite genre when discovered (with --force)")
	cmd.Flags().Bool("update-artist", false, "Overwrite artist when discovered (with --force)")
	cmd.Flags().Bool("update-title", false, "Overwrite title when discovered (with --force)")
	cmd.Flags().Bool("update-track", false, "Overwrite track number when discovered (with --force)")

	cmd.AddCommand(NewConfigCommand())
	return cmd
}

// Execute runs the CLI. The returned error is non-nil only for operator
// input errors (missing target directory); per-file failures are reported
// in the summary instead.
func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig resolves the effective configuration for a run.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.GetDefaultConfig()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if !shared.FileExists(path) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		if err := config.LoadConfig(path, cfg); err != nil {
			return nil, err
		}
		cfg.ApplyDefaults()
	}
	return cfg, nil
}

// buildResolver wires the lookup clients onto the fetch layer per config.
func buildResolver(cfg *config.Config, debug bool, warnings *shared.WarningCollector) *resolver.Resolver {
	base := fetch.Config{
		UserAgent:    cfg.UserAgent,
		Timeout:      cfg.RequestTimeout(),
		MaxAttempts:  cfg.MaxRetryAttempts,
		InitialDelay: cfg.InitialRetryDelay(),
		MaxDelay:     cfg.MaxRetryDelay(),
		Debug:        debug,
	}

	mbConfig := base
	mbConfig.RateLimit = cfg.MusicBrainzDelay()
	mbConfig.BurstLimit = 1

	itunesClient := itunes.NewClient(fetch.NewClient(base), itunes.Config{
		MinImageBytes: cfg.MinImageBytes,
	})
	mbClient := musicbrainz.NewClient(fetch.NewClient(mbConfig), musicbrainz.DefaultConfig())
	caaClient := coverart.NewClient(fetch.NewClient(base), coverart.Config{
		MinImageBytes: cfg.MinArchiveImageBytes,
	})

	return resolver.New(itunesClient, mbClient, caaClient, warnings)
}

func runScanCommand(cmd *cobra.Command, args []string) error {
	root := args[0]
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("path does not exist: %s", root)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	recursive, _ := cmd.Flags().GetBool("recursive")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	force, _ := cmd.Flags().GetBool("force")
	quiet, _ := cmd.Flags().GetBool("quiet")
	ext, _ := cmd.Flags().GetString("ext")
	id3v24, _ := cmd.Flags().GetBool("id3v24")
	debug, _ := cmd.Flags().GetBool("debug")
	debug = debug || shared.IsDebugMode()

	if concurrency > 0 {
		cfg.Parallelism = concurrency
	}

	update := tagger.UpdateFlags{}
	update.Album, _ = cmd.Flags().GetBool("update-album")
	update.Date, _ = cmd.Flags().GetBool("update-year")
	update.Genre, _ = cmd.Flags().GetBool("update-genre")
	update.Artist, _ = cmd.Flags().GetBool("update-artist")
	update.Title, _ = cmd.Flags().GetBool("update-title")
	update.Track, _ = cmd.Flags().GetBool("update-track")

	files, err := orchestrator.CollectFiles(root, ext, recursive)
	if err != nil {
		shared.ColorError.Fprintf(os.Stderr, "[!] %v\n", err)
		return nil
	}
	if len(files) == 0 {
		shared.ColorInfo.Printf("[i] No .%s files found in %s\n", ext, root)
		return nil
	}

	shared.ColorInfo.Printf("[i] Processing %d file(s) in %s (recursive=%v) dry_run=%v force=%v workers=%d\n",
		len(files), root, recursive, dryRun, force, cfg.Parallelism)

	id3Version := byte(3)
	if id3v24 {
		id3Version = 4
	}

	warnings := shared.NewWarningCollector(true)
	orch := orchestrator.New(buildResolver(cfg, debug, warnings), warnings, orchestrator.Options{
		Parallelism: cfg.Parallelism,
		DryRun:      dryRun,
		Force:       force,
		Update:      update,
		ID3Version:  id3Version,
		MaxArtSize:  cfg.MaxEmbedArtSize,
		Quiet:       quiet,
	})

	summary := orch.Run(context.Background(), files)

	warnings.PrintSummary()
	orchestrator.PrintSummary(summary, dryRun)
	return nil
}
