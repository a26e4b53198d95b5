package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"shufflepod/internal/audio"
	"shufflepod/internal/config"
	"shufflepod/internal/fetch"
	"shufflepod/internal/logging"
	"shufflepod/internal/media"
	"shufflepod/internal/pocketcasts"
	"shufflepod/internal/state"
	"shufflepod/internal/syncer"
	"shufflepod/internal/tui"
)

var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(cfg.Environment)
	logger.Info("shufflepod starting",
		slog.String("version", Version),
		slog.String("music_dir", cfg.MusicDir),
		slog.Int("max_downloads", cfg.MaxConcurrentDownloads),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Password == "" {
		password, err := promptPassword(cfg.Email)
		if err != nil {
			return err
		}
		cfg.Password = password
	}

	// A broken state db only costs us the cached token, so sign in
	// fresh instead of failing the run.
	appState, err := state.Load()
	if err != nil {
		logger.Warn("state unavailable, token caching disabled", slog.String("error", err.Error()))
		appState = nil
	} else {
		defer appState.Close()
	}

	client := pocketcasts.NewClient(nil)

	token, podcasts, err := authenticate(ctx, client, cfg, appState, logger)
	if err != nil {
		return err
	}

	episodes, err := client.UpNext(ctx, token)
	if err != nil {
		return fmt.Errorf("fetching up next queue: %w", err)
	}
	logger.Info("fetched up next queue", slog.Int("episodes", len(episodes)))

	if cfg.Interactive {
		episodes, err = tui.SelectEpisodes(episodes, podcasts)
		if err != nil {
			return err
		}
		// Re-number so selections keep a dense queue order on disk.
		for i := range episodes {
			episodes[i].Order = i
		}
		logger.Info("episodes selected", slog.Int("episodes", len(episodes)))
	}

	lib := media.NewLibrary(cfg.MusicDir)

	scan, err := lib.Scan()
	if err != nil {
		return fmt.Errorf("scanning music directory: %w", err)
	}

	for _, name := range scan.Unparsable {
		logger.Warn("ignoring file with unrecognized name", slog.String("file", name))
	}
	for _, name := range scan.Duplicates {
		logger.Warn("ignoring duplicate episode file", slog.String("file", name))
	}

	plan := syncer.Reconcile(episodes, scan.Entries)
	for _, uuid := range plan.Duplicates {
		logger.Warn("duplicate episode in queue, keeping first occurrence", slog.String("uuid", uuid))
	}

	if plan.Empty() {
		logger.Info("library already in sync")
		fmt.Println("Nothing to do.")

		return nil
	}

	logger.Info("sync plan ready",
		slog.Int("delete", len(plan.Delete)),
		slog.Int("rename", len(plan.Rename)),
		slog.Int("download", len(plan.Download)),
	)

	executor := syncer.NewExecutor(lib, fetch.NewClient(), cfg.MaxConcurrentDownloads, logger)
	report := executor.Execute(ctx, plan)

	if cfg.WriteTags {
		tagDownloads(lib, report, podcasts, logger)
	}

	printSummary(report)

	return ctx.Err()
}

// promptPassword reads the account password from the terminal when
// POCKETCASTS_PASSWORD is unset. Refuses to proceed without a terminal
// so scripted runs fail loudly instead of hanging.
func promptPassword(email string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("POCKETCASTS_PASSWORD is not set and stdin is not a terminal")
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", email)

	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	return string(password), nil
}

// authenticate signs in to Pocket Casts, preferring the cached token.
// The podcast list doubles as the token probe and as the album lookup
// for tagging.
func authenticate(ctx context.Context, client *pocketcasts.Client, cfg *config.Config, appState *state.State, logger *slog.Logger) (string, map[string]string, error) {
	if appState != nil {
		if token := appState.Token(); token != "" {
			logger.Debug("trying cached token")

			podcasts, err := client.Podcasts(ctx, token)
			if err == nil {
				logger.Info("authenticated with cached token")

				return token, podcasts, nil
			}
			logger.Debug("cached token expired, signing in fresh")
		}
	}

	logger.Info("signing in", slog.String("email", cfg.Email))

	token, err := client.Login(ctx, cfg.Email, cfg.Password)
	if err != nil {
		return "", nil, fmt.Errorf("signing in: %w", err)
	}

	if appState != nil {
		if err := appState.SetToken(token); err != nil {
			logger.Warn("failed to save token", slog.String("error", err.Error()))
		}
	}

	podcasts, err := client.Podcasts(ctx, token)
	if err != nil {
		return "", nil, fmt.Errorf("listing podcasts: %w", err)
	}

	return token, podcasts, nil
}

// tagDownloads writes ID3 tags onto the files that just landed.
// Tagging failures are logged but never fail the run; the audio is
// already safely on disk.
func tagDownloads(lib *media.Library, report *syncer.Report, podcasts map[string]string, logger *slog.Logger) {
	tagger := audio.NewTagger(podcasts)

	for _, outcome := range report.Downloaded() {
		path, err := lib.Path(outcome.Name)
		if err != nil {
			logger.Warn("skipping tags", slog.String("file", outcome.Name), slog.String("error", err.Error()))

			continue
		}

		if !audio.Taggable(path) {
			continue
		}

		if err := tagger.Tag(path, outcome.Episode); err != nil {
			logger.Warn("failed to write tags", slog.String("file", outcome.Name), slog.String("error", err.Error()))
		}
	}
}

func printSummary(report *syncer.Report) {
	failed := report.Failed()

	fmt.Printf("Deleted %d, renamed %d, downloaded %d", report.Deleted, report.Renamed, len(report.Downloaded()))

	if len(failed) > 0 {
		fmt.Printf(", %d failed", len(failed))
	}
	if report.FileFailures > 0 {
		fmt.Printf(" (%d file operations failed)", report.FileFailures)
	}
	fmt.Println(".")

	for _, outcome := range failed {
		reason := outcome.Err.Error()
		if errors.Is(outcome.Err, context.Canceled) {
			reason = "cancelled"
		}
		fmt.Printf("  failed: %s (%s)\n", outcome.Episode.Title, reason)
	}
}
