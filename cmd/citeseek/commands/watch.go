// ABOUTME: CLI command that watches a directory and ingests new or changed files
// ABOUTME: Uses fsnotify with a short debounce so editors writing in chunks settle first
package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	watchOwner    ownerFlags
	watchDebounce time.Duration
)

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <directory>",
		Short: "Watch a directory and ingest files as they appear",
		Long: `Watch a directory and automatically ingest files that are created
or modified in it. Runs until interrupted.

Examples:
  citeseek watch ./inbox
  citeseek watch --user alice --debounce 5s ~/Documents/papers`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().StringVar(&watchOwner.userID, "user", "", "Owner user id for ingested files")
	cmd.Flags().StringVar(&watchOwner.sessionID, "session", "", "Owner session id for ingested files")
	cmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "Wait after the last write before ingesting")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := args[0]
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a watchable directory", root)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, true)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(root); err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (ctrl-c to stop)\n", root)
	}

	// Debounce per path so a file still being written is ingested once,
	// after writes stop
	var mu sync.Mutex
	timers := map[string]*time.Timer{}

	ingestLater := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[path]; ok {
			t.Stop()
		}
		timers[path] = time.AfterFunc(watchDebounce, func() {
			mu.Lock()
			delete(timers, path)
			mu.Unlock()

			doc, err := a.ingestor.IngestFile(ctx, path, watchOwner.scope())
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"path":  path,
					"error": err.Error(),
				}).Warn("watch ingestion failed")
				return
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Ingested %s (%d chunks) -> %s\n", doc.FileName, doc.ChunkCount, doc.ID)
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
				continue
			}
			ingestLater(event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logrus.WithField("error", err.Error()).Warn("watcher error")
		}
	}
}
