package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/issuelet/issuelet/pkg/issues"
	"github.com/issuelet/issuelet/pkg/logger"
	"github.com/issuelet/issuelet/pkg/presenter"
)

// WatchConfig holds configuration for the watch command
type WatchConfig struct {
	DebounceTime int
}

// NewWatchConfig creates a new WatchConfig with default values
func NewWatchConfig() *WatchConfig {
	return &WatchConfig{
		DebounceTime: 500,
	}
}

// Validate validates the WatchConfig and returns an error if invalid
func (c *WatchConfig) Validate() error {
	if c.DebounceTime < 0 {
		return errors.Errorf("debounce time cannot be negative: %d", c.DebounceTime)
	}
	return nil
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the issues root and report lifecycle events",
	Long: `Continuously monitor the issues root and report issue creation, artifact
additions, and removals (archival) as they happen. Press Ctrl-C to stop.`,
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		watchConfig := getWatchConfigFromFlags(cmd)
		if err := watchConfig.Validate(); err != nil {
			presenter.Error(err, "Invalid watch configuration")
			os.Exit(1)
		}

		store := getStore(getConfig())
		root := store.IssuesDir()

		if _, err := os.Stat(root); err != nil {
			presenter.Error(errors.Errorf("issues root '%s' does not exist", root), "Nothing to watch")
			os.Exit(1)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			presenter.Error(err, "Failed to create filesystem watcher")
			os.Exit(1)
		}
		defer watcher.Close()

		if err := watcher.Add(root); err != nil {
			presenter.Error(err, "Failed to watch issues root")
			os.Exit(1)
		}

		// watch existing issue directories for artifact changes
		entries, err := os.ReadDir(root)
		if err != nil {
			presenter.Error(err, "Failed to read issues root")
			os.Exit(1)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				if err := watcher.Add(filepath.Join(root, entry.Name())); err != nil {
					logger.G(ctx).WithError(err).WithField("dir", entry.Name()).Warn("failed to watch issue directory")
				}
			}
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		presenter.Info(fmt.Sprintf("Watching %s (Ctrl-C to stop)", root))

		debouncer := newEventDebouncer(time.Duration(watchConfig.DebounceTime) * time.Millisecond)

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				key := event.Op.String() + " " + event.Name
				if !debouncer.allow(key, time.Now()) {
					continue
				}

				handleWatchEvent(watcher, root, event)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.G(ctx).WithError(err).Warn("watcher error")

			case <-sigCh:
				presenter.Info("Stopping watch")
				return

			case <-ctx.Done():
				return
			}
		}
	},
}

// eventDebouncer suppresses repeats of the same event key within a window.
// Entries older than the window are evicted on each call so the map stays
// bounded on long-running watches.
type eventDebouncer struct {
	window   time.Duration
	lastSeen map[string]time.Time
}

func newEventDebouncer(window time.Duration) *eventDebouncer {
	return &eventDebouncer{
		window:   window,
		lastSeen: make(map[string]time.Time),
	}
}

func (d *eventDebouncer) allow(key string, now time.Time) bool {
	for k, t := range d.lastSeen {
		if now.Sub(t) >= d.window {
			delete(d.lastSeen, k)
		}
	}

	if last, seen := d.lastSeen[key]; seen && now.Sub(last) < d.window {
		return false
	}
	d.lastSeen[key] = now
	return true
}

// handleWatchEvent classifies one filesystem event against the store layout
// and reports it
func handleWatchEvent(watcher *fsnotify.Watcher, root string, event fsnotify.Event) {
	rel, err := filepath.Rel(root, event.Name)
	if err != nil {
		return
	}
	parts := splitPath(rel)

	switch len(parts) {
	case 1:
		// an entry directly under the issues root: an issue directory
		name := parts[0]
		switch {
		case event.Op.Has(fsnotify.Create):
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				_ = watcher.Add(event.Name)
				presenter.Info(fmt.Sprintf("issue directory created: %s", name))
			}
		case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
			presenter.Info(fmt.Sprintf("issue removed: %s", name))
		}
	case 2:
		// a file inside an issue directory
		issueName, fileName := parts[0], parts[1]
		if !issues.IsArtifact(fileName) {
			return
		}
		switch {
		case event.Op.Has(fsnotify.Create):
			presenter.Info(fmt.Sprintf("artifact added: %s/%s", issueName, fileName))
		case event.Op.Has(fsnotify.Write):
			presenter.Info(fmt.Sprintf("artifact updated: %s/%s", issueName, fileName))
		case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
			presenter.Info(fmt.Sprintf("artifact removed: %s/%s", issueName, fileName))
		}
	}
}

func splitPath(rel string) []string {
	var parts []string
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	return parts
}

func init() {
	defaults := NewWatchConfig()
	watchCmd.Flags().Int("debounce", defaults.DebounceTime, "Debounce time in milliseconds for duplicate events")
}

func getWatchConfigFromFlags(cmd *cobra.Command) *WatchConfig {
	config := NewWatchConfig()
	if debounce, err := cmd.Flags().GetInt("debounce"); err == nil {
		config.DebounceTime = debounce
	}
	return config
}
