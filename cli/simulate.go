package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mobile-next/windowthrottle/commands"
	"github.com/mobile-next/windowthrottle/throttle"
	"github.com/mobile-next/windowthrottle/utils"
	"github.com/spf13/cobra"
)

// editors write a file in several steps; wait for them to settle before rerunning
const watchDebounce = 100 * time.Millisecond

var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario.yaml>",
	Short: "Replay a scenario of raw events on a virtual clock",
	Long: `Replays a YAML timeline of raw resize, scroll and orientationchange events
against the engine on a virtual clock and prints every notification as one JSON
line, stamped with the virtual time in milliseconds.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		path := args[0]
		out := cmd.OutOrStdout()
		if !watchScenario {
			return runSimulation(out, path, cfg.Throttle)
		}

		if err := runSimulation(out, path, cfg.Throttle); err != nil {
			utils.Error("%v", err)
		}

		watcher, abs, err := newScenarioWatcher(path)
		if err != nil {
			return err
		}
		defer watcher.Close()

		utils.Info("Watching %s for changes", abs)
		watchScenarioFile(cmd.Context(), watcher, abs, func() {
			utils.Info("Scenario changed, replaying")
			if err := runSimulation(out, path, cfg.Throttle); err != nil {
				utils.Error("%v", err)
			}
		})
		return nil
	},
}

// runSimulation loads the scenario and writes one JSON line per notification
func runSimulation(out io.Writer, path string, defaults throttle.Options) error {
	scenario, err := commands.LoadScenario(path)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(out)
	var writeErr error
	response, err := commands.RunScenario(scenario, defaults, func(n commands.SimulatedNotification) {
		if writeErr == nil {
			writeErr = encoder.Encode(n)
		}
	})
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	if writeErr != nil {
		return fmt.Errorf("failed to write notification: %w", writeErr)
	}

	for _, message := range response.Errors {
		utils.Warn("%s", message)
	}
	utils.Verbose("simulation finished at %dms with %d notifications", response.Elapsed, len(response.Notifications))
	return nil
}

// newScenarioWatcher watches the directory holding path, so editors that
// replace the file are still seen.
func newScenarioWatcher(path string) (*fsnotify.Watcher, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, "", fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, "", fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	return watcher, abs, nil
}

// watchScenarioFile calls run after changes to abs settle, until ctx is done
// or the watcher is closed.
func watchScenarioFile(ctx context.Context, watcher *fsnotify.Watcher, abs string, run func()) {
	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			reload = time.After(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			utils.Warn("scenario watch error: %v", err)
		case <-reload:
			reload = nil
			run()
		}
	}
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&configPath, "config", "", "Path to an ini file with a [throttle] section")
	simulateCmd.Flags().BoolVar(&watchScenario, "watch", false, "Replay again whenever the scenario file changes")
}
