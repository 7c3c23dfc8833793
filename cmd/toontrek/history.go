package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/toontrek/internal/platform/tui"
	"github.com/vovakirdan/toontrek/internal/registry"
	"github.com/vovakirdan/toontrek/internal/storage"
)

var (
	flagHistoryMap   string
	flagHistoryLimit int
	flagHistoryRun   string
	flagHistoryClear bool
	flagHistoryTUI   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded runs",
	Long: `Display recorded runs. Without --map the most recent runs across all
maps are listed; with --map the longest runs on that map are listed along
with its statistics.

Examples:
  toontrek history
  toontrek history --map toontown --limit 5
  toontrek history --run 1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed
  toontrek history --map toontown --clear
  toontrek history --tui`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&flagHistoryMap, "map", "", "Show the longest runs and stats for one map")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 10, "Number of runs to show")
	historyCmd.Flags().StringVar(&flagHistoryRun, "run", "", "Show a single run by ID")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete every run recorded for --map")
	historyCmd.Flags().BoolVar(&flagHistoryTUI, "tui", false, "Browse runs in the terminal UI")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if flagHistoryMap != "" && !registry.Exists(flagHistoryMap) {
		return fmt.Errorf("unknown map %q (run 'toontrek maps' to see available maps)", flagHistoryMap)
	}
	if flagHistoryClear && flagHistoryMap == "" {
		return errors.New("--clear needs --map")
	}

	store, err := storage.Open(env.DBPath)
	if err != nil {
		return fmt.Errorf("opening run ledger: %w", err)
	}
	defer store.Close()

	out := cmd.OutOrStdout()

	switch {
	case flagHistoryTUI:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("--tui needs a terminal")
		}
		_, err := tui.RunHistory(store)
		return err

	case flagHistoryRun != "":
		return showRun(out, store, flagHistoryRun)

	case flagHistoryClear:
		if err := store.ClearRuns(flagHistoryMap); err != nil {
			return err
		}
		fmt.Fprintf(out, "Cleared runs for %s.\n", flagHistoryMap)
		return nil

	case flagHistoryMap != "":
		return showMapHistory(out, store, flagHistoryMap, flagHistoryLimit)

	default:
		return showRecent(out, store, flagHistoryLimit)
	}
}

func showRecent(out io.Writer, store *storage.Store, limit int) error {
	runs, err := store.RecentRuns(limit)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Recent runs")
	fmt.Fprintln(out)
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Run 'toontrek play' to start one!")
		return nil
	}

	t := newTable(out, "Run", "Map", "Rounds", "Moves", "Ended", "Player", "Date")
	for _, r := range runs {
		t.Row(shortID(r.ID), r.MapID,
			fmt.Sprintf("%d", r.Rounds),
			fmt.Sprintf("%d", r.Moves),
			r.Outcome,
			r.Player,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	fmt.Fprintln(out, t.Render())
	return nil
}

func showMapHistory(out io.Writer, store *storage.Store, mapID string, limit int) error {
	stats, err := store.Stats(mapID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Longest runs - %s\n\n", mapID)
	if stats.Runs == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Run 'toontrek play %s' to start one!\n", mapID)
		return nil
	}

	runs, err := store.LongestRuns(mapID, limit)
	if err != nil {
		return err
	}

	t := newTable(out, "#", "Rounds", "Moves", "Pies", "Laff", "Ended", "Player", "Date")
	for i, r := range runs {
		t.Row(fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", r.Rounds),
			fmt.Sprintf("%d", r.Moves),
			fmt.Sprintf("%d", r.PiesLeft),
			fmt.Sprintf("%d", r.LaffLeft),
			r.Outcome,
			r.Player,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	fmt.Fprintln(out, t.Render())

	outcomes := make([]string, 0, len(stats.Outcomes))
	for outcome, n := range stats.Outcomes {
		outcomes = append(outcomes, fmt.Sprintf("%s %d", outcome, n))
	}
	sort.Strings(outcomes)

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Runs: %d  Longest: %d rounds  Average: %.1f rounds\n", stats.Runs, stats.Longest, stats.AvgRounds)
	fmt.Fprintf(out, "Endings: %s\n", strings.Join(outcomes, ", "))
	if !stats.LastPlayed.IsZero() {
		fmt.Fprintf(out, "Last played: %s\n", stats.LastPlayed.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func showRun(out io.Writer, store *storage.Store, id string) error {
	run, err := store.RunByID(id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no run with ID %q", id)
	}

	t := newTable(out, "Field", "Value")
	t.Row("Run", run.ID)
	t.Row("Map", run.MapID)
	t.Row("Seed", fmt.Sprintf("%d", run.Seed))
	t.Row("Ended", run.Outcome)
	t.Row("Rounds", fmt.Sprintf("%d", run.Rounds))
	t.Row("Moves", fmt.Sprintf("%d", run.Moves))
	t.Row("Pies left", fmt.Sprintf("%d", run.PiesLeft))
	t.Row("Laff left", fmt.Sprintf("%d", run.LaffLeft))
	t.Row("Player", run.Player)
	t.Row("Date", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintln(out, t.Render())

	fmt.Fprintf(out, "\nReplay with: toontrek play %s --seed %d\n", run.MapID, run.Seed)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
