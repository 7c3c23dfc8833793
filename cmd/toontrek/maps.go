package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/toontrek/internal/registry"
)

var mapsCmd = &cobra.Command{
	Use:   "maps",
	Short: "List all available maps",
	Long:  `Shows a table of every map registered in toontrek.`,
	Args:  cobra.NoArgs,
	RunE:  runMaps,
}

var mapsShowCmd = &cobra.Command{
	Use:   "show <map>",
	Short: "Show every location on a map and its tunnels",
	Long: `Lists the locations of a map with the tunnels leaving each one.

Examples:
  toontrek maps show toontown
  toontrek maps show toontown-classic`,
	Args: cobra.ExactArgs(1),
	RunE: runMapsShow,
}

func init() {
	mapsCmd.AddCommand(mapsShowCmd)
}

// newTable returns a table styled for w. Pipes get plain text.
func newTable(w io.Writer, headers ...string) *table.Table {
	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Foreground(lipgloss.Color("240"))).
		BorderHeader(true).
		BorderRow(false).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}

func runMaps(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	maps := registry.List()

	if len(maps) == 0 {
		fmt.Fprintln(out, "No maps available.")
		return nil
	}

	t := newTable(out, "ID", "Title", "Locations", "Playgrounds", "Tunnels")
	for _, info := range maps {
		m, err := registry.Create(info.ID)
		if err != nil {
			return err
		}
		tunnels := "two-way"
		if !m.IsSymmetric() {
			tunnels = "one-way"
		}
		t.Row(info.ID, info.Title,
			fmt.Sprintf("%d", m.Len()),
			fmt.Sprintf("%d", len(m.Playgrounds())),
			tunnels,
		)
	}

	fmt.Fprintln(out, t.Render())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run 'toontrek play <id>' to play a map.")
	return nil
}

func runMapsShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	m, err := registry.Create(args[0])
	if err != nil {
		return fmt.Errorf("%w (run 'toontrek maps' to see available maps)", err)
	}

	t := newTable(out, "Location", "Kind", "Tunnels")
	for _, n := range m.Nodes() {
		kind := "street"
		if n.IsPlayground() {
			kind = "playground"
		}
		names := make([]string, 0, len(n.Neighbors()))
		for _, nb := range n.Neighbors() {
			names = append(names, nb.Name())
		}
		t.Row(n.Name(), kind, strings.Join(names, ", "))
	}

	fmt.Fprintf(out, "%s (start: %s)\n", m.Name(), m.Start().Name())
	fmt.Fprintln(out, t.Render())
	return nil
}
