package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/availability"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/board"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/calendar"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/fixture"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/timeline"
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "boardctl",
		Short:        "Inspect day boards offline",
		SilenceUsage: true,
	}
	root.PersistentFlags().Int("start-hour", timeline.DefaultStartHour, "First hour of the grid")
	root.PersistentFlags().Int("end-hour", timeline.DefaultEndHour, "Hour the grid closes (exclusive)")
	root.PersistentFlags().Int("step", timeline.DefaultStepMinutes, "Slot length in minutes")

	root.AddCommand(gridCmd())
	root.AddCommand(dateCmd())
	root.AddCommand(showCmd())
	return root
}

func gridFlags(cmd *cobra.Command) (timeline.Grid, error) {
	start, _ := cmd.Flags().GetInt("start-hour")
	end, _ := cmd.Flags().GetInt("end-hour")
	step, _ := cmd.Flags().GetInt("step")
	return timeline.NewGrid(start, end, step)
}

func gridCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grid",
		Short: "Print the slot labels of the grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := gridFlags(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range g.Slots {
				fmt.Fprintf(out, "%s\t%d\n", s.Label, s.Minutes)
			}
			fmt.Fprintf(out, "%d slots, window %d+%d minutes\n", g.Len(), g.WindowStart(), g.WindowTotal())
			return nil
		},
	}
}

func dateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "date",
		Short: "Step a date forward or back",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := dateFlag(cmd)
			if err != nil {
				return err
			}
			days, _ := cmd.Flags().GetInt("days")
			next := d.AddDays(days)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", next, next.Weekday())
			return nil
		},
	}
	cmd.Flags().String("date", "", "Start date (YYYY-MM-DD, default today)")
	cmd.Flags().Int("days", 1, "Days to move, negative for backwards")
	return cmd
}

func dateFlag(cmd *cobra.Command) (calendar.Date, error) {
	raw, _ := cmd.Flags().GetString("date")
	if raw == "" {
		return calendar.Today(time.Now()), nil
	}
	return calendar.Parse(raw)
}

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Render one date of a fixture file as a text board",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("fixture")
			axisRaw, _ := cmd.Flags().GetString("axis")
			if path == "" {
				return fmt.Errorf("--fixture is required")
			}
			axis, err := board.ParseAxis(axisRaw)
			if err != nil {
				return err
			}
			d, err := dateFlag(cmd)
			if err != nil {
				return err
			}
			g, err := gridFlags(cmd)
			if err != nil {
				return err
			}
			doc, err := fixture.Load(path)
			if err != nil {
				return err
			}

			snap, err := board.NewLoader(doc, doc, doc, nil).Load(cmd.Context(), d)
			if err != nil {
				return err
			}
			render(cmd.OutOrStdout(), board.Build(g, snap, axis))
			return nil
		},
	}
	cmd.Flags().String("fixture", "", "Path to a board fixture JSON file")
	cmd.Flags().String("date", "", "Date to show (YYYY-MM-DD, default today)")
	cmd.Flags().String("axis", string(board.AxisStaff), "Row axis: staff or bed")
	return cmd
}

var stateGlyph = map[availability.State]byte{
	availability.StateHolidayBlocked: 'x',
	availability.StateOutOfShift:     '.',
	availability.StateOccupied:       '#',
	availability.StateFree:           '-',
}

func render(w io.Writer, v board.View) {
	width := len("resource")
	for _, row := range v.Rows {
		width = max(width, len(row.Name))
	}

	fmt.Fprintf(w, "%s (%s) axis=%s\n", v.Date, v.Date.Weekday(), v.Axis)
	hours := []byte(strings.Repeat(" ", len(v.Header.Cells)))
	for i, c := range v.Header.Cells {
		if strings.HasSuffix(c.Slot.Label, ":00") {
			copy(hours[i:], c.Slot.Label[:2])
		}
	}
	fmt.Fprintf(w, "%-*s  %s\n", width, "resource", hours)

	for _, row := range v.Rows {
		cells := make([]byte, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = stateGlyph[c.State]
		}
		fmt.Fprintf(w, "%-*s  %s\n", width, row.Name, cells)
	}

	fmt.Fprintln(w)
	for _, row := range v.Rows {
		for _, p := range row.Bookings {
			fmt.Fprintf(w, "%s %s-%s %-9s %s (left %.2f%% width %.2f%%)\n",
				row.Resource.ID, p.Start, p.End, p.Status, p.Title, p.LeftPercent, p.WidthPercent)
		}
	}
	for _, c := range v.Conflicts {
		fmt.Fprintf(w, "conflict on %s: %s overlaps %s\n", c.ResourceID, c.FirstID, c.SecondID)
	}
	if n := v.SkippedCount(); n > 0 {
		fmt.Fprintf(w, "%d record(s) skipped\n", n)
		for _, s := range v.Skipped {
			fmt.Fprintf(w, "  %s %s: %s\n", s.Kind, s.ID, s.Reason)
		}
	}
	for _, e := range v.FetchErrors {
		fmt.Fprintf(w, "fetch error: %s\n", e)
	}
}
