package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gwillem/clawgantry/pkg/journal"
)

type HistoryCommand struct {
	Limit   int    `short:"n" long:"limit" default:"20" description:"Number of attempts to show"`
	Journal string `long:"journal" env:"CLAW_JOURNAL" description:"SQLite journal file (overrides config)"`
}

func (c *HistoryCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := cfg.Hardware.Journal
	if c.Journal != "" {
		path = c.Journal
	}
	if path == "" {
		return errors.New("no journal configured; set hardware.journal or pass --journal")
	}

	j, err := journal.Open(path)
	if err != nil {
		return err
	}
	defer j.Close()

	ctx := context.Background()
	entries, err := j.Recent(ctx, c.Limit)
	if err != nil {
		return err
	}
	stats, err := j.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render("Attempts"))
	fmt.Println(dimStyle.Render(path))
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No attempts recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Started.Format("2006-01-02 15:04:05"),
			e.ID,
			e.Mode,
			e.Card,
			e.Exit,
			strconv.Itoa(e.Sensed),
			strconv.Itoa(e.Drop),
			strconv.Itoa(e.Distance),
			e.Outcome,
		})
	}

	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	tableCellStyle := lipgloss.NewStyle().Padding(0, 1)
	tableWinStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Padding(0, 1)
	tableLoseStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Headers("Started", "ID", "Mode", "Card", "Exit", "Sensed", "Drop", "Distance", "Outcome").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == 8 && row >= 0 && row < len(entries) {
				if entries[row].Outcome == "win" {
					return tableWinStyle
				}
				return tableLoseStyle
			}
			return tableCellStyle
		})
	fmt.Println(t.Render())

	rate := 0.0
	if stats.Attempts > 0 {
		rate = float64(stats.Wins) / float64(stats.Attempts) * 100
	}
	fmt.Printf("\n%d attempts, %d wins (%.0f%%)\n", stats.Attempts, stats.Wins, rate)
	return nil
}
