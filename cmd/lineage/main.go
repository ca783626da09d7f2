// Command lineage inspects the decision archive: recent decisions, game
// events, and trait evolution history.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/talgya/devscape/internal/lineage"
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	styleID     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	styleWhen   = lipgloss.NewStyle().Foreground(lipgloss.Color("180"))
)

func main() {
	dbPath := flag.String("db", "lineage.db", "path to the lineage archive")
	limit := flag.Int("n", 20, "rows per table")
	trait := flag.String("trait", "", "filter trait history to one trait id")
	flag.Parse()

	store, err := lineage.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open archive: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := printActions(store, *limit); err != nil {
		fmt.Fprintf(os.Stderr, "lineage: %v\n", err)
		os.Exit(1)
	}
	if err := printEvents(store, *limit); err != nil {
		fmt.Fprintf(os.Stderr, "events: %v\n", err)
		os.Exit(1)
	}
	if err := printTraits(store, *trait, *limit); err != nil {
		fmt.Fprintf(os.Stderr, "traits: %v\n", err)
		os.Exit(1)
	}
}

func printActions(store *lineage.Store, limit int) error {
	rows, err := store.RecentActions(limit)
	if err != nil {
		return err
	}
	total, _ := store.CountActions()

	fmt.Println(styleHeader.Render(fmt.Sprintf("── decisions (%d total) ──", total)))
	for _, r := range rows {
		fmt.Printf("%s %s %s by %s  %s\n",
			styleID.Render(fmt.Sprintf("#%d", r.ID)),
			styleWhen.Render(since(r.Timestamp)),
			r.ActionType, r.ContributorID, r.Details)
	}
	fmt.Println()
	return nil
}

func printEvents(store *lineage.Store, limit int) error {
	rows, err := store.RecentEvents(limit)
	if err != nil {
		return err
	}

	fmt.Println(styleHeader.Render("── events ──"))
	for _, r := range rows {
		fmt.Printf("%s %s %s (%s)  %s\n",
			styleID.Render(fmt.Sprintf("#%d", r.ID)),
			styleWhen.Render(since(r.Timestamp)),
			r.EventType, r.RelatedEntityID, r.Details)
	}
	fmt.Println()
	return nil
}

func printTraits(store *lineage.Store, traitID string, limit int) error {
	rows, err := store.TraitHistory(traitID, limit)
	if err != nil {
		return err
	}

	fmt.Println(styleHeader.Render("── trait evolution ──"))
	for _, r := range rows {
		fmt.Printf("%s %s %s: level %d -> %d  %s\n",
			styleID.Render(fmt.Sprintf("#%d", r.ID)),
			styleWhen.Render(since(r.Timestamp)),
			r.TraitID, r.OldLevel, r.NewLevel, r.Details)
	}
	return nil
}

// since renders an archive timestamp as a relative time ("3 minutes ago").
// Timestamps come back in SQLite's UTC text format.
func since(ts string) string {
	t, err := time.ParseInLocation(lineage.SQLiteTimeFormat, ts, time.UTC)
	if err != nil {
		return ts
	}
	return humanize.Time(t)
}
