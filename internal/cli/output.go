package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/codequest-game/codequest/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case *model.User:
		o.printUser(v)
	case *model.RoundResult:
		o.printRoundResult(v)
	case []*model.RankingEntry:
		o.printRanking(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printUser(u *model.User) {
	fmt.Printf("User:     %s (id %d)\n", u.Username, u.ID)
	fmt.Printf("Level:    %d\n", u.Level)
	fmt.Printf("XP:       %d (%d to next level)\n", u.XP, u.XPToNextLevel())
}

func (o *Output) printRoundResult(r *model.RoundResult) {
	fmt.Printf("Score:     %d\n", r.Score)
	fmt.Printf("XP earned: %d\n", r.XPEarned)
	fmt.Printf("Correct:   %d\n", r.CorrectCount)
	fmt.Printf("Time:      %ds\n", r.TotalTimeSec)
}

func (o *Output) printRanking(entries []*model.RankingEntry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tUSER\tXP\tLEVEL\tROUNDS\tAVG SCORE\tLAST PLAYED")
	for i, e := range entries {
		lastPlayed := "-"
		if !e.LastRoundAt.IsZero() {
			lastPlayed = e.LastRoundAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%.1f\t%s\n",
			i+1, e.Username, e.XP, e.Level, e.RoundsPlayed, e.AvgScore, lastPlayed)
	}
	_ = w.Flush()
}
