package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/codequest-game/codequest/internal/model"
)

func newPlayCmd() *cobra.Command {
	var username string
	var difficulty int

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a round of trivia",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, closeStorage, err := newApp()
			if err != nil {
				return err
			}
			defer closeStorage()

			ctx := cmd.Context()
			svc, err := app.Locator.Get(ctx)
			if err != nil {
				return err
			}

			userID, err := svc.GetUserID(ctx, username)
			if err != nil {
				return fmt.Errorf("look up %q (create with 'codequest user create'): %w", username, err)
			}

			roundID, err := svc.StartNewRound(ctx, userID)
			if err != nil {
				return err
			}

			questions, err := svc.GetQuestionsForRound(ctx, difficulty)
			if err != nil {
				return err
			}
			if len(questions) == 0 {
				return fmt.Errorf("no questions available at difficulty %d", difficulty)
			}

			reader := bufio.NewReader(os.Stdin)
			for i, question := range questions {
				fmt.Printf("\n[%d/%d] %s\n", i+1, len(questions), question.Text)
				for j, choice := range question.Choices {
					fmt.Printf("  %d) %s\n", j+1, choice.Text)
				}

				choice, elapsed, err := promptChoice(reader, len(question.Choices))
				if err != nil {
					return err
				}

				err = svc.SubmitAnswer(ctx, roundID, question.ID, question.Choices[choice].ID, elapsed)
				if err != nil {
					return err
				}
			}

			result, err := svc.CompleteRound(ctx, roundID)
			if err != nil {
				return err
			}

			user, err := svc.GetUserStats(ctx, userID)
			if err != nil {
				return err
			}

			out := NewOutput(outputFormat)
			if outputFormat == "json" {
				out.Print(map[string]any{
					"result": result,
					"user":   user,
				})
				return nil
			}
			fmt.Println()
			out.Print(result)
			fmt.Println()
			out.Print(user)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "Username to play as (required)")
	cmd.Flags().IntVar(&difficulty, "difficulty", model.DifficultyMin, "Difficulty tier (1-3)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// promptChoice reads a 1-based choice number from the reader and returns
// the 0-based index plus the whole seconds spent answering.
func promptChoice(reader *bufio.Reader, numChoices int) (int, int, error) {
	started := time.Now()
	for {
		fmt.Print("Answer: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return 0, 0, fmt.Errorf("read answer: %w", err)
		}

		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || n < 1 || n > numChoices {
			fmt.Printf("Enter a number between 1 and %d\n", numChoices)
			continue
		}
		return n - 1, int(time.Since(started).Seconds()), nil
	}
}
