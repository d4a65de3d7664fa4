package cli

import (
	"github.com/spf13/cobra"
)

func newRankingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Show the top players by XP",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, closeStorage, err := newApp()
			if err != nil {
				return err
			}
			defer closeStorage()

			svc, err := app.Locator.Get(cmd.Context())
			if err != nil {
				return err
			}

			entries, err := svc.GetTopRanking(cmd.Context())
			if err != nil {
				return err
			}

			out := NewOutput(outputFormat)
			if len(entries) == 0 {
				out.PrintMessage("no players yet")
				return nil
			}
			out.Print(entries)
			return nil
		},
	}

	return cmd
}
