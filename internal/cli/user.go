package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
	}

	cmd.AddCommand(newUserCreateCmd())
	cmd.AddCommand(newUserStatsCmd())
	cmd.AddCommand(newUserRenameCmd())
	cmd.AddCommand(newUserResetXPCmd())
	cmd.AddCommand(newUserDeleteCmd())

	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
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

			id, err := svc.CreateUser(cmd.Context(), name)
			if err != nil {
				return err
			}

			NewOutput(outputFormat).PrintMessage(fmt.Sprintf("created user %q (id %d)", name, id))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Username (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newUserStatsCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show a user's XP and level",
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

			id, err := svc.GetUserID(cmd.Context(), name)
			if err != nil {
				return err
			}

			user, err := svc.GetUserStats(cmd.Context(), id)
			if err != nil {
				return err
			}

			NewOutput(outputFormat).Print(user)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Username (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newUserRenameCmd() *cobra.Command {
	var name, newName string

	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Change a user's username",
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

			id, err := svc.GetUserID(cmd.Context(), name)
			if err != nil {
				return err
			}

			if err := svc.UpdateUsername(cmd.Context(), id, newName); err != nil {
				return err
			}

			NewOutput(outputFormat).PrintMessage(fmt.Sprintf("renamed %q to %q", name, newName))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Current username (required)")
	cmd.Flags().StringVar(&newName, "new-name", "", "New username (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("new-name")

	return cmd
}

func newUserResetXPCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "reset-xp",
		Short: "Reset a user's XP and level",
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

			id, err := svc.GetUserID(cmd.Context(), name)
			if err != nil {
				return err
			}

			if err := svc.ResetUserXP(cmd.Context(), id); err != nil {
				return err
			}

			NewOutput(outputFormat).PrintMessage(fmt.Sprintf("reset xp for %q", name))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Username (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newUserDeleteCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a user and all their rounds",
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

			id, err := svc.GetUserID(cmd.Context(), name)
			if err != nil {
				return err
			}

			if err := svc.DeleteUser(cmd.Context(), id); err != nil {
				return err
			}

			NewOutput(outputFormat).PrintMessage(fmt.Sprintf("deleted user %q", name))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Username (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
