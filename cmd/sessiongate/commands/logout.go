package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func logoutCmd() *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "End the session; the device identity is kept",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Logout(cmd.Context(), local); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "forget the session without contacting the platform")
	return cmd
}
