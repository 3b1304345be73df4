package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Establish a session, solving a bot check if the platform asks for one",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := wire.Start(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch {
			case out.Reused:
				fmt.Fprintf(w, "Session %s already established.\n", out.SessionID)
			case out.Attempts == 0:
				fmt.Fprintf(w, "Session %s established.\n", out.SessionID)
			default:
				fmt.Fprintf(w, "Session %s established after %d challenge(s).\n", out.SessionID, out.Attempts)
			}
			return nil
		},
	}
}
