package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session and device identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := wire.Status()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if st.HasDevice {
				fmt.Fprintf(w, "Device:  %s\n", st.Device.ID)
			} else {
				fmt.Fprintln(w, "Device:  none")
			}
			if st.HasSession {
				fmt.Fprintf(w, "Session: %s", st.Session.ID)
				if !st.Session.CreatedAt.IsZero() {
					fmt.Fprintf(w, " (age %s)", st.Session.Age(time.Now()).Round(time.Second))
				}
				fmt.Fprintln(w)
			} else {
				fmt.Fprintln(w, "Session: none")
			}
			fmt.Fprintf(w, "Solvers: %v\n", st.SolverTypes)
			return nil
		},
	}
}
