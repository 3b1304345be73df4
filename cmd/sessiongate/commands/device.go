package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func deviceCmd() *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "device",
		Short: "Show the device identity, creating it if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ensure := wire.Device.EnsureDeviceIdentity
			if reset {
				ensure = wire.Device.ResetDeviceIdentity
			}
			id, err := ensure()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Device: %s\n", id.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "replace the device identity with a new one")
	return cmd
}
