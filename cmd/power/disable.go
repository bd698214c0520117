package power

import (
	"github.com/clusterhack/argononed/internal/ui"
	"github.com/spf13/cobra"
)

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable reboot on the power button, shutdown pulses still shut the system down",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient().SetPowerControlEnabled(false); err != nil {
			return err
		}
		ui.Success("Power button actions disabled")
		return nil
	},
}

func init() {
	Command.AddCommand(disableCmd)
}
