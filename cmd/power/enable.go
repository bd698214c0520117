package power

import (
	"github.com/clusterhack/argononed/internal/ui"
	"github.com/spf13/cobra"
)

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable power button actions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient().SetPowerControlEnabled(true); err != nil {
			return err
		}
		ui.Success("Power button actions enabled")
		return nil
	},
}

func init() {
	Command.AddCommand(enableCmd)
}
