package fan

import (
	"github.com/clusterhack/argononed/internal/ui"
	"github.com/spf13/cobra"
)

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable automatic fan control",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient().SetFanControlEnabled(true); err != nil {
			return err
		}
		ui.Success("Automatic fan control enabled")
		return nil
	},
}

func init() {
	Command.AddCommand(enableCmd)
}
