package fan

import (
	"github.com/clusterhack/argononed/internal/ui"
	"github.com/spf13/cobra"
)

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable automatic fan control, the fan keeps its last speed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient().SetFanControlEnabled(false); err != nil {
			return err
		}
		ui.Success("Automatic fan control disabled")
		return nil
	},
}

func init() {
	Command.AddCommand(disableCmd)
}
