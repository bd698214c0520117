package cmd

import (
	"github.com/clusterhack/argononed/cmd/global"
	"github.com/clusterhack/argononed/internal/client"
	"github.com/clusterhack/argononed/internal/ui"
	"github.com/spf13/cobra"
)

var shutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Ask a running daemon to stop gracefully",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.New(global.ApiUrl).Shutdown(); err != nil {
			return err
		}
		ui.Success("Daemon is stopping")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(shutdownCmd)
}
