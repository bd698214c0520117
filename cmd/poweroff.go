package cmd

import (
	"github.com/clusterhack/argononed/internal/board"
	"github.com/clusterhack/argononed/internal/configuration"
	"github.com/clusterhack/argononed/internal/ui"
	"github.com/spf13/cobra"
)

// poweroff talks to the board directly instead of the daemon: it is meant to
// run from a systemd shutdown hook, after the daemon has already stopped, to
// make the MCU cut power once the OS has halted.
var poweroffCmd = &cobra.Command{
	Use:   "poweroff",
	Short: "Send the power-off command to the board MCU",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupUi()

		configPath := configuration.DetectAndReadConfigFile()
		ui.Info("Using configuration file at: %s", configPath)
		configuration.LoadConfig()
		if err := configuration.Validate(configPath); err != nil {
			ui.FatalWithoutStacktrace("Config validation failed: %v", err)
		}

		b, err := board.Open(configuration.CurrentConfig.Board)
		if err != nil {
			return err
		}
		defer func() {
			_ = b.Close()
		}()

		if err := b.PowerOff(); err != nil {
			return err
		}
		ui.Info("Power-off command sent to the board")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(poweroffCmd)
}
