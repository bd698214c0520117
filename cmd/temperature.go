package cmd

import (
	"errors"
	"fmt"

	"github.com/clusterhack/argononed/cmd/global"
	"github.com/clusterhack/argononed/internal/client"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var temperatureCmd = &cobra.Command{
	Use:   "temperature",
	Short: "Print the current chip temperature as seen by the daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		dto, err := client.New(global.ApiUrl).Temperature()
		if err != nil {
			return err
		}
		if dto.Temperature == nil {
			return errors.New("no temperature reading yet")
		}
		fmt.Printf("%.1f", *dto.Temperature)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(temperatureCmd)
}
