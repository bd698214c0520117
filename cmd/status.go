package cmd

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/clusterhack/argononed/cmd/global"
	"github.com/clusterhack/argononed/internal/client"
	"github.com/clusterhack/argononed/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current daemon status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(global.ApiUrl)
		status, err := c.Status()
		if err != nil {
			return err
		}

		tab := table.Table{
			Headers: []string{"", ""},
			Rows: [][]string{
				{"Temperature", formatTemperature(status.Temperature)},
				{"Temperature (avg)", fmt.Sprintf("%.1f °C", status.TemperatureAvg)},
				{"Fan speed", formatFanSpeed(status.FanSpeed)},
				{"Fan control", formatEnabled(status.FanControlEnabled)},
				{"Power button", formatEnabled(status.PowerControlEnabled)},
			},
		}
		var buf bytes.Buffer
		tableErr := tab.WriteTable(&buf, &table.Config{
			ShowIndex:       false,
			Color:           !global.NoColor,
			AlternateColors: true,
			TitleColorCode:  ansi.ColorCode("white+buf"),
			AltColorCodes: []string{
				ansi.ColorCode("white"),
				ansi.ColorCode("white:236"),
			},
		})
		if tableErr != nil {
			panic(tableErr)
		}
		ui.Printfln(buf.String())
		return nil
	},
}

func formatTemperature(temperature *float64) string {
	if temperature == nil {
		return "no reading yet"
	}
	return fmt.Sprintf("%.1f °C", *temperature)
}

func formatFanSpeed(speed *int) string {
	if speed == nil {
		return "not written yet"
	}
	return strconv.Itoa(*speed) + " %"
}

func formatEnabled(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
