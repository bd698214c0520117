package fan

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/clusterhack/argononed/cmd/global"
	"github.com/clusterhack/argononed/internal/curves"
	"github.com/clusterhack/argononed/internal/ui"
	"github.com/guptarohit/asciigraph"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

const (
	graphMinTemperature = 30
	graphMaxTemperature = 80
)

var lutCmd = &cobra.Command{
	Use:   "lut",
	Short: "Print the active fan speed LUT to console",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := apiClient().SpeedLUT()
		if err != nil {
			return err
		}

		// print table
		rows := make([][]string, 0, len(items))
		for _, item := range items {
			threshold := "default"
			if item.Threshold != nil {
				threshold = fmt.Sprintf("%.1f °C", *item.Threshold)
			}
			rows = append(rows, []string{threshold, fmt.Sprintf("%.0f %%", item.Value)})
		}
		tab := table.Table{
			Headers: []string{"Threshold", "Fan speed"},
			Rows:    rows,
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

		// print graph
		lut, err := curves.FromItems(items)
		if err != nil {
			return err
		}
		values := make([]float64, 0, graphMaxTemperature-graphMinTemperature+1)
		for temperature := graphMinTemperature; temperature <= graphMaxTemperature; temperature++ {
			values = append(values, lut.Evaluate(float64(temperature)))
		}
		caption := fmt.Sprintf("Fan speed %% / temperature °C (%d..%d)", graphMinTemperature, graphMaxTemperature)
		graph := asciigraph.Plot(values, asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption(caption))
		ui.Printfln(graph)
		return nil
	},
}

var lutSetCmd = &cobra.Command{
	Use:   "set [json]",
	Short: "Replace the active fan speed LUT, e.g. '[{\"value\":20},{\"threshold\":55,\"value\":100}]'",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var items []curves.LUTEntry
		if err := json.Unmarshal([]byte(args[0]), &items); err != nil {
			return err
		}
		if err := apiClient().SetSpeedLUT(items); err != nil {
			return err
		}
		ui.Success("Fan speed LUT updated")
		return nil
	},
}

var lutResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop any LUT override and revert to the configured one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient().ResetSpeedLUT(); err != nil {
			return err
		}
		ui.Success("Fan speed LUT reset to configuration")
		return nil
	},
}

func init() {
	lutCmd.AddCommand(lutSetCmd)
	lutCmd.AddCommand(lutResetCmd)
	Command.AddCommand(lutCmd)
}
