package fan

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var speedCmd = &cobra.Command{
	Use:   "speed",
	Short: "Get/Set the current fan speed percentage ([0..100])",
	Long:  ``,
	Args:  cobra.RangeArgs(0, 1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.DisableOutput()

		c := apiClient()

		if len(args) > 0 {
			value, err := strconv.Atoi(args[0])
			if err != nil {
				return err
			}
			return c.SetFanSpeed(value)
		}

		speed, err := c.FanSpeed()
		if err != nil {
			return err
		}
		if speed == nil {
			return errors.New("no fan speed written yet")
		}
		fmt.Printf("%d", *speed)
		return nil
	},
}

func init() {
	Command.AddCommand(speedCmd)
}
