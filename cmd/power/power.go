package power

import (
	"github.com/clusterhack/argononed/cmd/global"
	"github.com/clusterhack/argononed/internal/client"
	"github.com/spf13/cobra"
)

var Command = &cobra.Command{
	Use:              "power",
	Short:            "Power button related commands",
	Long:             ``,
	TraverseChildren: true,
}

func apiClient() *client.Client {
	return client.New(global.ApiUrl)
}
