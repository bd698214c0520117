package main

import (
	"github.com/clusterhack/argononed/cmd"
)

func main() {
	cmd.Execute()
}
