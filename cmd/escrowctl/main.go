package main

import (
	"os"

	"github.com/mmynk/escrowd/cmd/escrowctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
