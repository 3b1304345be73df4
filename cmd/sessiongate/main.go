package main

import (
	"os"

	"sessiongate/cmd/sessiongate/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
