package main

import (
	"os"
	"wa-gateway/cmd/wactl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
