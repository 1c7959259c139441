package main

import (
	"os"

	"github.com/magicstocks/calendar/cmd/mscal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
