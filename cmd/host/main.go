package main

import (
	"fmt"
	"os"

	"github.com/cascade-ridge/skytrack/cmd/host/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
