package main

import (
	"os"

	"github.com/flexprice/tariff/cmd/tariffctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
