package main

import (
	"os"

	"github.com/quantlab/silverquant/cmd/silverquant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
