package main

import (
	"os"

	"github.com/lilBchii/tide/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
