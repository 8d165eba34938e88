package main

import (
	"os"

	"github.com/rutaguard/rutaguard/cmd/rutaguard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
