package main

import (
	"os"

	"github.com/bnema/life-assistant/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
