package main

import (
	"os"

	"github.com/unlockenglish/tutorsite/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
