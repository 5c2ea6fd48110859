package main

import (
	"os"

	"github.com/lodestone-ai/lodestone/cmd/lodestone"
)

func main() {
	if err := lodestone.Execute(); err != nil {
		os.Exit(1)
	}
}
