package main

import (
	"os"

	"github.com/araroot/kotomine/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
