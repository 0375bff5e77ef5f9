package main

import (
	"os"

	"github.com/unilist-dev/unilist/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
