package main

import (
	"os"

	"github.com/icco/movies/lib/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
