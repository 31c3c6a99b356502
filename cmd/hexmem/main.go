package main

import (
	"os"

	"github.com/hexmem/hexmem/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
