package main

import (
	"os"

	"github.com/pharos-integrity/pharos/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
