package main

import (
	"os"

	"github.com/mintaslang/dew/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
