package main

import (
	"fmt"
	"os"

	"go.dot.industries/vx/cmd"
	"go.dot.industries/vx/internal/ferr"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(ferr.ExitCode(err))
	}
}
