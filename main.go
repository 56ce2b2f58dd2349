// main is the entry point for the co2plot CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/co2plot/cmd"
)

func main() {
	err := cmd.Execute()
	if stopErr := cmd.Shutdown(); stopErr != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warn failed to shut down: %v\n", stopErr)
	}
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
