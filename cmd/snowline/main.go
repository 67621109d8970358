// Command snowline processes Landsat Collection 2 Level-2 imagery into
// snow cover artifacts.
package main

import (
	"fmt"
	"os"

	"github.com/oibur/snowline/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
