// Command frost renders frosted-glass scenes to PNG.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/frost/cmd/frost/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
