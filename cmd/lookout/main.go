package main

import (
	"fmt"
	"os"
)

// Version is set at build time via ldflags.
var Version string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
