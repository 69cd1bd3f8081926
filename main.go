// Package main is the entry point for hltas-record.
package main

import (
	"fmt"
	"os"

	"github.com/hltas-record/hltas-record/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
