// ./main.go
package main

import (
	"github.com/Avi13113/Scraper/cmd"
)

// main is the entry point for the scraper CLI.
func main() {
	// Execute the root command defined in the cmd package.
	// This handles command-line parsing, configuration, and execution.
	cmd.Execute()
}
