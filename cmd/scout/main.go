// Command scout serves the prospect scouting API and queries the same
// data from the shell.
//
// Usage:
//
//	scout                              # same as scout serve
//	scout players --school Duke --min-ppg 15
//	scout player marcus-williams
//	scout saved toggle marcus-williams
package main

import (
	"os"
)

const (
	appName    = "prospect-scout"
	appVersion = "dev"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
