// Command tablectl watches and drives a baccarat table server from the
// terminal.
package main

import (
	"os"

	"github.com/pterm/pterm"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
