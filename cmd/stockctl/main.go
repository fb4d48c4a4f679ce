// Command stockctl manages the inventory from a terminal. It opens the
// configured store directly and acts as the local Admin.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
