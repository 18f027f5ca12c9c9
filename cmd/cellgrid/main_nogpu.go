//go:build nogpu

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "cellgrid: built with the nogpu tag; no simulation backend available")
	os.Exit(1)
}
