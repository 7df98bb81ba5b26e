// Command capture takes one print-resolution capture and exits.
// It exits 1 when the capture fails.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
