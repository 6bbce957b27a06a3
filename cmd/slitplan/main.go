// slitplan is a slit planning optimizer.
//
// Assigns customer orders to material coils by exact width-capacity
// selection, then sequences each pattern's cuts to reduce shear
// repositioning. Runs either as a one-shot CLI over spreadsheet files
// or as an HTTP service.
//
// Build:
//
//	go build -o slitplan ./cmd/slitplan
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
