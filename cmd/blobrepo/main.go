// Command blobrepo manages JSON record collections mirrored to object
// storage, one JSON array document per collection.
// Build with: go build -o bin/blobrepo ./cmd/blobrepo
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
