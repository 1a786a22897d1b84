// chromapoem designs four-colour palettes and turns them into chimes,
// preview images and concrete poems.
package main

import (
	"os"

	"github.com/gensys/chromapoem/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
