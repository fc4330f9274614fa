package library

import (
	"embed"
	"io/fs"
)

//go:embed seed
var seedFS embed.FS

// Seed returns the built-in sample library used when no library path is configured.
func Seed() fs.FS {
	sub, err := fs.Sub(seedFS, "seed")
	if err != nil {
		panic(err)
	}
	return sub
}
