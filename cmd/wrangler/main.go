// Package main is the entry point for the wrangler CLI binary.
package main

import (
	"os"

	cli "wrangler/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
