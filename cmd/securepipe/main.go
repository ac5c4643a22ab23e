package main

import (
	"os"

	"github.com/securepipe/securepipe/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
