package main

import (
	"os"

	"github.com/roach88/crosstab/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
