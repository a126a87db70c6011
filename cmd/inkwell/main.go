package main

import (
	"os"

	"github.com/iw2rmb/inkwell/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
