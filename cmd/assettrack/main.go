package main

import (
	"os"

	"github.com/aussiebroadwan/assettrack/internal/auth/cli"
)

func main() {
	os.Exit(cli.Execute())
}
