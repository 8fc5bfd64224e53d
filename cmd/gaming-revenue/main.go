package main

import (
	"os"

	"github.com/pfrederiksen/gaming-revenue/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
