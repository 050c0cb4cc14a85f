package main

import (
	"github.com/mt5crs/riskcore/internal/cli"
)

func main() {
	cli.Execute()
}
