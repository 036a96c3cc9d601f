package main

import (
	"os"

	"autotrader/cmd/autotrader/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
