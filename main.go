package main

import (
	"os"

	"vault-hygiene/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
