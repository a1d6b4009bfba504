package main

import (
	"os"

	"github.com/msto63/sexpr/cmd/sexpr/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
