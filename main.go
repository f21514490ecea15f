package main

import (
	"os"

	"github.com/idea-allies/upwork-pipeline/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
