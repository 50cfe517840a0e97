package main

import (
	"os"

	"github.com/osaleh/aidesk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
