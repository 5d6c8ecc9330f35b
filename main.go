package main

import (
	"fmt"
	"os"

	"github.com/naclports/portlist/cmd"
	"github.com/naclports/portlist/internal/logger"
)

func main() {
	err := cmd.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
