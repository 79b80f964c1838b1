package main

import (
	"fmt"
	"os"

	"food-sustainability/internal/cli"
)

// version 由 -ldflags 在建置時設定
var version = "dev"

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
