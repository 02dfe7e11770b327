package main

import (
	"aggregat4/coffeeshop/internal/cli"
	"fmt"
	"os"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
