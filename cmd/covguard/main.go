package main

import (
	"fmt"
	"os"

	"github.com/zjy-dev/covguard/cmd/covguard/app"
)

func main() {
	if err := app.NewCovguardCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
