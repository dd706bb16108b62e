package main

import (
	"os"

	"arcade-go/cmd"
	"arcade-go/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
