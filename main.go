package main

import (
	"os"

	"github.com/zaguiini/create-sandbox/cmd"
	"github.com/zaguiini/create-sandbox/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
