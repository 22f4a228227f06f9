package main

import (
	"errors"
	"os"

	"github.com/bianoble/macrame/cmd/macrame/cmd"
	"github.com/bianoble/macrame/internal/buildsys"
)

func main() {
	err := cmd.Execute()
	var exit *buildsys.ExitError
	if errors.As(err, &exit) {
		os.Exit(exit.Code)
	}
	if err != nil {
		os.Exit(1)
	}
}
