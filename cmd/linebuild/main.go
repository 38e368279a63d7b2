// Command linebuild analyzes, validates and migrates kitchen line builds.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/linebuild/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			// Flag and argument errors never reached a formatter.
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
