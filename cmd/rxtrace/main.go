// Command rxtrace is the drug provenance ledger CLI.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/rxtrace/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
