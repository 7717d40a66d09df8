// Command cmdlog records and replays simulator command logs.
package main

import (
	"fmt"
	"os"

	"github.com/openrails/openrails-sub024/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
