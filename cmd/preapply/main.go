// Command preapply is the entry point for PreApply's CLI.
package main

import (
	"fmt"
	"os"

	"github.com/akileshthuniki/preapply/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
