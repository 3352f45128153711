// Command git-go is a minimal, pure-Go implementation of a subset of
// git's plumbing and porcelain commands.
package main

import (
	"fmt"
	"os"
)

func main() {
	root := newRootCmd(defaultCwd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
