// Package main provides the duel command-line tool: it resolves single combat
// exchanges against an encounter store and imports combatants into it.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
