package main

import (
	"fmt"
	"os"

	"github.com/yshengliao/mockwire/cmd/mockwire/commands"
)

var version = "dev"

func main() {
	if err := commands.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
