//go:build !tinygo

package main

import (
	"fmt"
	"os"
)

func main() {
	cmd := "run"
	if len(os.Args) >= 2 {
		cmd = os.Args[1]
	}

	var err error
	switch cmd {
	case "run":
		err = runDaemon()
	case "status":
		err = runStatus()
	case "term":
		err = runTerm(os.Args[2:])
	case "version":
		fmt.Println(bannerLine())
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		fmt.Fprintln(os.Stderr, "usage: padlamp [run|status|term <address> [channel]|version]")
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
