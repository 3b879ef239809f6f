package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

// filtercheck prints the canonical form of filter payloads and compares entities offline
func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		// go-flags already printed its own errors and usage
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) {
			if flagsErr.Type == flags.ErrHelp {
				return
			}
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
