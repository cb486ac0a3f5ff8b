package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	os.Exit(run())
}

func run() int {
	err := newRootCommand().Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		// Interrupted; the run already logged where it stopped.
		return 130
	default:
		fmt.Fprintln(os.Stderr, "reelsync:", err)
		return 1
	}
}
