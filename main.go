// modemconn - TCP connect over a cellular modem's socket stack.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"modemconn/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "modemconn: %v\n", err)
		os.Exit(1)
	}
}
