// pinger - run ping, traceroute and nslookup and stream their results.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pinger/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "pinger: %v\n", err)
		os.Exit(1)
	}
}
