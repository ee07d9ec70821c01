package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/temirov/repohq/cmd/cli"
)

const exitCodeFailureConstant = 1

func main() {
	signalContext, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	executionError := cli.Execute(signalContext)
	stopSignals()

	if executionError != nil {
		fmt.Fprintln(os.Stderr, executionError)
		os.Exit(exitCodeFailureConstant)
	}
}
