// Command pufcma runs the reliability-based CMA-ES attack against a simulated
// noisy XOR arbiter PUF and reports how well the learned model matches it.
//
//	pufcma attack --config attack.yaml --metrics-addr :9464
//	pufcma version
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
