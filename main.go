// entry point of the application
package main

import (
	"context"
	"os"
	"os/signal"

	"mediashare/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	code := cli.Execute(ctx)

	stop()
	os.Exit(code)
}
