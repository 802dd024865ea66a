package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/deppfellow/projects/internal/app"
	"github.com/deppfellow/projects/internal/cli"
	"github.com/deppfellow/projects/internal/cli/output"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx, app.Bootstrap); err != nil {
		fmt.Fprintln(os.Stderr, output.Describe(err, false))
		stop()
		os.Exit(1)
	}
}
