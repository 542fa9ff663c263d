package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/loginetl/internal/app"
	"github.com/dmitrijs2005/loginetl/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return app.ExitFailure
	}

	a, err := app.NewApp(ctx, cfg, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup error: %v\n", err)
		return app.ExitFailure
	}
	defer a.Close()

	return a.Run(ctx)
}
