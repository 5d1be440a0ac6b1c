// cmd/sitescrape/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/law-makers/sitescrape/internal/cli"
	"github.com/rs/zerolog/log"
)

func main() {
	// Cancel in-flight scrapes on interrupt so their browsers are released
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	go func() {
		<-ctx.Done()
		if ctx.Err() != nil {
			log.Warn().Msg("Interrupt received, shutting down gracefully...")
		}
	}()

	code := cli.ExecuteContext(ctx)
	stop()
	os.Exit(code)
}
