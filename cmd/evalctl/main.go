package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/breedgrade/internal/evalctl"
	"github.com/okian/breedgrade/pkg/logger"
)

func main() {
	// logs go to stderr so tables on stdout stay clean
	if err := logger.InitWithOptions(logger.Options{Output: os.Stderr, Level: "warn"}); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := evalctl.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
