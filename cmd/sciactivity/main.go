package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AnastasiaP261/sci-activity-doc/internal/cli"
	apperr "github.com/AnastasiaP261/sci-activity-doc/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, "Error:", cli.FormatError(err))
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	return c.RootCommand().ExecuteContext(ctx)
}

// exitCode maps rejected requests to 2 so scripts can tell them apart from
// failures of the store or the environment.
func exitCode(err error) int {
	switch apperr.GetCode(err) {
	case apperr.ErrCodeParse, apperr.ErrCodeValidation, apperr.ErrCodeBadRequest,
		apperr.ErrCodeNotFound, apperr.ErrCodeInvalidInput:
		return 2
	}
	return 1
}
