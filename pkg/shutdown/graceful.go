package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/pkg/logging"
)

type Stoppable interface {
	Shutdown(ctx context.Context) error
}

// Func adapts a plain function to Stoppable
type Func func(ctx context.Context) error

func (f Func) Shutdown(ctx context.Context) error { return f(ctx) }

// Graceful blocks until one of signals arrives or ctx ends, then stops each
// Stoppable in reverse order under a shared timeout.
func Graceful(ctx context.Context, signals []os.Signal, timeout time.Duration, log *logging.Logger, stoppers ...Stoppable) error {
	sigCtx, stop := signal.NotifyContext(ctx, signals...)
	defer stop()

	<-sigCtx.Done()
	log.Info("shutdown signal received")

	return Stop(timeout, log, stoppers...)
}

// Stop runs the shutdown sequence without waiting for a signal
func Stop(timeout time.Duration, log *logging.Logger, stoppers ...Stoppable) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for i := len(stoppers) - 1; i >= 0; i-- {
		if err := stoppers[i].Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		log.Warn("graceful shutdown completed with error", "err", err)
	} else {
		log.Info("graceful shutdown completed successfully")
	}
	return err
}
