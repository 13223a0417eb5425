// Package framework runs the host side components of a device.
package framework

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"
)

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun wraps a Runnable with a name.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: runnable}
}

// ErrForcedExit is returned by Wait when stop is requested twice.
var ErrForcedExit = errors.New("forced exit")

// Group runs Runnables which live as long as the device. The first one
// to stop cancels the others.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	count  int
	errCh  chan error
	exitCh chan struct{}
}

// NewGroup creates a Group under ctx.
func NewGroup(ctx context.Context) *Group {
	g := &Group{
		errCh:  make(chan error, 1),
		exitCh: make(chan struct{}),
	}
	g.ctx, g.cancel = context.WithCancel(ctx)
	return g
}

// Context returns the context passed to Runnables.
func (g *Group) Context() context.Context {
	return g.ctx
}

// HandleSignals stops the Group on Ctrl-C or SIGTERM.
func (g *Group) HandleSignals() *Group {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		glog.Info("stop requested")
		g.cancel()
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(g.exitCh)
	}()
	return g
}

// Go spawns Runnables.
func (g *Group) Go(runners ...Runnable) *Group {
	for _, runner := range runners {
		name := "runner"
		if named, ok := runner.(Named); ok {
			name = named.Name()
		}
		g.count++
		go func(runner Runnable, name string) {
			glog.V(4).Infof("%s started", name)
			err := runner.Run(g.ctx)
			if err != nil && err != context.Canceled {
				glog.Errorf("%s stopped: %v", name, err)
			} else {
				glog.V(4).Infof("%s stopped", name)
			}
			g.cancel()
			g.errCh <- err
		}(runner, name)
	}
	return g
}

// Wait waits until all Runnables stop and aggregates errors.
func (g *Group) Wait() error {
	var errs AggregatedError
	for i := 0; i < g.count; i++ {
		select {
		case <-g.exitCh:
			return ErrForcedExit
		case err := <-g.errCh:
			if err != context.Canceled {
				errs.Add(err)
			}
		}
	}
	return errs.Aggregate()
}

// WaitOrFail is intended to be used in main to wait for the Group.
func (g *Group) WaitOrFail() {
	if err := g.Wait(); err != nil {
		log.Fatalln(err)
	}
}

// RunWithContextCloser runs fn which doesn't accept a context; closer is
// closed when the context is canceled or fn returns.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case <-ctx.Done():
		closer.Close()
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		closer.Close()
		return err
	}
}
