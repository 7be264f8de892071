package updater

import (
	"context"
	"fmt"
)

// VersionFinishedListener observes every version the run finishes.
// Returning an error aborts the run; the error reaches the Update caller
// unwrapped apart from dispatch context.
type VersionFinishedListener interface {
	VersionFinished(ctx context.Context, version string) error
}

// VersionFinishedFunc adapts a function to VersionFinishedListener.
type VersionFinishedFunc func(ctx context.Context, version string) error

// VersionFinished calls f.
func (f VersionFinishedFunc) VersionFinished(ctx context.Context, version string) error {
	return f(ctx, version)
}

// RunFinishedListener observes the end of a run that applied versions,
// receiving them in apply order.
type RunFinishedListener interface {
	RunFinished(ctx context.Context, applied []string) error
}

// RunFinishedFunc adapts a function to RunFinishedListener.
type RunFinishedFunc func(ctx context.Context, applied []string) error

// RunFinished calls f.
func (f RunFinishedFunc) RunFinished(ctx context.Context, applied []string) error {
	return f(ctx, applied)
}

// OnVersionFinished registers a per-version listener. Listeners fire in
// registration order.
func (u *Updater) OnVersionFinished(listener VersionFinishedListener) {
	u.versionListeners = append(u.versionListeners, listener)
}

// OnRunFinished registers an end-of-run listener. Listeners fire in
// registration order.
func (u *Updater) OnRunFinished(listener RunFinishedListener) {
	u.runListeners = append(u.runListeners, listener)
}

// dispatchVersionFinished notifies per-version listeners in order.
// The first error stops the dispatch.
func (u *Updater) dispatchVersionFinished(ctx context.Context, version string) error {
	for _, listener := range u.versionListeners {
		if err := listener.VersionFinished(ctx, version); err != nil {
			return fmt.Errorf("version listener for %s: %w", version, err)
		}
	}

	return nil
}

// dispatchRunFinished notifies end-of-run listeners in order.
// The first error stops the dispatch.
func (u *Updater) dispatchRunFinished(ctx context.Context, applied []string) error {
	for _, listener := range u.runListeners {
		if err := listener.RunFinished(ctx, applied); err != nil {
			return fmt.Errorf("run listener: %w", err)
		}
	}

	return nil
}
