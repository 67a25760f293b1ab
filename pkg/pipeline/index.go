package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/variantdev/docship/pkg/searchindex"
)

// IndexUpdate refreshes the search index of the production docs
type IndexUpdate struct {
	Resolver *Resolver
	Updater  IndexUpdater

	Out    io.Writer
	Logger logr.Logger
}

func (u *IndexUpdate) UpdateIndex(ctx context.Context, c BuildContext) (Result, error) {
	logger := loggerOrDefault(u.Logger)

	if !u.Resolver.CanUpdateIndex(c) {
		logger.V(1).Info("index.skip", "context", c.String())
		return skipped(string(ActionUpdateSearchIndex), fmt.Sprintf("%s is neither %s nor tagged", c, u.Resolver.Mainline)), nil
	}

	host := u.Resolver.ProductionHost

	collapsed(u.Out, ":open_mouth: Updating search index...")

	if err := u.Updater.Update(ctx, host); err != nil {
		status := -1
		var exitErr *searchindex.ExitError
		if errors.As(err, &exitErr) {
			status = exitErr.ExitStatus
		}
		return Result{}, &IndexUpdateError{Hostname: host, ExitStatus: status, Err: err}
	}

	logger.Info("index.done", "host", host)

	return succeeded(string(ActionUpdateSearchIndex)), nil
}
