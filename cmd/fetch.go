package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/renameio/v2"

	"github.com/traitdex/traitdex/internal/core/implmap"
	"github.com/traitdex/traitdex/internal/opt/remote"
)

type FetchOpts struct {
	URL     string
	Out     string
	Timeout string
}

// RunFetch downloads a peer artifact, parses it and re-emits it in the local
// canonical form (sorted keys, stable bytes).
func RunFetch(ctx context.Context, opts *FetchOpts) error {
	timeout, err := time.ParseDuration(opts.Timeout)
	if err != nil {
		return fmt.Errorf("cannot parse timeout %q: %w", opts.Timeout, err)
	}

	fetcher := remote.NewFetcher(&remote.FetcherOpts{
		Timeout:    timeout,
		RetryCount: 0,
	})
	m, err := fetcher.FetchOne(ctx, opts.URL)
	if err != nil {
		return err
	}

	if opts.Out == "-" {
		return implmap.WriteArtifact(os.Stdout, m)
	}
	data, err := implmap.RenderArtifact(m)
	if err != nil {
		return err
	}
	return renameio.WriteFile(opts.Out, data, 0o644)
}
