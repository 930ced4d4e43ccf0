// Package remote pulls implementors artifacts from peer documentation sites
// so their traits show up in the local registry.
package remote

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/traitdex/traitdex/internal/core/implmap"
	"github.com/traitdex/traitdex/internal/opt/metrics"
)

type Fetcher struct {
	l           *slog.Logger
	restyClient *resty.Client
	urls        []string
}

type FetcherOpts struct {
	URLs       []string
	Timeout    time.Duration
	RetryCount int
}

func NewFetcher(opts *FetcherOpts) *Fetcher {
	client := resty.New()
	client.SetRetryCount(opts.RetryCount)
	client.SetTimeout(opts.Timeout)
	return &Fetcher{
		l:           slog.With(slog.String("component", "peer-fetcher")),
		restyClient: client,
		urls:        opts.URLs,
	}
}

func (f *Fetcher) log() *slog.Logger {
	if f.l != nil {
		return f.l
	}
	return slog.With(slog.String("component", "peer-fetcher"))
}

// FetchOne downloads and parses a single peer artifact.
func (f *Fetcher) FetchOne(ctx context.Context, url string) (implmap.ImplementorMap, error) {
	resp, err := f.restyClient.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch peer artifact %s: %w", url, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fetch peer artifact %s: status %d", url, resp.StatusCode())
	}
	return implmap.ParseArtifact(resp.Body())
}

// FetchAll gathers every reachable peer's map. An unreachable peer is logged
// and skipped: the local registry must not go down with a neighbour.
func (f *Fetcher) FetchAll(ctx context.Context) []implmap.ImplementorMap {
	maps := make([]implmap.ImplementorMap, 0, len(f.urls))
	for _, url := range f.urls {
		m, err := f.FetchOne(ctx, url)
		if err != nil {
			metrics.PeerFetches.WithLabelValues("error").Inc()
			f.log().Warn("peer fetch failed", slog.String("url", url), slog.Any("err", err))
			continue
		}
		metrics.PeerFetches.WithLabelValues("ok").Inc()
		maps = append(maps, m)
	}
	return maps
}
