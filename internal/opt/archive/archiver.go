// Package archive persists registry snapshots to the configured storage
// backend. Each publish produces one artifact snapshot; retention prunes the
// history by age or count.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashmap-kz/storecrypt/pkg/storage"

	"github.com/traitdex/traitdex/internal/core/implmap"
	"github.com/traitdex/traitdex/internal/opt/metrics"
)

const snapshotTimeLayout = "20060102150405"

type Archiver struct {
	l           *slog.Logger
	stor        *storage.TransformingStorage
	storageName string
}

type ArchiverOpts struct {
	Storage     *storage.TransformingStorage
	StorageName string
}

func NewArchiver(opts *ArchiverOpts) *Archiver {
	return &Archiver{
		l:           slog.With(slog.String("component", "archiver")),
		stor:        opts.Storage,
		storageName: opts.StorageName,
	}
}

func (a *Archiver) log() *slog.Logger {
	if a.l != nil {
		return a.l
	}
	return slog.With(slog.String("component", "archiver"))
}

// Upload renders m into the artifact form and stores it under a
// timestamped snapshot name.
func (a *Archiver) Upload(ctx context.Context, m implmap.ImplementorMap) error {
	start := time.Now()

	data, err := implmap.RenderArtifact(m)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("implementors-%s.js", start.UTC().Format(snapshotTimeLayout))

	if err := a.stor.Put(ctx, name, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("upload snapshot %s: %w", name, err)
	}

	metrics.SnapshotsUploaded.WithLabelValues(a.storageName).Inc()
	metrics.SnapshotUploadDuration.Observe(time.Since(start).Seconds())
	a.log().Info("snapshot uploaded",
		slog.String("name", name),
		slog.Int("bytes", len(data)),
	)
	return nil
}
