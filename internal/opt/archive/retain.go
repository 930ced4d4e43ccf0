package archive

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/hashmap-kz/storecrypt/pkg/storage"

	"github.com/traitdex/traitdex/internal/opt/metrics"
)

type RetentionPolicy struct {
	// KeepPeriod drops snapshots older than the window (0 disables).
	KeepPeriod time.Duration
	// KeepLast caps the number of newest snapshots kept (0 disables).
	KeepLast int
}

func filterOlderThan(files []storage.FileInfo, maxAge time.Duration) []storage.FileInfo {
	var result []storage.FileInfo
	cutoff := time.Now().Add(-maxAge)
	for _, f := range files {
		if f.ModTime.Before(cutoff) {
			result = append(result, f)
		}
	}
	return result
}

func beyondKeepLast(files []storage.FileInfo, keepLast int) []storage.FileInfo {
	if len(files) <= keepLast {
		return nil
	}
	sorted := make([]storage.FileInfo, len(files))
	copy(sorted, files)
	// newest first
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ModTime.After(sorted[j].ModTime)
	})
	return sorted[keepLast:]
}

// PerformRetention deletes snapshots that fall outside the policy.
func (a *Archiver) PerformRetention(ctx context.Context, policy RetentionPolicy) error {
	fileInfos, err := a.stor.ListInfo(ctx, "")
	if err != nil {
		return err
	}
	if len(fileInfos) == 0 {
		return nil
	}

	victims := make(map[string]storage.FileInfo)
	if policy.KeepPeriod > 0 {
		for _, f := range filterOlderThan(fileInfos, policy.KeepPeriod) {
			victims[f.Path] = f
		}
	}
	if policy.KeepLast > 0 {
		for _, f := range beyondKeepLast(fileInfos, policy.KeepLast) {
			victims[f.Path] = f
		}
	}
	if len(victims) == 0 {
		return nil
	}

	a.log().Debug("begin to retain snapshots", slog.Int("cnt", len(victims)))
	for _, elem := range victims {
		a.log().Debug("delete snapshot", slog.String("path", filepath.ToSlash(elem.Path)))
		if err := a.stor.Delete(ctx, elem.Path); err != nil {
			return err
		}
		metrics.SnapshotsDeleted.Inc()
	}
	return nil
}
