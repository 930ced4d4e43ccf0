// Package loader assembles an implementors map from the fragments a
// documentation build drops on disk.
package loader

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/traitdex/traitdex/internal/core/implmap"
	"github.com/traitdex/traitdex/internal/opt/metrics"
)

// FragmentSuffix marks per-package implementor fragments inside the docs dir.
const FragmentSuffix = ".implementors.json"

type Loader struct {
	l       *slog.Logger
	docsDir string
}

func New(docsDir string) *Loader {
	return &Loader{
		l:       slog.With("component", "loader"),
		docsDir: docsDir,
	}
}

func (ld *Loader) log() *slog.Logger {
	if ld.l != nil {
		return ld.l
	}
	return slog.With("component", "loader")
}

// Scan walks the docs dir, decodes every fragment and merges them into one
// map. Fragments merge in lexicographic path order, so display order is
// stable across runs. The build output is trusted: one malformed fragment
// fails the whole scan.
func (ld *Loader) Scan() (implmap.ImplementorMap, error) {
	start := time.Now()
	metrics.ScansTotal.Inc()

	paths, err := ld.fragmentPaths()
	if err != nil {
		metrics.ScanErrors.Inc()
		return nil, err
	}

	merged := make(implmap.ImplementorMap)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			metrics.ScanErrors.Inc()
			return nil, fmt.Errorf("read fragment: %w", err)
		}
		frag, err := implmap.DecodeFragment(data)
		if err != nil {
			metrics.ScanErrors.Inc()
			return nil, fmt.Errorf("fragment %s: %w", filepath.ToSlash(path), err)
		}
		merged.MergeFragment(frag)
		metrics.FragmentsLoaded.Inc()
	}

	metrics.ScanDuration.Observe(time.Since(start).Seconds())
	ld.log().Debug("scan complete",
		slog.Int("fragments", len(paths)),
		slog.Int("traits", len(merged)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return merged, nil
}

func (ld *Loader) fragmentPaths() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(ld.docsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), FragmentSuffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk docs dir %s: %w", filepath.ToSlash(ld.docsDir), err)
	}
	sort.Strings(paths)
	return paths, nil
}
