package cmd

import (
	"fmt"
	"os"

	"github.com/google/renameio/v2"

	"github.com/traitdex/traitdex/config"
	"github.com/traitdex/traitdex/internal/core/implmap"
	"github.com/traitdex/traitdex/internal/opt/loader"
)

// RunBuild scans the docs dir once and writes the implementors.js artifact.
func RunBuild(cfg *config.Config, out string) error {
	m, err := loader.New(cfg.Main.DocsDir).Scan()
	if err != nil {
		return err
	}

	if out == "-" {
		return implmap.WriteArtifact(os.Stdout, m)
	}

	data, err := implmap.RenderArtifact(m)
	if err != nil {
		return err
	}
	// atomic replace: a page must never load a half-written artifact
	if err := renameio.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", out, err)
	}
	fmt.Printf("wrote %s (%d traits, %d implementors)\n", out, len(m), m.ImplementorCount())
	return nil
}
