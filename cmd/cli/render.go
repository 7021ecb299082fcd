package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/akeren/logfox/internal/components"
	"github.com/akeren/logfox/internal/log"
	"github.com/akeren/logfox/web"
)

type renderOptions struct {
	OutDir      string
	AssetPrefix string
	// APIBase points the dialog script at an API hosted on another origin.
	APIBase string
	Config      components.PageConfig
}

// renderSite writes index.html and a copy of the embedded asset tree to OutDir.
// The page carries no dialog session; the browser creates one on first use.
func renderSite(logger *log.Logger, opts renderOptions) error {
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	cfg := opts.Config
	cfg.AssetPrefix = opts.AssetPrefix
	if cfg.Year == 0 {
		cfg.Year = time.Now().Year()
	}

	indexPath := filepath.Join(opts.OutDir, "index.html")
	f, err := os.Create(indexPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", indexPath, err)
	}

	page := components.LandingPage(cfg, components.DialogProps{State: "closed", APIBase: opts.APIBase})
	if err := page.Render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("render landing page: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", indexPath, err)
	}
	logger.Info("Landing page rendered", "path", indexPath)

	copied, err := copyTree(web.Static(), filepath.Join(opts.OutDir, "static"))
	if err != nil {
		return err
	}
	logger.Info("Static assets copied", "files", copied)

	return nil
}

func copyTree(src fs.FS, dst string) (int, error) {
	copied := 0

	err := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		target := filepath.Join(dst, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}

		in, err := src.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()

		out, err := os.Create(target)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, in); err != nil {
			_ = out.Close()
			return err
		}
		copied++
		return out.Close()
	})
	if err != nil {
		return copied, fmt.Errorf("copy static assets: %w", err)
	}

	return copied, nil
}
