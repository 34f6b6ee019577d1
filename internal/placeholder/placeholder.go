package placeholder

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dmorgan81/imggate/internal/config"
	"github.com/dmorgan81/imggate/internal/log"
	"github.com/samber/do"
)

// Static answers moderation rejections with a fixed URL to a locally served
// asset. No remote call, no per-request I/O.
type Static struct {
	url string
}

func NewStatic(ctx context.Context, i *do.Injector) (*Static, error) {
	cfg := do.MustInvoke[*config.Config](i)

	name := filepath.Join(cfg.StaticDir, filepath.Base(cfg.PlaceholderURL))
	if _, err := os.Stat(name); err != nil {
		log.FromContextOrDiscard(ctx).Warn("placeholder asset not found", "path", name)
	}

	return &Static{url: cfg.PlaceholderURL}, nil
}

func (s *Static) URL() string { return s.url }
