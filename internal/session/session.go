// Package session ties one loaded atlas to the showcase scene, the effect
// pipeline and the batcher, and rebinds the scene when the atlas changes.
package session

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-skin/internal/assets"
	"github.com/Faultbox/midgard-skin/internal/batch"
	"github.com/Faultbox/midgard-skin/internal/config"
	"github.com/Faultbox/midgard-skin/internal/scene"
	"github.com/Faultbox/midgard-skin/pkg/atlas"
	"github.com/Faultbox/midgard-skin/pkg/attachment"
)

// Session is the state shared by the viewer and the preview command.
type Session struct {
	Assets  *assets.Manager
	Atlas   *atlas.Atlas
	Scene   *scene.Scene
	Batcher *batch.Batcher

	cfg      *config.Config
	resolver *attachment.Resolver
	log      *zap.Logger
}

// Open mounts the configured data sources, loads the atlas and builds the
// scene. log may be nil.
func Open(cfg *config.Config, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Atlas.Path == "" {
		return nil, fmt.Errorf("no atlas configured")
	}

	m := assets.NewManager(log.Named("assets"))
	for _, dir := range cfg.Data.SearchDirs {
		m.AddDir(dir)
	}
	for _, p := range cfg.Data.GRFPaths {
		if err := m.AddArchive(p); err != nil {
			m.Close()
			return nil, err
		}
	}

	a, err := atlas.Load(m, cfg.Atlas.Path)
	if err != nil {
		m.Close()
		return nil, err
	}

	loader := attachment.NewAtlasLoader(a, log.Named("loader"))
	sc, err := scene.Build(a, loader, scene.Options{
		Columns:  cfg.Preview.Columns,
		CellSize: float32(cfg.Preview.CellSize),
		Bounds:   cfg.Preview.DrawBounds,
	}, log)
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("building scene for %s: %w", cfg.Atlas.Path, err)
	}

	pipeline, err := cfg.Pipeline()
	if err != nil {
		m.Close()
		return nil, err
	}

	log.Info("session opened",
		zap.String("atlas", cfg.Atlas.Path),
		zap.Int("pages", len(a.Pages())),
		zap.Int("regions", len(a.Regions())),
		zap.Int("effects", pipeline.Len()),
	)

	return &Session{
		Assets:   m,
		Atlas:    a,
		Scene:    sc,
		Batcher:  batch.New(pipeline, cfg.Render.PremultipliedAlpha),
		cfg:      cfg,
		resolver: attachment.NewResolver(a, log.Named("resolver")),
		log:      log,
	}, nil
}

// Frame advances the scene by delta seconds and batches it.
func (s *Session) Frame(delta float32) (*batch.Frame, error) {
	s.Scene.Update(delta)
	return s.Batcher.Build(s.Scene.Skeleton)
}

// Reload reads the atlas again and rebinds every scene attachment to it.
// A parse failure keeps the current atlas. A region that disappeared keeps
// its attachment on the old region and is reported in the error.
func (s *Session) Reload() error {
	s.Assets.Forget(s.sourceNames()...)

	a, err := atlas.Load(s.Assets, s.cfg.Atlas.Path)
	if err != nil {
		s.log.Warn("atlas reload failed", zap.Error(err))
		return err
	}

	s.Atlas = a
	s.resolver.SetFinder(a)
	if err := s.resolver.ResolveAll(s.Scene.Attachments); err != nil {
		s.log.Warn("atlas reloaded with missing regions", zap.Error(err))
		return err
	}
	s.log.Info("atlas reloaded", zap.String("atlas", s.cfg.Atlas.Path))
	return nil
}

// sourceNames returns the asset names the current atlas was read from.
func (s *Session) sourceNames() []string {
	dir := path.Dir(s.cfg.Atlas.Path)
	names := []string{s.cfg.Atlas.Path}
	for _, p := range s.Atlas.Pages() {
		// A sprite is its own page.
		if name := path.Join(dir, p.Name); name != s.cfg.Atlas.Path {
			names = append(names, name)
		}
	}
	return names
}

// WatchPaths returns the files on disk backing the atlas, for the
// watcher. Files that only live in archives are not listed.
func (s *Session) WatchPaths() []string {
	var paths []string
	for _, name := range s.sourceNames() {
		for _, dir := range s.cfg.Data.SearchDirs {
			p := filepath.Join(dir, filepath.FromSlash(name))
			if _, err := os.Stat(p); err == nil {
				paths = append(paths, p)
				break
			}
		}
	}
	return paths
}

// Close releases the mounted archives.
func (s *Session) Close() error {
	return s.Assets.Close()
}
