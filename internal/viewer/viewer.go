// Package viewer implements the interactive skin viewer loop.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-skin/internal/config"
	"github.com/Faultbox/midgard-skin/internal/engine/camera"
	"github.com/Faultbox/midgard-skin/internal/engine/input"
	"github.com/Faultbox/midgard-skin/internal/engine/renderer"
	"github.com/Faultbox/midgard-skin/internal/engine/window"
	"github.com/Faultbox/midgard-skin/internal/logger"
	"github.com/Faultbox/midgard-skin/internal/session"
	"github.com/Faultbox/midgard-skin/internal/watch"
	"github.com/Faultbox/midgard-skin/pkg/gfx"
)

const title = "Midgard Skin"

var outlineColor = gfx.Color{R: 0.2, G: 1, B: 0.4, A: 0.9}

// Viewer shows the showcase scene of one atlas.
type Viewer struct {
	cfg      *config.Config
	log      *zap.Logger
	running  bool
	paused   bool
	bounds   bool
	session  *session.Session
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.PanZoomCamera

	watcher   *watch.Watcher
	stopWatch context.CancelFunc
	watchDone chan struct{}
}

// New opens the atlas, the window and the renderer.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:    cfg,
		log:    logger.Named("viewer"),
		bounds: cfg.Preview.DrawBounds,
		camera: camera.NewPanZoomCamera(),
		input:  input.New(),
	}

	var err error
	v.session, err = session.Open(cfg, logger.Log)
	if err != nil {
		return nil, err
	}

	v.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Render.Width,
		Height:     cfg.Render.Height,
		Fullscreen: cfg.Render.Fullscreen,
		VSync:      cfg.Render.VSync,
	})
	if err != nil {
		v.session.Close()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The GL context must exist before the renderer.
	w, h := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:              w,
		Height:             h,
		PremultipliedAlpha: cfg.Render.PremultipliedAlpha,
		ClearColor:         cfg.Render.ClearColor,
	})
	if err != nil {
		v.window.Close()
		v.session.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	if cfg.Atlas.Watch {
		if err := v.startWatcher(); err != nil {
			v.log.Warn("atlas watching disabled", zap.Error(err))
		}
	}

	v.fit()
	return v, nil
}

func (v *Viewer) startWatcher() error {
	paths := v.session.WatchPaths()
	if len(paths) == 0 {
		return fmt.Errorf("atlas %s is not on disk", v.cfg.Atlas.Path)
	}
	w, err := watch.New(v.cfg.Atlas.Debounce, logger.Named("watch"))
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := w.Add(p); err != nil {
			w.Close()
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	v.watcher, v.stopWatch = w, cancel
	v.watchDone = make(chan struct{})
	go func() {
		defer close(v.watchDone)
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			v.log.Warn("watcher stopped", zap.Error(err))
		}
	}()
	return nil
}

func (v *Viewer) fit() {
	minX, minY, maxX, maxY := v.session.Scene.Bounds()
	w, h := v.window.Size()
	v.camera.FitToBounds(minX, minY, maxX, maxY, w, h, 16)
}

// Run starts the main loop.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting viewer loop")

	for v.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()
		v.pollReload()

		if v.paused {
			dt = 0
		}
		if err := v.render(dt); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.window.SetTitle(fmt.Sprintf("%s - %s (%d fps)", title, v.cfg.Atlas.Path, frameCount))
			v.log.Debug("fps", zap.Int("count", frameCount), zap.Float32("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			w, h := v.window.DrawableSize()
			v.renderer.Resize(w, h)
		case input.EventMouseDrag:
			v.camera.HandleDrag(event.DX, event.DY)
		case input.EventMouseWheel:
			v.camera.HandleZoom(event.Wheel)
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_SPACE:
				v.paused = !v.paused
			case sdl.SCANCODE_B:
				v.bounds = !v.bounds
			case sdl.SCANCODE_F:
				v.fit()
			case sdl.SCANCODE_P:
				pma := !v.cfg.Render.PremultipliedAlpha
				v.cfg.Render.PremultipliedAlpha = pma
				v.renderer.SetPremultipliedAlpha(pma)
				v.session.Batcher.SetPremultipliedAlpha(pma)
			case sdl.SCANCODE_R:
				v.reload()
			}
		}
	}
}

// pollReload applies a pending atlas change between frames.
func (v *Viewer) pollReload() {
	if v.watcher == nil {
		return
	}
	select {
	case r := <-v.watcher.Reloads():
		v.log.Debug("reload requested", zap.Strings("paths", r.Paths))
		v.reload()
	default:
	}
}

func (v *Viewer) reload() {
	// Errors are logged by the session; the scene keeps drawing.
	_ = v.session.Reload()
	v.renderer.ReleaseTextures()
}

func (v *Viewer) render(dt float32) error {
	frame, err := v.session.Frame(dt)
	if err != nil {
		return err
	}

	w, h := v.window.Size()
	proj := v.camera.ViewProj(w, h)

	v.renderer.Begin()
	v.renderer.Draw(frame, proj)
	if v.bounds {
		v.renderer.DrawOutlines(frame.Outlines, proj, outlineColor)
	}
	return nil
}

// Close releases viewer resources.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.watcher != nil {
		v.stopWatch()
		<-v.watchDone
		v.watcher.Close()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
	if v.session != nil {
		v.session.Close()
	}
}
