package main

import (
	"flag"
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-skin/internal/logger"
	"github.com/Faultbox/midgard-skin/internal/preview"
	"github.com/Faultbox/midgard-skin/internal/session"
	"github.com/Faultbox/midgard-skin/pkg/vfx"
)

func cmdPreview(args []string) {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	output := fs.String("o", "", "Output file (default from config)")
	format := fs.String("format", "", "Output format: webp or png (default from config)")
	at := fs.Float64("time", -1, "Seconds into the animation (default from config)")
	noBounds := fs.Bool("no-bounds", false, "Do not draw bounding boxes")
	listCurves := fs.Bool("curves", false, "List the interpolation names usable by effects and exit")
	cfg := setup(fs, args)
	defer logger.Sync()

	if *listCurves {
		for _, name := range vfx.InterpolationNames() {
			fmt.Println(name)
		}
		return
	}
	if cfg.Atlas.Path == "" {
		usage("preview [options] <atlas>")
	}
	if *output != "" {
		cfg.Preview.Output = *output
	}
	if *format != "" {
		cfg.Preview.Format = *format
	}
	if *at >= 0 {
		cfg.Preview.Time = float32(*at)
	}
	if *noBounds {
		cfg.Preview.DrawBounds = false
	}

	s, err := session.Open(cfg, logger.Log)
	if err != nil {
		fail(err)
	}
	defer s.Close()

	frame, err := s.Frame(cfg.Preview.Time)
	if err != nil {
		fail(err)
	}

	minX, minY, maxX, maxY := s.Scene.Bounds()
	width := int(math32.Ceil(maxX - minX))
	height := int(math32.Ceil(maxY - minY))
	view := preview.View{X: minX, Y: minY, Scale: 1}

	r := preview.NewRasterizer(width, height, cfg.Render.PremultipliedAlpha)
	img := r.Render(frame, view)
	out, err := preview.DrawOutlines(img, frame.Outlines, view)
	if err != nil {
		fail(err)
	}
	if err := preview.Save(cfg.Preview.Output, out, cfg.Preview.Format); err != nil {
		fail(err)
	}

	logger.Info("preview written",
		zap.String("path", cfg.Preview.Output),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("vertices", frame.VertexCount()),
	)
	fmt.Printf("Wrote %s (%dx%d, %d batches, %d vertices)\n",
		cfg.Preview.Output, width, height, len(frame.Batches), frame.VertexCount())
}
