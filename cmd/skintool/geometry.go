package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/midgard-skin/internal/logger"
	"github.com/Faultbox/midgard-skin/pkg/attachment"
	"github.com/Faultbox/midgard-skin/pkg/gfx"
	"github.com/Faultbox/midgard-skin/pkg/skeleton"
)

func cmdQuad(args []string) {
	fs := flag.NewFlagSet("quad", flag.ExitOnError)
	boneX := fs.Float64("x", 0, "Bone X")
	boneY := fs.Float64("y", 0, "Bone Y")
	boneRot := fs.Float64("rotation", 0, "Bone rotation in degrees")
	boneScale := fs.Float64("scale", 1, "Bone scale")
	width := fs.Float64("width", 0, "Attachment width (0 = region size)")
	height := fs.Float64("height", 0, "Attachment height (0 = region size)")
	alpha := fs.Float64("alpha", 1, "Slot alpha")
	cfg := setup(fs, args)
	if fs.NArg() < 2 {
		usage("quad [options] <atlas> <region>")
	}
	defer logger.Sync()

	m := openSources(cfg)
	defer m.Close()
	a := parseAtlas(m, cfg.Atlas.Path)

	loader := attachment.NewAtlasLoader(a, logger.Named("loader"))
	att, err := loader.NewAttachment("default", attachment.KindRegion, fs.Arg(1))
	if err != nil {
		fail(err)
	}
	if *width > 0 || *height > 0 {
		if *width > 0 {
			att.Region.Width = float32(*width)
		}
		if *height > 0 {
			att.Region.Height = float32(*height)
		}
		att.Region.UpdateOffset()
	}

	sk := skeleton.New()
	bone, err := sk.AddBone("root", nil)
	if err != nil {
		fail(err)
	}
	bone.X, bone.Y = float32(*boneX), float32(*boneY)
	bone.Rotation = float32(*boneRot)
	bone.ScaleX, bone.ScaleY = float32(*boneScale), float32(*boneScale)
	slot, err := sk.AddSlot("slot", bone)
	if err != nil {
		fail(err)
	}
	slot.Tint = gfx.White.WithAlpha(float32(*alpha))
	slot.SetAttachment(att)

	sk.UpdateWorldTransform()
	if err := sk.UpdateVertices(cfg.Render.PremultipliedAlpha); err != nil {
		fail(err)
	}

	fmt.Printf("region %s  size=%gx%g  pma=%v\n", att.Name, att.Region.Width, att.Region.Height, cfg.Render.PremultipliedAlpha)
	corners := [...]string{"BL", "UL", "UR", "BR"}
	v := att.Vertices()
	for i, name := range corners {
		o := i * attachment.VertexSize
		fmt.Printf("  %s  x=%10.4f y=%10.4f color=0x%08X u=%.6f v=%.6f\n",
			name, v[o], v[o+1], gfx.PackedBits(v[o+2]), v[o+3], v[o+4])
	}
}

func cmdFrame(args []string) {
	fs := flag.NewFlagSet("frame", flag.ExitOnError)
	modeName := fs.String("mode", "forwardLoop", "Sequence mode (forward, forwardLoop, backward, backwardLoop, pingPong, random)")
	duration := fs.Float64("duration", attachment.DefaultFrameDuration, "Seconds per frame")
	at := fs.Float64("time", 0, "Seconds since the attachment was set")
	steps := fs.Int("steps", 0, "Also print the frames of N further steps of one duration each")
	cfg := setup(fs, args)
	if fs.NArg() < 2 {
		usage("frame [options] <atlas> <name>")
	}
	defer logger.Sync()

	mode, err := attachment.ParseSequenceMode(*modeName)
	if err != nil {
		fail(err)
	}

	m := openSources(cfg)
	defer m.Close()
	a := parseAtlas(m, cfg.Atlas.Path)

	frames := a.FindRegions(fs.Arg(1))
	if len(frames) == 0 {
		fail(fmt.Errorf("%w: %q", attachment.ErrRegionNotFound, fs.Arg(1)))
	}
	seq := &attachment.SequenceExtra{
		Frames:        frames,
		FrameDuration: float32(*duration),
		Mode:          mode,
	}

	fmt.Printf("%s: %d frames, %s, %gs per frame\n", fs.Arg(1), len(frames), mode, *duration)
	for i := 0; i <= *steps; i++ {
		t := float32(*at) + float32(i)*seq.FrameDuration
		idx, err := seq.FrameIndex(t)
		if err != nil {
			fail(err)
		}
		r := frames[idx]
		fmt.Printf("  t=%8.3f  frame %d  (index %d, %s xy=%d,%d)\n", t, idx, r.Index, r.Page.Name, r.X, r.Y)
	}
	if *steps == 0 && len(frames) == 1 {
		fmt.Fprintln(os.Stderr, "(single frame: always frame 0)")
	}
}
