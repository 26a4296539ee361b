// Package batch turns a posed skeleton into draw batches grouped by atlas
// page, running the vertex effect pipeline on copies of the synthesized
// geometry.
package batch

import (
	"fmt"

	"github.com/Faultbox/midgard-skin/pkg/atlas"
	"github.com/Faultbox/midgard-skin/pkg/attachment"
	"github.com/Faultbox/midgard-skin/pkg/skeleton"
	"github.com/Faultbox/midgard-skin/pkg/vfx"
)

// Stride is the number of floats per batched vertex: x, y, color, u, v.
const Stride = attachment.VertexSize

// Batch is a run of consecutive draws sharing one page texture.
type Batch struct {
	Page     *atlas.Page
	Vertices []float32
	Indices  []uint32
}

// Outline is the world polygon of a bounding box attachment.
type Outline struct {
	Slot   string
	Points []float32
}

// Frame is the output of one Build. Its slices are reused by the next Build.
type Frame struct {
	Batches  []Batch
	Outlines []Outline
}

// VertexCount returns the number of vertices across all batches.
func (f *Frame) VertexCount() int {
	n := 0
	for _, b := range f.Batches {
		n += len(b.Vertices) / Stride
	}
	return n
}

type span struct {
	page               *atlas.Page
	vertStart, vertEnd int
	idxStart, idxEnd   int
}

type outlineSpan struct {
	slot       string
	start, end int
}

// Batcher builds frames. Its storage only grows, so a steady scene
// builds without allocating.
type Batcher struct {
	pipeline *vfx.Pipeline
	pma      bool

	vertices []float32
	indices  []uint32
	points   []float32
	spans    []span
	outlines []outlineSpan
	frame    Frame
}

// New creates a batcher. pipeline may be nil for no effects.
func New(pipeline *vfx.Pipeline, premultipliedAlpha bool) *Batcher {
	if pipeline == nil {
		pipeline = vfx.NewPipeline()
	}
	return &Batcher{pipeline: pipeline, pma: premultipliedAlpha}
}

// SetPipeline replaces the effect chain.
func (b *Batcher) SetPipeline(p *vfx.Pipeline) {
	if p == nil {
		p = vfx.NewPipeline()
	}
	b.pipeline = p
}

// SetPremultipliedAlpha selects how vertex colors are packed.
func (b *Batcher) SetPremultipliedAlpha(pma bool) {
	b.pma = pma
}

// Pipeline returns the effect chain.
func (b *Batcher) Pipeline() *vfx.Pipeline {
	return b.pipeline
}

// Build synthesizes every slot's attachment in draw order and batches the
// results. World transforms must be current.
func (b *Batcher) Build(sk *skeleton.Skeleton) (*Frame, error) {
	if err := sk.UpdateVertices(b.pma); err != nil {
		return nil, err
	}

	b.vertices = b.vertices[:0]
	b.indices = b.indices[:0]
	b.points = b.points[:0]
	b.spans = b.spans[:0]
	b.outlines = b.outlines[:0]

	for _, slot := range sk.Slots() {
		a := slot.Attachment()
		if a == nil {
			continue
		}

		if a.Kind == attachment.KindBoundingBox {
			start := len(b.points)
			b.points = append(b.points, a.Vertices()...)
			b.outlines = append(b.outlines, outlineSpan{slot: slot.Name, start: start, end: len(b.points)})
			continue
		}

		region := a.RegionOf()
		if region == nil {
			return nil, fmt.Errorf("slot %q: %w", slot.Name, attachment.ErrInvalidRegion)
		}
		b.add(sk, region.Page, a.Vertices(), a.Triangles())
	}

	return b.finish(), nil
}

func (b *Batcher) add(sk *skeleton.Skeleton, page *atlas.Page, vertices []float32, triangles []uint16) {
	if len(b.spans) == 0 || b.spans[len(b.spans)-1].page != page {
		b.spans = append(b.spans, span{
			page:      page,
			vertStart: len(b.vertices),
			idxStart:  len(b.indices),
		})
	}
	s := &b.spans[len(b.spans)-1]

	base := uint32((len(b.vertices) - s.vertStart) / Stride)
	start := len(b.vertices)
	b.vertices = append(b.vertices, vertices...)

	copied := b.vertices[start:]
	b.pipeline.Begin(sk)
	b.pipeline.Apply(copied, Stride)
	b.pipeline.End()

	for _, t := range triangles {
		b.indices = append(b.indices, base+uint32(t))
	}
	s.vertEnd = len(b.vertices)
	s.idxEnd = len(b.indices)
}

func (b *Batcher) finish() *Frame {
	f := &b.frame
	f.Batches = f.Batches[:0]
	for _, s := range b.spans {
		f.Batches = append(f.Batches, Batch{
			Page:     s.page,
			Vertices: b.vertices[s.vertStart:s.vertEnd],
			Indices:  b.indices[s.idxStart:s.idxEnd],
		})
	}
	f.Outlines = f.Outlines[:0]
	for _, o := range b.outlines {
		f.Outlines = append(f.Outlines, Outline{Slot: o.slot, Points: b.points[o.start:o.end]})
	}
	return f
}
