// Package renderer draws batched skeleton frames with OpenGL.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-skin/internal/batch"
	"github.com/Faultbox/midgard-skin/internal/engine/shader"
	"github.com/Faultbox/midgard-skin/internal/logger"
	"github.com/Faultbox/midgard-skin/pkg/atlas"
	"github.com/Faultbox/midgard-skin/pkg/gfx"
	"github.com/Faultbox/midgard-skin/pkg/math"
)

const vertexBytes = batch.Stride * 4

// Config holds renderer configuration.
type Config struct {
	Width              int
	Height             int
	PremultipliedAlpha bool
	ClearColor         [4]float32
}

// Renderer uploads page textures once and streams batch geometry through
// one dynamic vertex/index buffer pair.
type Renderer struct {
	config Config
	log    *zap.Logger

	program       *shader.Program
	locProjection int32
	locTexture    int32

	vao, vbo, ibo    uint32
	vboSize, iboSize int // bytes allocated

	textures map[*atlas.Page]uint32
	white    uint32

	lines []float32
}

// New creates a renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:   cfg,
		log:      logger.Named("renderer"),
		textures: make(map[*atlas.Page]uint32),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	program, err := shader.Compile(shader.BatchVertex, shader.BatchFragment)
	if err != nil {
		return nil, fmt.Errorf("batch shader: %w", err)
	}
	r.program = program
	r.locProjection = program.MustUniform("uProjection")
	r.locTexture = program.MustUniform("uTexture")

	r.createBuffers()
	r.white = uploadWhite()

	gl.Disable(gl.DEPTH_TEST)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

func (r *Renderer) createBuffers() {
	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.GenBuffers(1, &r.ibo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, r.ibo)

	// Position (location 0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, vertexBytes, 0)
	gl.EnableVertexAttribArray(0)

	// Packed color (location 1): 0xAARRGGBB is B, G, R, A in memory.
	gl.VertexAttribPointerWithOffset(1, gl.BGRA, gl.UNSIGNED_BYTE, true, vertexBytes, 2*4)
	gl.EnableVertexAttribArray(1)

	// TexCoord (location 2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, vertexBytes, 3*4)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
}

// Close releases GL resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.ReleaseTextures()
	if r.white != 0 {
		gl.DeleteTextures(1, &r.white)
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.ibo != 0 {
		gl.DeleteBuffers(1, &r.ibo)
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// ReleaseTextures drops every uploaded page. Pages are uploaded again on
// their next draw, e.g. after an atlas reload.
func (r *Renderer) ReleaseTextures() {
	for page, id := range r.textures {
		gl.DeleteTextures(1, &id)
		delete(r.textures, page)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// SetPremultipliedAlpha switches the blend mode. Uploaded pages are
// converted again on their next draw.
func (r *Renderer) SetPremultipliedAlpha(pma bool) {
	if pma != r.config.PremultipliedAlpha {
		r.config.PremultipliedAlpha = pma
		r.ReleaseTextures()
	}
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	c := r.config.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (r *Renderer) bind(proj math.Mat3) {
	r.program.Use()
	gl.UniformMatrix3fv(r.locProjection, 1, false, proj.Ptr())
	gl.ActiveTexture(gl.TEXTURE0)
	gl.Uniform1i(r.locTexture, 0)

	gl.Enable(gl.BLEND)
	if r.config.PremultipliedAlpha {
		gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	} else {
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	}
	gl.BindVertexArray(r.vao)
}

// Draw renders every batch of a frame.
func (r *Renderer) Draw(frame *batch.Frame, proj math.Mat3) {
	if len(frame.Batches) == 0 {
		return
	}
	r.bind(proj)
	for _, b := range frame.Batches {
		if len(b.Indices) == 0 {
			continue
		}
		gl.BindTexture(gl.TEXTURE_2D, r.texture(b.Page))
		r.upload(b.Vertices, b.Indices)
		gl.DrawElementsWithOffset(gl.TRIANGLES, int32(len(b.Indices)), gl.UNSIGNED_INT, 0)
	}
	gl.BindVertexArray(0)
}

// DrawOutlines renders bounding box polygons as line loops.
func (r *Renderer) DrawOutlines(outlines []batch.Outline, proj math.Mat3, color gfx.Color) {
	if len(outlines) == 0 {
		return
	}
	packed := color.Packed()
	if r.config.PremultipliedAlpha {
		packed = gfx.PackARGB(color.R*color.A*255, color.G*color.A*255, color.B*color.A*255, color.A*255)
	}

	r.lines = r.lines[:0]
	for _, o := range outlines {
		for i := 0; i+1 < len(o.Points); i += 2 {
			r.lines = append(r.lines, o.Points[i], o.Points[i+1], packed, 0, 0)
		}
	}
	if len(r.lines) == 0 {
		return
	}

	r.bind(proj)
	gl.BindTexture(gl.TEXTURE_2D, r.white)
	r.upload(r.lines, nil)
	first := int32(0)
	for _, o := range outlines {
		n := int32(len(o.Points) / 2)
		if n >= 2 {
			gl.DrawArrays(gl.LINE_LOOP, first, n)
		}
		first += n
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) texture(page *atlas.Page) uint32 {
	if page == nil || page.Image == nil {
		return r.white
	}
	if id, ok := r.textures[page]; ok {
		return id
	}
	id := uploadPage(page, r.config.PremultipliedAlpha)
	r.textures[page] = id
	r.log.Debug("page uploaded",
		zap.String("page", page.Name),
		zap.Int("width", page.Image.Rect.Dx()),
		zap.Int("height", page.Image.Rect.Dy()),
	)
	return id
}

// upload streams geometry, growing the buffers only when they are too small.
func (r *Renderer) upload(vertices []float32, indices []uint32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	if n := len(vertices) * 4; n > 0 {
		if n > r.vboSize {
			r.vboSize = grow(r.vboSize, n)
			gl.BufferData(gl.ARRAY_BUFFER, r.vboSize, nil, gl.DYNAMIC_DRAW)
		}
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, n, gl.Ptr(vertices))
	}

	if n := len(indices) * 4; n > 0 {
		if n > r.iboSize {
			r.iboSize = grow(r.iboSize, n)
			gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, r.iboSize, nil, gl.DYNAMIC_DRAW)
		}
		gl.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, n, gl.Ptr(indices))
	}
}

// grow doubles size until it holds need bytes.
func grow(size, need int) int {
	if size == 0 {
		size = 4096
	}
	for size < need {
		size *= 2
	}
	return size
}
