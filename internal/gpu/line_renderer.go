package gpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/plotline"
)

// viewUniformSize is the byte size of the view bounds uniform buffer.
// Layout: x_range (vec2<f32>) + y_range (vec2<f32>) = 16 bytes.
const viewUniformSize = 16

// DefaultMaxVertices bounds the persistent vertex buffer allocation.
// At 32 bytes per vertex this reserves 160 MB of GPU memory, enough for
// 2.5 million line points with their duplicated strip vertices.
const DefaultMaxVertices = 5_000_000

// Config controls LineRenderer resource allocation. Zero values select
// defaults: BGRA8Unorm output, DefaultMaxVertices capacity, no MSAA.
type Config struct {
	// Format is the color target format. Defaults to BGRA8Unorm.
	Format gputypes.TextureFormat

	// MaxVertices caps the persistent vertex buffer. Defaults to
	// DefaultMaxVertices.
	MaxVertices int

	// SampleCount selects MSAA samples for offscreen rendering. Defaults
	// to 1 (no multisampling; edge quality comes from shader feathering).
	SampleCount uint32
}

func (c Config) withDefaults() Config {
	if c.Format == 0 {
		c.Format = gputypes.TextureFormatBGRA8Unorm
	}
	if c.MaxVertices == 0 {
		c.MaxVertices = DefaultMaxVertices
	}
	if c.SampleCount == 0 {
		c.SampleCount = 1
	}
	return c
}

// LineRenderer manages GPU resources for antialiased line strip rendering.
//
// The vertex buffer is allocated once at MaxVertices capacity and rewritten
// only when the host marks vertex data dirty. The 16-byte view bounds
// uniform is rewritten on every Prepare call, so panning and zooming never
// touch vertex memory. The bind group is created once alongside the uniform
// buffer and reused for the renderer's lifetime.
//
// All methods are safe for use from a single goroutine at a time; a mutex
// guards against concurrent Prepare and Destroy.
type LineRenderer struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue
	cfg    Config

	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	pipeline      hal.RenderPipeline

	vertexBuf  hal.Buffer
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup

	// Offscreen color textures. resolveTex is nil when SampleCount is 1;
	// colorTex is then both the render attachment and the copy source.
	colorTex    hal.Texture
	colorView   hal.TextureView
	resolveTex  hal.Texture
	resolveView hal.TextureView

	width, height uint32
	vertexCount   uint32
}

// NewLineRenderer creates a renderer on the given device and queue. Pipeline
// and buffers are created lazily on first use; textures are created when a
// frame is rendered at known dimensions.
func NewLineRenderer(device hal.Device, queue hal.Queue, cfg Config) *LineRenderer {
	return &LineRenderer{
		device: device,
		queue:  queue,
		cfg:    cfg.withDefaults(),
	}
}

// Destroy releases all GPU resources. Safe to call multiple times.
func (r *LineRenderer) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyTextures()
	r.destroyBuffers()
	r.destroyPipeline()
}

// VertexCount returns the number of vertices the last Prepare uploaded.
func (r *LineRenderer) VertexCount() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vertexCount
}

// Prepare uploads per-frame state. The bounds uniform is written on every
// call; vertexData is written to the vertex buffer only when dirty is true.
// vertexData length must be a multiple of the vertex stride and fit within
// the configured MaxVertices.
func (r *LineRenderer) Prepare(bounds plotline.Bounds, vertexData []byte, dirty bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := bounds.Validate(); err != nil {
		return err
	}
	if len(vertexData)%plotline.VertexStride != 0 {
		return fmt.Errorf("plotline: vertex data length %d is not a multiple of stride %d",
			len(vertexData), plotline.VertexStride)
	}
	count := len(vertexData) / plotline.VertexStride
	if count > r.cfg.MaxVertices {
		return fmt.Errorf("plotline: %d vertices exceeds configured capacity %d",
			count, r.cfg.MaxVertices)
	}

	if err := r.ensurePipeline(); err != nil {
		return err
	}
	if err := r.ensureBuffers(); err != nil {
		return err
	}

	r.queue.WriteBuffer(r.uniformBuf, 0, makeViewUniform(bounds))
	if dirty {
		if len(vertexData) > 0 {
			r.queue.WriteBuffer(r.vertexBuf, 0, vertexData)
		}
		r.vertexCount = uint32(count) //nolint:gosec // bounded by MaxVertices
	}
	return nil
}

// RecordDraws records the line strip draw into an existing render pass owned
// by the host. Prepare must have been called for the current frame.
func (r *LineRenderer) RecordDraws(rp hal.RenderPassEncoder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pipeline == nil || r.vertexCount == 0 {
		return
	}
	r.recordStripDraw(rp)
}

// recordStripDraw records the strip draw commands. Callers hold r.mu and have
// checked that the pipeline exists and vertexCount is nonzero.
func (r *LineRenderer) recordStripDraw(rp hal.RenderPassEncoder) {
	rp.SetPipeline(r.pipeline)
	rp.SetBindGroup(0, r.bindGroup, nil)
	rp.SetVertexBuffer(0, r.vertexBuf, 0)
	rp.Draw(r.vertexCount, 1, 0, 0)
}

// RenderFrame renders the prepared line strips into target. It owns the full
// offscreen path: texture allocation at the target's dimensions, render pass
// encoding, submit, fence wait, and pixel readback. Pixels are converted to
// RGBA order in target.Data.
func (r *LineRenderer) RenderFrame(target *plotline.RenderTarget) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pipeline == nil {
		return fmt.Errorf("plotline: RenderFrame before Prepare")
	}
	if need := target.Width * target.Height * 4; len(target.Data) < need {
		return fmt.Errorf("%w: have %d bytes, need %d",
			plotline.ErrShortTargetData, len(target.Data), need)
	}
	w, h := uint32(target.Width), uint32(target.Height) //nolint:gosec // dimensions fit uint32
	if err := r.ensureTextures(w, h); err != nil {
		return err
	}
	return r.encodeAndReadback(w, h, target)
}

// ensurePipeline compiles the line shader and creates the render pipeline
// with straight alpha blending and triangle strip topology.
func (r *LineRenderer) ensurePipeline() error {
	if r.pipeline != nil {
		return nil
	}

	// Compile WGSL to SPIR-V up front so shader errors surface here rather
	// than inside the backend.
	spirvCode, err := CompileLineShader()
	if err != nil {
		return err
	}
	shader, err := r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "plotline_shader",
		Source: hal.ShaderSource{SPIRV: spirvCode},
	})
	if err != nil {
		return fmt.Errorf("create line shader module: %w", err)
	}
	r.shader = shader

	uniformLayout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "plotline_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		r.destroyPipeline()
		return fmt.Errorf("create uniform layout: %w", err)
	}
	r.uniformLayout = uniformLayout

	pipeLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "plotline_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{r.uniformLayout},
	})
	if err != nil {
		r.destroyPipeline()
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	r.pipeLayout = pipeLayout

	// Vertex colors are straight alpha; the fragment shader scales alpha
	// for edge feathering, so blending multiplies by source alpha.
	alphaBlend := gputypes.BlendState{
		Color: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
		Alpha: gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorOne,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		},
	}
	pipeline, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "plotline_pipeline",
		Layout: r.pipeLayout,
		Vertex: hal.VertexState{
			Module:     r.shader,
			EntryPoint: "vs_main",
			Buffers:    lineVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     r.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    r.cfg.Format,
					Blend:     &alphaBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: r.cfg.SampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		r.destroyPipeline()
		return fmt.Errorf("create render pipeline: %w", err)
	}
	r.pipeline = pipeline

	plotline.Logger().Debug("line pipeline created",
		"format", r.cfg.Format, "samples", r.cfg.SampleCount)
	return nil
}

// ensureBuffers allocates the persistent vertex and uniform buffers and the
// bind group. All three live for the renderer's lifetime.
func (r *LineRenderer) ensureBuffers() error {
	if r.vertexBuf != nil {
		return nil
	}

	vertexBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "plotline_verts",
		Size:  uint64(r.cfg.MaxVertices) * plotline.VertexStride, //nolint:gosec // MaxVertices is positive
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create vertex buffer: %w", err)
	}
	r.vertexBuf = vertexBuf

	uniformBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "plotline_uniform",
		Size:  viewUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		r.destroyBuffers()
		return fmt.Errorf("create uniform buffer: %w", err)
	}
	r.uniformBuf = uniformBuf

	bindGroup, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "plotline_bind",
		Layout: r.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: viewUniformSize,
			}},
		},
	})
	if err != nil {
		r.destroyBuffers()
		return fmt.Errorf("create bind group: %w", err)
	}
	r.bindGroup = bindGroup
	return nil
}

// ensureTextures creates or recreates the offscreen color textures when the
// requested dimensions differ from the current size.
func (r *LineRenderer) ensureTextures(w, h uint32) error {
	if r.width == w && r.height == h && r.colorTex != nil {
		return nil
	}
	r.destroyTextures()

	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}
	msaa := r.cfg.SampleCount > 1

	colorUsage := gputypes.TextureUsageRenderAttachment
	if !msaa {
		colorUsage |= gputypes.TextureUsageCopySrc
	}
	colorTex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "plotline_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   r.cfg.SampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        r.cfg.Format,
		Usage:         colorUsage,
	})
	if err != nil {
		return fmt.Errorf("create color texture: %w", err)
	}
	r.colorTex = colorTex

	colorView, err := r.device.CreateTextureView(colorTex, &hal.TextureViewDescriptor{
		Label:         "plotline_color_view",
		Format:        r.cfg.Format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.destroyTextures()
		return fmt.Errorf("create color view: %w", err)
	}
	r.colorView = colorView

	if msaa {
		resolveTex, err := r.device.CreateTexture(&hal.TextureDescriptor{
			Label:         "plotline_resolve",
			Size:          size,
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        r.cfg.Format,
			Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
		})
		if err != nil {
			r.destroyTextures()
			return fmt.Errorf("create resolve texture: %w", err)
		}
		r.resolveTex = resolveTex

		resolveView, err := r.device.CreateTextureView(resolveTex, &hal.TextureViewDescriptor{
			Label:         "plotline_resolve_view",
			Format:        r.cfg.Format,
			Dimension:     gputypes.TextureViewDimension2D,
			Aspect:        gputypes.TextureAspectAll,
			MipLevelCount: 1,
		})
		if err != nil {
			r.destroyTextures()
			return fmt.Errorf("create resolve view: %w", err)
		}
		r.resolveView = resolveView
	}

	r.width = w
	r.height = h
	return nil
}

// encodeAndReadback encodes the render pass, copies the readable texture to
// a staging buffer, submits, waits, and reads pixels into target.Data.
func (r *LineRenderer) encodeAndReadback(w, h uint32, target *plotline.RenderTarget) error {
	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "plotline_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("plotline_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	attachment := hal.RenderPassColorAttachment{
		View:       r.colorView,
		LoadOp:     gputypes.LoadOpClear,
		StoreOp:    gputypes.StoreOpStore,
		ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
	}
	readableTex := r.colorTex
	if r.resolveView != nil {
		attachment.ResolveTarget = r.resolveView
		readableTex = r.resolveTex
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            "plotline_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{attachment},
	})
	if r.vertexCount > 0 {
		r.recordStripDraw(rp)
	}
	rp.End()

	// On Vulkan the texture is in COLOR_ATTACHMENT_OPTIMAL layout after the
	// pass ends, but CopyTextureToBuffer requires TRANSFER_SRC_OPTIMAL.
	// No-op on other backends.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: readableTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	pixelBufSize := uint64(w) * uint64(h) * 4
	stagingBuf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "plotline_staging",
		Size:  pixelBufSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer r.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(readableTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: readableTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	fence, err := r.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := r.device.Wait(fence, 1, 5*time.Second)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, pixelBufSize)
	if err := r.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}

	pixels := int(w) * int(h)
	if r.cfg.Format == gputypes.TextureFormatBGRA8Unorm {
		convertBGRAToRGBA(readback, target.Data, pixels)
	} else {
		copy(target.Data, readback)
	}
	return nil
}

func (r *LineRenderer) destroyTextures() {
	if r.resolveView != nil {
		r.device.DestroyTextureView(r.resolveView)
		r.resolveView = nil
	}
	if r.resolveTex != nil {
		r.device.DestroyTexture(r.resolveTex)
		r.resolveTex = nil
	}
	if r.colorView != nil {
		r.device.DestroyTextureView(r.colorView)
		r.colorView = nil
	}
	if r.colorTex != nil {
		r.device.DestroyTexture(r.colorTex)
		r.colorTex = nil
	}
	r.width = 0
	r.height = 0
}

func (r *LineRenderer) destroyBuffers() {
	if r.bindGroup != nil {
		r.device.DestroyBindGroup(r.bindGroup)
		r.bindGroup = nil
	}
	if r.uniformBuf != nil {
		r.device.DestroyBuffer(r.uniformBuf)
		r.uniformBuf = nil
	}
	if r.vertexBuf != nil {
		r.device.DestroyBuffer(r.vertexBuf)
		r.vertexBuf = nil
	}
	r.vertexCount = 0
}

// destroyPipeline releases pipeline resources in reverse creation order.
func (r *LineRenderer) destroyPipeline() {
	if r.device == nil {
		return
	}
	if r.pipeline != nil {
		r.device.DestroyRenderPipeline(r.pipeline)
		r.pipeline = nil
	}
	if r.pipeLayout != nil {
		r.device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.uniformLayout != nil {
		r.device.DestroyBindGroupLayout(r.uniformLayout)
		r.uniformLayout = nil
	}
	if r.shader != nil {
		r.device.DestroyShaderModule(r.shader)
		r.shader = nil
	}
}

// lineVertexLayout returns the vertex buffer layout for the line pipeline.
func lineVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: plotline.VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},  // normal
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2}, // color
			},
		},
	}
}

// makeViewUniform encodes bounds as the 16-byte view uniform.
// Layout: x_range (vec2<f32>) + y_range (vec2<f32>).
func makeViewUniform(b plotline.Bounds) []byte {
	buf := make([]byte, viewUniformSize)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(b.XMin))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(b.XMax))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(b.YMin))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(b.YMax))
	return buf
}

// convertBGRAToRGBA converts n pixels from BGRA byte order to RGBA.
func convertBGRAToRGBA(src, dst []byte, n int) {
	for i := 0; i < n; i++ {
		o := i * 4
		dst[o+0] = src[o+2]
		dst[o+1] = src[o+1]
		dst[o+2] = src[o+0]
		dst[o+3] = src[o+3]
	}
}
