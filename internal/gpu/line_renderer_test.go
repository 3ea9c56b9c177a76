package gpu

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"golang.org/x/image/math/f32"

	"github.com/gogpu/plotline"
)

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func testBounds() plotline.Bounds {
	return plotline.Bounds{XMin: -1, XMax: 1, YMin: -1, YMax: 1}
}

func testVertexData(points int) []byte {
	pts := make([]f32.Vec2, points)
	for i := range pts {
		pts[i] = f32.Vec2{float32(i), float32(i % 2)}
	}
	vs := plotline.BuildStrip(pts, plotline.RGB(1, 1, 1))
	return plotline.EncodeVertices(vs)
}

func TestLineRendererCreation(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewLineRenderer(device, queue, Config{})
	defer r.Destroy()

	if r.device == nil {
		t.Error("expected non-nil device")
	}
	if r.queue == nil {
		t.Error("expected non-nil queue")
	}

	// Before first Prepare, all GPU objects should be nil.
	if r.shader != nil {
		t.Error("expected nil shader before first Prepare")
	}
	if r.pipeline != nil {
		t.Error("expected nil pipeline before first Prepare")
	}
	if r.vertexBuf != nil {
		t.Error("expected nil vertex buffer before first Prepare")
	}
}

func TestLineRendererConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.Format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("default format = %v, want BGRA8Unorm", cfg.Format)
	}
	if cfg.MaxVertices != DefaultMaxVertices {
		t.Errorf("default MaxVertices = %d, want %d", cfg.MaxVertices, DefaultMaxVertices)
	}
	if cfg.SampleCount != 1 {
		t.Errorf("default SampleCount = %d, want 1", cfg.SampleCount)
	}

	custom := Config{MaxVertices: 100, SampleCount: 4}.withDefaults()
	if custom.MaxVertices != 100 || custom.SampleCount != 4 {
		t.Errorf("explicit values overridden: %+v", custom)
	}
}

func TestLineRendererPipeline(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewLineRenderer(device, queue, Config{})
	defer r.Destroy()

	if err := r.ensurePipeline(); err != nil {
		t.Fatalf("ensurePipeline failed: %v", err)
	}

	if r.shader == nil {
		t.Error("expected non-nil shader")
	}
	if r.uniformLayout == nil {
		t.Error("expected non-nil uniformLayout")
	}
	if r.pipeLayout == nil {
		t.Error("expected non-nil pipeLayout")
	}
	if r.pipeline == nil {
		t.Error("expected non-nil pipeline")
	}

	// Idempotent: calling again should not re-create.
	origPipeline := r.pipeline
	if err := r.ensurePipeline(); err != nil {
		t.Fatalf("second ensurePipeline failed: %v", err)
	}
	if r.pipeline != origPipeline {
		t.Error("pipeline was recreated unnecessarily")
	}
}

func TestLineRendererPrepare(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewLineRenderer(device, queue, Config{})
	defer r.Destroy()

	data := testVertexData(10)
	if err := r.Prepare(testBounds(), data, true); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	if r.vertexBuf == nil {
		t.Error("expected vertex buffer after Prepare")
	}
	if r.uniformBuf == nil {
		t.Error("expected uniform buffer after Prepare")
	}
	if r.bindGroup == nil {
		t.Error("expected bind group after Prepare")
	}

	// 10 points * 2 strip vertices.
	if got := r.VertexCount(); got != 20 {
		t.Errorf("VertexCount = %d, want 20", got)
	}

	// Persistent resources survive across frames.
	origVertexBuf := r.vertexBuf
	origBindGroup := r.bindGroup
	if err := r.Prepare(testBounds(), data, false); err != nil {
		t.Fatalf("second Prepare failed: %v", err)
	}
	if r.vertexBuf != origVertexBuf {
		t.Error("vertex buffer was recreated")
	}
	if r.bindGroup != origBindGroup {
		t.Error("bind group was recreated")
	}
}

func TestLineRendererPrepareCleanKeepsVertexCount(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewLineRenderer(device, queue, Config{})
	defer r.Destroy()

	if err := r.Prepare(testBounds(), testVertexData(10), true); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	// A clean Prepare with different data must not change the uploaded count.
	if err := r.Prepare(testBounds(), testVertexData(50), false); err != nil {
		t.Fatalf("clean Prepare failed: %v", err)
	}
	if got := r.VertexCount(); got != 20 {
		t.Errorf("VertexCount after clean Prepare = %d, want 20", got)
	}

	// A dirty Prepare picks up the new data.
	if err := r.Prepare(testBounds(), testVertexData(50), true); err != nil {
		t.Fatalf("dirty Prepare failed: %v", err)
	}
	if got := r.VertexCount(); got != 100 {
		t.Errorf("VertexCount after dirty Prepare = %d, want 100", got)
	}
}

func TestLineRendererPrepareDegenerateBounds(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewLineRenderer(device, queue, Config{})
	defer r.Destroy()

	degenerate := []plotline.Bounds{
		{XMin: 0, XMax: 0, YMin: 0, YMax: 1},
		{XMin: 0, XMax: 1, YMin: 1, YMax: 1},
		{XMin: 1, XMax: 0, YMin: 0, YMax: 1},
	}
	for _, b := range degenerate {
		if err := r.Prepare(b, nil, false); err == nil {
			t.Errorf("Prepare accepted degenerate bounds %+v", b)
		}
	}
}

func TestLineRendererPrepareOverflow(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewLineRenderer(device, queue, Config{MaxVertices: 10})
	defer r.Destroy()

	// 10 points encode as 20 strip vertices, above the capacity of 10.
	err := r.Prepare(testBounds(), testVertexData(10), true)
	if err == nil {
		t.Fatal("expected error for vertex data beyond capacity")
	}
}

func TestLineRendererPrepareBadStride(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewLineRenderer(device, queue, Config{})
	defer r.Destroy()

	if err := r.Prepare(testBounds(), make([]byte, plotline.VertexStride+1), true); err == nil {
		t.Fatal("expected error for misaligned vertex data")
	}
}

func TestLineRendererRenderFrame(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewLineRenderer(device, queue, Config{})
	defer r.Destroy()

	if err := r.Prepare(testBounds(), testVertexData(100), true); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	target := plotline.NewRenderTarget(64, 64)
	if err := r.RenderFrame(target); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}

	if r.colorTex == nil {
		t.Error("expected color texture after RenderFrame")
	}
	if r.resolveTex != nil {
		t.Error("expected no resolve texture at sample count 1")
	}

	// Textures persist across same-size frames.
	origTex := r.colorTex
	if err := r.RenderFrame(target); err != nil {
		t.Fatalf("second RenderFrame failed: %v", err)
	}
	if r.colorTex != origTex {
		t.Error("color texture was recreated at unchanged dimensions")
	}

	// Resize reallocates.
	if err := r.RenderFrame(plotline.NewRenderTarget(32, 32)); err != nil {
		t.Fatalf("resized RenderFrame failed: %v", err)
	}
	if r.colorTex == origTex {
		t.Error("color texture was not recreated after resize")
	}
	if r.width != 32 || r.height != 32 {
		t.Errorf("dimensions = %dx%d, want 32x32", r.width, r.height)
	}
}

func TestLineRendererRecordDraws(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewLineRenderer(device, queue, Config{})
	defer r.Destroy()

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "test_host_color",
		Size:          hal.Extent3D{Width: 16, Height: 16, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	defer device.DestroyTexture(tex)

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "test_host_color_view",
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		t.Fatalf("CreateTextureView failed: %v", err)
	}
	defer device.DestroyTextureView(view)

	// Records into a render pass the host owns, the way an embedding app
	// draws the plot as one layer of its own frame.
	recordPass := func(t *testing.T) {
		t.Helper()
		encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
			Label: "test_host_encoder",
		})
		if err != nil {
			t.Fatalf("CreateCommandEncoder failed: %v", err)
		}
		if err := encoder.BeginEncoding("test_host_frame"); err != nil {
			t.Fatalf("BeginEncoding failed: %v", err)
		}
		rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: "test_host_pass",
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:    view,
				LoadOp:  gputypes.LoadOpClear,
				StoreOp: gputypes.StoreOpStore,
			}},
		})
		r.RecordDraws(rp)
		rp.End()
		cmdBuf, err := encoder.EndEncoding()
		if err != nil {
			t.Fatalf("EndEncoding failed: %v", err)
		}
		device.FreeCommandBuffer(cmdBuf)
	}

	// Before Prepare there is no pipeline; RecordDraws must leave the pass
	// untouched rather than record with nil resources.
	recordPass(t)
	if r.pipeline != nil {
		t.Error("RecordDraws before Prepare created a pipeline")
	}

	if err := r.Prepare(testBounds(), testVertexData(10), true); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	recordPass(t)
	if got := r.VertexCount(); got != 20 {
		t.Errorf("VertexCount = %d, want 20", got)
	}

	// An empty frame records nothing.
	if err := r.Prepare(testBounds(), nil, true); err != nil {
		t.Fatalf("empty Prepare failed: %v", err)
	}
	recordPass(t)
	if got := r.VertexCount(); got != 0 {
		t.Errorf("VertexCount after empty Prepare = %d, want 0", got)
	}
}

func TestLineRendererRenderFrameMSAA(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewLineRenderer(device, queue, Config{SampleCount: 4})
	defer r.Destroy()

	if err := r.Prepare(testBounds(), testVertexData(10), true); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if err := r.RenderFrame(plotline.NewRenderTarget(64, 64)); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if r.resolveTex == nil {
		t.Error("expected resolve texture at sample count 4")
	}
}

func TestLineRendererRenderFrameBeforePrepare(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewLineRenderer(device, queue, Config{})
	defer r.Destroy()

	if err := r.RenderFrame(plotline.NewRenderTarget(16, 16)); err == nil {
		t.Fatal("expected error for RenderFrame before Prepare")
	}
}

func TestLineRendererRenderFrameShortTarget(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewLineRenderer(device, queue, Config{})
	defer r.Destroy()

	if err := r.Prepare(testBounds(), testVertexData(10), true); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	// A hand-built target whose Data cannot hold 8*8 pixels.
	target := &plotline.RenderTarget{
		Data:   make([]uint8, 16),
		Width:  8,
		Height: 8,
		Stride: 32,
	}
	err := r.RenderFrame(target)
	if !errors.Is(err, plotline.ErrShortTargetData) {
		t.Fatalf("RenderFrame error = %v, want ErrShortTargetData", err)
	}
}

func TestLineRendererDestroy(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewLineRenderer(device, queue, Config{})

	if err := r.Prepare(testBounds(), testVertexData(10), true); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if err := r.RenderFrame(plotline.NewRenderTarget(16, 16)); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}

	r.Destroy()

	if r.shader != nil {
		t.Error("expected nil shader after Destroy")
	}
	if r.pipeline != nil {
		t.Error("expected nil pipeline after Destroy")
	}
	if r.vertexBuf != nil {
		t.Error("expected nil vertex buffer after Destroy")
	}
	if r.bindGroup != nil {
		t.Error("expected nil bind group after Destroy")
	}
	if r.colorTex != nil {
		t.Error("expected nil color texture after Destroy")
	}

	// Double-destroy should be safe.
	r.Destroy()
}

func TestLineRendererDestroyBeforeCreate(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewLineRenderer(device, queue, Config{})
	r.Destroy()
}

func TestLineShaderCompilation(t *testing.T) {
	if lineShaderSource == "" {
		t.Fatal("line shader source is empty")
	}
	for _, entry := range []string{"vs_main", "fs_main"} {
		if !strings.Contains(lineShaderSource, entry) {
			t.Errorf("shader source missing entry point %s", entry)
		}
	}

	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	// The pipeline hands SPIR-V words to the HAL; exercise the same path.
	spirvCode, err := CompileLineShader()
	if err != nil {
		t.Fatalf("CompileLineShader failed: %v", err)
	}
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "test_line_shader",
		Source: hal.ShaderSource{SPIRV: spirvCode},
	})
	if err != nil {
		t.Fatalf("shader compilation failed: %v", err)
	}
	if module == nil {
		t.Error("expected non-nil shader module")
	}
}

func TestLineVertexLayout(t *testing.T) {
	layout := lineVertexLayout()
	if len(layout) != 1 {
		t.Fatalf("expected 1 buffer layout, got %d", len(layout))
	}

	vbl := layout[0]
	if vbl.ArrayStride != plotline.VertexStride {
		t.Errorf("expected stride %d, got %d", plotline.VertexStride, vbl.ArrayStride)
	}

	// 3 attributes: position, normal, color.
	if len(vbl.Attributes) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(vbl.Attributes))
	}
	if vbl.Attributes[0].Offset != 0 || vbl.Attributes[0].ShaderLocation != 0 {
		t.Errorf("position attribute at offset=%d location=%d, want 0/0",
			vbl.Attributes[0].Offset, vbl.Attributes[0].ShaderLocation)
	}
	if vbl.Attributes[1].Offset != 8 || vbl.Attributes[1].ShaderLocation != 1 {
		t.Errorf("normal attribute at offset=%d location=%d, want 8/1",
			vbl.Attributes[1].Offset, vbl.Attributes[1].ShaderLocation)
	}
	if vbl.Attributes[2].Offset != 16 || vbl.Attributes[2].ShaderLocation != 2 {
		t.Errorf("color attribute at offset=%d location=%d, want 16/2",
			vbl.Attributes[2].Offset, vbl.Attributes[2].ShaderLocation)
	}
	if vbl.Attributes[2].Format != gputypes.VertexFormatFloat32x4 {
		t.Errorf("color attribute format = %v, want Float32x4", vbl.Attributes[2].Format)
	}
}

func TestMakeViewUniform(t *testing.T) {
	b := plotline.Bounds{XMin: -2, XMax: 3, YMin: 0.5, YMax: 10}
	buf := makeViewUniform(b)
	if len(buf) != viewUniformSize {
		t.Fatalf("uniform size = %d, want %d", len(buf), viewUniformSize)
	}

	got := [4]float32{}
	for i := range got {
		got[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
	}
	want := [4]float32{-2, 3, 0.5, 10}
	if got != want {
		t.Errorf("uniform = %v, want %v", got, want)
	}
}

func TestConvertBGRAToRGBA(t *testing.T) {
	src := []byte{
		10, 20, 30, 40,
		50, 60, 70, 80,
	}
	dst := make([]byte, len(src))
	convertBGRAToRGBA(src, dst, 2)

	want := []byte{
		30, 20, 10, 40,
		70, 60, 50, 80,
	}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %d, want %d", i, dst[i], want[i])
		}
	}
}
