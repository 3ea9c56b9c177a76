package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed shaders/line.wgsl
var lineShaderSource string

// LineWidth is the half width of rendered lines in clip space units,
// mirroring LINE_WIDTH in line.wgsl. At the default 800 pixel viewport this
// widens each side of the centerline by about one pixel.
const LineWidth = 0.0025

// Feather is the fraction of the half width over which edge alpha fades,
// mirroring FEATHER in line.wgsl.
const Feather = 0.5

// CompileLineShader compiles the embedded line shader WGSL to SPIR-V words.
// The render pipeline feeds these words to the HAL; LineShaderSource exposes
// the raw WGSL for backends that consume it directly.
func CompileLineShader() ([]uint32, error) {
	if lineShaderSource == "" {
		return nil, fmt.Errorf("line shader source is empty")
	}
	spirvBytes, err := naga.Compile(lineShaderSource)
	if err != nil {
		return nil, fmt.Errorf("compile line shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}

// LineShaderSource returns the embedded WGSL source of the line shader.
func LineShaderSource() string {
	return lineShaderSource
}
