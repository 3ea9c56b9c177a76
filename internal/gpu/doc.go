// Package gpu implements the GPU line render pipeline on top of the wgpu
// HAL. It owns shader compilation, buffer and texture lifecycle, and the
// render pass encoding for antialiased triangle strip lines.
//
// The package is internal; hosts use the public render package, which wraps
// LineRenderer and handles device acquisition.
package gpu
