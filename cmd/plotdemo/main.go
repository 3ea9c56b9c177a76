// Command plotdemo renders a Lorenz attractor trajectory to a PNG using the
// GPU line renderer.
package main

import (
	"flag"
	"image/png"
	"log"
	"os"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/plotline"
	"github.com/gogpu/plotline/render"
)

func main() {
	var (
		width  = flag.Int("width", 800, "image width")
		height = flag.Int("height", 600, "image height")
		steps  = flag.Int("steps", 200000, "trajectory steps")
		output = flag.String("output", "lorenz.png", "output file")
	)
	flag.Parse()

	points, colors := lorenzTrajectory(*steps)

	plot := plotline.NewPlot(plotline.Bounds{XMin: -1, XMax: 1, YMin: -1, YMax: 1})
	plot.AddSeries(plotline.Series{Points: points, Colors: colors})
	plot.FitBounds(0.05, 0.05)

	r, err := render.NewStandalone(render.Config{})
	if err != nil {
		log.Fatalf("Failed to open GPU device: %v", err)
	}
	defer r.Destroy()

	target := plotline.NewRenderTarget(*width, *height)
	if err := r.RenderPlot(plot, target); err != nil {
		log.Fatalf("Failed to render: %v", err)
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, target.Image()); err != nil {
		log.Fatalf("Failed to encode PNG: %v", err)
	}

	log.Printf("Rendered %d points to %s (%dx%d)\n", len(points), *output, *width, *height)
}

// lorenzTrajectory integrates the Lorenz system with forward Euler steps and
// projects the x/z plane. Colors ramp through hue along the trajectory.
func lorenzTrajectory(steps int) ([]f32.Vec2, []plotline.RGBA) {
	const (
		sigma = 10.0
		rho   = 28.0
		beta  = 8.0 / 3.0
		dt    = 0.00005
	)

	points := make([]f32.Vec2, 0, steps)
	colors := make([]plotline.RGBA, 0, steps)

	x, y, z := 0.1, 0.0, 0.0
	for i := 0; i < steps; i++ {
		dx := sigma * (y - x)
		dy := x*(rho-z) - y
		dz := x*y - beta*z
		x += dx * dt
		y += dy * dt
		z += dz * dt

		points = append(points, f32.Vec2{float32(x), float32(z)})
		hue := float64(i) / float64(steps)
		colors = append(colors, plotline.HSV(hue, 0.9, 1.0))
	}
	return points, colors
}
