// Package diagnostics renders debug visualizations of emulator output
// that are useful in tests and manual inspection but are not part of the
// core's observable behavior. WaveformPNG plots a batch of pulled PCM
// samples so a channel stuck silent or an envelope decaying wrong is
// visible at a glance, the way the teacher's performance view plots
// frame times.
package diagnostics

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// WaveformPNG renders interleaved stereo int16 samples (as returned by
// gameboy.System.AudioSamples) to a PNG-encoded waveform plot of the left
// channel, width x height pixels.
func WaveformPNG(samples []int16, width, height int) ([]byte, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("diagnostics: need at least one stereo sample pair")
	}

	left := make(plotter.XYs, len(samples)/2)
	for i := range left {
		left[i].X = float64(i)
		left[i].Y = float64(samples[i*2])
	}

	p := plot.New()
	p.Title.Text = "Audio Waveform (left channel)"
	p.X.Label.Text = "sample"
	p.Y.Label.Text = "amplitude"

	line, err := plotter.NewLine(left)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: %w", err)
	}
	p.Add(line)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	canvas := vgimg.NewWith(vgimg.UseImage(img))
	p.Draw(draw.New(canvas))

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas.Image()); err != nil {
		return nil, fmt.Errorf("diagnostics: %w", err)
	}
	return buf.Bytes(), nil
}
