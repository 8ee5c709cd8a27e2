// Command dmgcore headlessly drives the core: load a ROM, run a fixed
// number of frames, and dump the final framebuffer to a PNG and the
// cartridge's battery RAM to a file. It exercises the public operations
// of the core end to end without any window, input device or on-screen
// rendering — a smoke test and usage example, not a player.
package main

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/urfave/cli"

	"github.com/a-box31/Gameboy/internal/config"
	"github.com/a-box31/Gameboy/internal/gameboy"
	"github.com/a-box31/Gameboy/pkg/diagnostics"
	"github.com/a-box31/Gameboy/pkg/log"
	"github.com/a-box31/Gameboy/pkg/romloader"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmgcore"
	app.Usage = "dmgcore --rom <file> --frames N [--out frame.png] [--battery save.sav]"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "path to the ROM image (.gb, .gbc, .zip, .gz, .7z)"},
		cli.IntFlag{Name: "frames", Value: 60, Usage: "number of frames to run before dumping output"},
		cli.StringFlag{Name: "out", Value: "frame.png", Usage: "path to write the final framebuffer as a PNG"},
		cli.StringFlag{Name: "battery", Usage: "path to write battery-backed RAM, if the cartridge has any"},
		cli.StringFlag{Name: "config", Usage: "path to a YAML quirk configuration file"},
		cli.StringFlag{Name: "waveform", Usage: "path to write a debug waveform PNG of the oldest 1024 buffered audio sample pairs"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "dmgcore:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		return errors.New("dmgcore: --rom is required")
	}

	quirks := config.Default()
	if cfgPath := c.String("config"); cfgPath != "" {
		var err error
		quirks, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("dmgcore: loading config: %w", err)
		}
	}

	rom, err := romloader.Load(romPath)
	if err != nil {
		return fmt.Errorf("dmgcore: %w", err)
	}

	sys := gameboy.New(quirks, log.New())
	if err := sys.LoadCartridge(rom); err != nil {
		return fmt.Errorf("dmgcore: %w", err)
	}

	frames := c.Int("frames")
	var framebuffer []byte
	for i := 0; i < frames; i++ {
		sys.RunFrame()
		if fault := sys.Fault(); fault != nil {
			return fmt.Errorf("dmgcore: core fault after frame %d: %w", i, fault)
		}
		framebuffer = sys.Framebuffer()
	}

	if err := writePNG(c.String("out"), framebuffer); err != nil {
		return fmt.Errorf("dmgcore: %w", err)
	}

	if batteryPath := c.String("battery"); batteryPath != "" {
		snapshot := sys.BatterySnapshot()
		if snapshot == nil {
			return errors.New("dmgcore: --battery requested but cartridge has no battery-backed RAM")
		}
		if err := os.WriteFile(batteryPath, snapshot, 0o644); err != nil {
			return fmt.Errorf("dmgcore: writing battery file: %w", err)
		}
	}

	if waveformPath := c.String("waveform"); waveformPath != "" {
		samples := sys.AudioSamples(1024)
		png, err := diagnostics.WaveformPNG(samples, 640, 240)
		if err != nil {
			return fmt.Errorf("dmgcore: %w", err)
		}
		if err := os.WriteFile(waveformPath, png, 0o644); err != nil {
			return fmt.Errorf("dmgcore: writing waveform file: %w", err)
		}
	}

	return nil
}

func writePNG(path string, rgba []byte) error {
	const width, height = 160, 144
	if len(rgba) != width*height*4 {
		return fmt.Errorf("unexpected framebuffer size %d", len(rgba))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		img.Pix[i*4+0] = rgba[i*4+0]
		img.Pix[i*4+1] = rgba[i*4+1]
		img.Pix[i*4+2] = rgba[i*4+2]
		img.Pix[i*4+3] = rgba[i*4+3]
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
