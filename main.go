package main

import (
	"fmt"
	"os"

	"github.com/rgould/nesgo/nes"

	"github.com/faiface/pixel/pixelgl"
	cli "gopkg.in/urfave/cli.v2"
)

func main() {
	app := &cli.App{
		Name:      "nesgo",
		Usage:     "a MOS 6502 / NES emulator core",
		ArgsUsage: "<rom-path>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "skip loading a ROM and run a whitespace-separated hex program instead",
			},
			&cli.BoolFlag{
				Name:    "log",
				Aliases: []string{"l"},
				Usage:   "accepted but has no effect: no CPU instruction log is written",
			},
			&cli.BoolFlag{
				Name:    "tui",
				Aliases: []string{"t"},
				Usage:   "step the CPU in an interactive terminal debugger instead of opening the display window",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "nesgo:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	hexProgram := c.String("debug")
	isLogging := c.Bool("log")

	var cart *nes.Cartridge
	var err error

	if hexProgram != "" {
		fmt.Println("Starting NES in debug mode with an inline hex program...")
		cart, err = nes.NewTestCartridge(hexProgram)
	} else {
		romPath := c.Args().First()
		if romPath == "" {
			return fmt.Errorf("usage: nesgo <rom-path>")
		}
		fmt.Println("Starting NES...")
		cart, err = nes.NewCartridge(romPath)
	}
	if err != nil {
		return fmt.Errorf("unable to load cartridge: %w", err)
	}

	nesEmulator := nes.NewBus(hexProgram != "", isLogging)
	nesEmulator.InsertCartridge(cart)

	fmt.Println("Resetting NES...")
	nesEmulator.Reset()

	if c.Bool("tui") {
		_, err := nes.NewDebugger(nesEmulator).Run()
		return err
	}

	pixelgl.Run(nesEmulator.Run)
	return nil
}
