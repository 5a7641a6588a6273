// Command nip executes CHIP-8 programs.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/golang/glog"

	"github.com/nf/nip/chip8"
	"github.com/nf/nip/host"
)

func main() {
	var (
		termFlag  = flag.Bool("term", false, "draw in the terminal instead of a window")
		devFlag   = flag.Bool("dev", false, "enable developer mode (reset when the program file changes)")
		debugFlag = flag.Bool("debug", false, "enable debugger (implies -dev)")

		hzFlag    = flag.Int("hz", 500, "instructions executed per `second`")
		seedFlag  = flag.Uint64("seed", 0, "random number generator `seed`")
		scaleFlag = flag.Int("scale", 10, "window and screenshot scale `factor`")

		stepsFlag      = flag.Int("steps", 0, "run `n` instructions without a display, then exit")
		screenshotFlag = flag.String("screenshot", "", "after a run without a display, write the screen to `file` as PNG")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-term] [-dev | -debug] <program.ch8>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -steps n [-screenshot file.png] <program.ch8>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}
	defer glog.Flush()

	cfg := host.DefaultConfig()
	cfg.ClockHz = *hzFlag
	cfg.Seed = *seedFlag
	if err := cfg.Validate(); err != nil {
		glog.Exit(err)
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			glog.Exitf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	var (
		romFile = flag.Arg(0)
		err     error
	)
	switch {
	case *stepsFlag > 0 || *screenshotFlag != "":
		err = headless(cfg, romFile, *stepsFlag, *screenshotFlag, *scaleFlag)
	case *debugFlag && *termFlag:
		err = errors.New("-debug uses the terminal for its console and cannot be combined with -term")
	case *devFlag || *debugFlag:
		cfg.Dev = true
		err = devMode(cfg, frontend(*termFlag, *scaleFlag), *debugFlag, romFile)
	default:
		err = run(cfg, frontend(*termFlag, *scaleFlag), romFile)
	}

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		glog.Exit(err)
	}
}

func frontend(term bool, scale int) host.Frontend {
	if term {
		return host.NewTerm()
	}
	g := host.NewGUI()
	g.Scale = scale
	return g
}

func run(cfg host.Config, ui host.Frontend, romFile string) error {
	rom, err := os.ReadFile(romFile)
	if err != nil {
		return err
	}
	r, err := host.NewRunner(cfg, ui, nil)
	if err != nil {
		return err
	}
	return r.Run(rom)
}

// headless runs the program without a frontend for a fixed number of
// steps, one second's worth if steps is zero, and optionally saves the
// final screen. The screenshot is written even if the program halts.
func headless(cfg host.Config, romFile string, steps int, shotFile string, scale int) error {
	rom, err := os.ReadFile(romFile)
	if err != nil {
		return err
	}
	m, err := chip8.NewMachine(rom, cfg.Seed)
	if err != nil {
		return err
	}
	if steps == 0 {
		steps = cfg.ClockHz
	}
	runErr := host.RunHeadless(m, cfg, steps)
	if shotFile != "" {
		if err := writeScreenshot(shotFile, m.Frame(), scale); err != nil {
			return err
		}
		glog.Infof("wrote %s", shotFile)
	}
	return runErr
}

func writeScreenshot(name string, f chip8.Frame, scale int) error {
	out, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := host.WritePNG(out, &f, scale); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
