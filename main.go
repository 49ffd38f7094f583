package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"

	"nescore/emu"
	"nescore/emu/log"
	"nescore/hw"
)

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case versionMode:
		printVersion()
		return
	case romInfosMode:
		cart, err := hw.LoadCartridge(cli.RomInfos.RomPath)
		checkf(err, "failed to load rom")
		checkf(cart.PrintInfos(os.Stdout), "failed to print rom infos")
		return
	}

	cfgPath := cli.ConfigPath
	if cfgPath == "" {
		cfgPath = emu.ConfigPath()
	}

	if cli.mode == configMode {
		checkf(emu.SaveConfig(cfgPath, emu.Config{}), "failed to write configuration")
		fmt.Println(cfgPath)
		return
	}

	cfg := emu.LoadConfigOrDefault()
	if cli.ConfigPath != "" {
		var err error
		cfg, err = emu.LoadConfig(cli.ConfigPath)
		checkf(err, "failed to load configuration")
	}
	cli.Log.apply(cfg.Debug.Log)

	switch cli.mode {
	case disasmMode:
		checkf(disasm(cfg, cli.Disasm), "disassembly failed")
	case runMode:
		checkf(run(cfg, cli.Run), "emulation failed")
	}
}

func disasm(cfg emu.Config, args Disasm) (err error) {
	out := args.Out
	if out == nil {
		out = &outfile{w: os.Stdout, name: "stdout", close: func() error { return nil }}
	}
	defer func() { err = errors.Join(err, out.Close()) }()

	cfg.Debug.DisasmOut = ""
	nes, err := emu.New(cfg)
	if err != nil {
		return err
	}
	if err := nes.InsertCartridge(args.RomPath); err != nil {
		return err
	}
	return nes.Disassemble(out)
}

// run runs the emulator until the frame count is reached or it's
// interrupted. The trace and state outputs are closed on return.
func run(cfg emu.Config, args Run) (err error) {
	for _, out := range []*outfile{args.Trace, args.State} {
		if out != nil {
			defer func() { err = errors.Join(err, out.Close()) }()
		}
	}

	if args.Palette != "" {
		cfg.Video.Palette = args.Palette
	}
	if args.DisasmOut != "" {
		cfg.Debug.DisasmOut = args.DisasmOut
	}
	if args.Frames >= 0 {
		cfg.Emulation.Frames = args.Frames
	}

	nes, err := emu.New(cfg)
	if err != nil {
		return err
	}
	if args.Trace != nil {
		nes.SetTraceOutput(args.Trace)
	}
	if err := nes.InsertCartridge(args.RomPath); err != nil {
		return err
	}

	var presenters emu.Presenters
	if args.Screenshot != "" {
		presenters = append(presenters, &emu.PNGPresenter{Path: args.Screenshot, PatternsPath: args.Patterns})
	} else if args.Patterns != "" {
		return errors.New("--patterns requires --screenshot")
	}
	if args.State != nil {
		presenters = append(presenters, &emu.JSONPresenter{W: args.State})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.ModEmu.InfoZ("Starting emulation").Int("frames", cfg.Emulation.Frames).End()
	e := emu.NewEmulator(nes, cfg.Emulation.Frames)
	if err := e.Run(ctx, presenters); err != nil {
		return err
	}
	return nes.CPU.TraceErr()
}

func printVersion() {
	const name = "nescore"

	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		fmt.Println(name, "(devel)")
		return
	}
	fmt.Println(name, bi.Main.Version, bi.GoVersion)
}
