package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"nescore/emu/log"
)

type mode byte

const (
	runMode      mode = iota // Run a ROM
	romInfosMode             // Show ROM infos
	disasmMode               // Disassemble a ROM
	configMode               // Write the default configuration
	versionMode              // Show version
)

type (
	CLI struct {
		Run      Run         `cmd:"" help:"Run ROM in emulator."`
		RomInfos RomInfos    `cmd:"" help:"Show ROM infos." name:"rom-infos"`
		Disasm   Disasm      `cmd:"" help:"Disassemble ROM program."`
		Config   WriteConfig `cmd:"" help:"Write the default configuration file."`
		Version  Version     `cmd:"" help:"Show nescore version."`

		Log        logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`
		ConfigPath string     `name:"config" help:"${config_help}" type:"path"`

		mode mode
	}

	Run struct {
		RomPath string `arg:"" name:"/path/to/rom" help:"ROM to run." required:"true" type:"existingfile"`

		Frames     int      `name:"frames" help:"${frames_help}" default:"-1"`
		Screenshot string   `name:"screenshot" help:"Write last frame to PNG file." type:"path"`
		Patterns   string   `name:"patterns" help:"Write pattern tables to PNG file." type:"path"`
		State      *outfile `name:"state" help:"Write last console state as JSON." placeholder:"FILE|stdout|stderr"`
		Trace      *outfile `name:"trace" help:"Write CPU trace log." placeholder:"FILE|stdout|stderr"`
		DisasmOut  string   `name:"disasm" help:"Write disassembly on cartridge insertion." type:"path"`
		Palette    string   `name:"palette" help:"Master palette file (64 RGB triples)." type:"existingfile"`
	}

	RomInfos struct {
		RomPath string `arg:"" name:"/path/to/rom" type:"existingfile"`
	}

	Disasm struct {
		RomPath string   `arg:"" name:"/path/to/rom" type:"existingfile"`
		Out     *outfile `name:"out" short:"o" help:"Output file." placeholder:"FILE|stdout|stderr"`
	}

	WriteConfig struct{}
	Version     struct{}
)

var vars = kong.Vars{
	"log_help":    "Enable logging for specified modules.",
	"config_help": "Configuration file. (default: user configuration directory)",
	"frames_help": "Number of frames to run, 0 runs until interrupted. (default: from configuration)",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("nescore"),
		kong.Description("NES emulator core."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")

	switch ctx.Command() {
	case "rom-infos </path/to/rom>":
		cfg.mode = romInfosMode
	case "disasm </path/to/rom>":
		cfg.mode = disasmMode
	case "config":
		cfg.mode = configMode
	case "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "run") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask struct {
	set  bool
	mask log.ModuleMask
}

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm *logModMask) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	s := tok.Value.(string)

	names := strings.Split(s, ",")
	if len(names) > 1 {
		for _, v := range names {
			if v == "all" || v == "no" {
				return fmt.Errorf("cannot combine '%s' with other log modules", v)
			}
		}
	}

	mask, unknown := log.ParseModules(s)
	if len(unknown) > 0 {
		return fmt.Errorf("unknown log module %s", unknown[0])
	}
	lm.set = true
	lm.mask = mask
	return nil
}

// apply enables the debug logs of the selected modules. The modules listed
// in the configuration are used if the flag has not been provided.
func (lm *logModMask) apply(cfgmods string) {
	if !lm.set {
		if cfgmods == "" {
			return
		}
		mask, unknown := log.ParseModules(cfgmods)
		for _, name := range unknown {
			log.ModEmu.WarnZ("unknown log module in config").String("name", name).End()
		}
		lm.mask = mask
	}

	if lm.mask == log.ModuleMaskNone {
		log.Disable()
		return
	}
	log.EnableDebugModules(lm.mask)
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into an io.WriteCloser
// that writes to that file.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n\t"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
