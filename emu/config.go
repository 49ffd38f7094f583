package emu

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"

	"nescore/emu/log"
	"nescore/hw"
)

type Config struct {
	Video     VideoConfig     `toml:"video"`
	Emulation EmulationConfig `toml:"emulation"`
	Debug     DebugConfig     `toml:"debug"`
}

type VideoConfig struct {
	// Palette is the path of a file made of 64 RGB triples. The built-in
	// palette is used if empty.
	Palette string `toml:"palette"`
}

type EmulationConfig struct {
	// Frames is the number of frames to run, 0 means until stopped.
	Frames int `toml:"frames"`
}

type DebugConfig struct {
	// DisasmOut is the path of the disassembly written after each cartridge
	// insertion. Disabled if empty.
	DisasmOut string `toml:"disasm_out"`

	// Log is a comma-separated list of modules with debug logs enabled.
	Log string `toml:"log"`
}

// LoadPalette loads the configured master palette.
func (vcfg *VideoConfig) LoadPalette() (hw.Palette, error) {
	if vcfg.Palette == "" {
		return hw.DefaultPalette, nil
	}

	f, err := os.Open(vcfg.Palette)
	if err != nil {
		return hw.Palette{}, fmt.Errorf("palette: %w", err)
	}
	defer f.Close()

	pal, err := hw.LoadPalette(f)
	if err != nil {
		return hw.Palette{}, fmt.Errorf("palette %s: %w", vcfg.Palette, err)
	}
	return pal, nil
}

const cfgFilename = "config.toml"

// ConfigPath returns the path of the configuration file, in the user
// configuration directory.
func ConfigPath() string {
	return filepath.Join(configdir.LocalConfig("nescore"), cfgFilename)
}

// LoadConfig loads the configuration file at path.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	for _, key := range md.Undecoded() {
		log.ModEmu.WarnZ("unknown config key").Stringer("key", key).End()
	}
	return cfg, nil
}

// LoadConfigOrDefault loads the configuration from the user configuration
// directory, or provides a default one.
func LoadConfigOrDefault() Config {
	cfg, err := LoadConfig(ConfigPath())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.ModEmu.WarnZ("using default config").Error("err", err).End()
		}
		return Config{}
	}
	return cfg
}

// SaveConfig writes cfg at path, creating the directory if needed.
func SaveConfig(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := configdir.MakePath(filepath.Dir(path)); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return os.WriteFile(path, buf, 0o644)
}
