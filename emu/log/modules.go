package log

import (
	"strings"
	"sync/atomic"

	"gopkg.in/Sirupsen/logrus.v0"
)

type ModuleMask uint64
type Module uint

const (
	ModuleMaskAll  ModuleMask = 0xFFFFFFFFFFFFFFFF
	ModuleMaskNone ModuleMask = 0
)

// Standard modules. Packages needing their own module can define it with
// NewModule, at package init.
const (
	ModEmu Module = iota + 1
	ModCPU
	ModBus
	ModPPU
	ModCart

	endStandardMods
)

var (
	modCount     = endStandardMods
	modDebugMask atomic.Uint64
	disabled     atomic.Bool
)

var modNames = []string{
	"<error>", "emu", "cpu", "bus", "ppu", "cart",
}

// NewModule registers a new log module. Not safe to call once logging has
// started, use it in package level var declarations.
func NewModule(name string) Module {
	mod := modCount
	modCount++
	modNames = append(modNames, name)
	return mod
}

func ModuleByName(name string) (Module, bool) {
	for idx, s := range modNames {
		if idx != 0 && s == name {
			return Module(idx), true
		}
	}
	return Module(0xFFFFFFFF), false
}

// ModuleNames returns the names of all registered modules.
func ModuleNames() []string {
	return append([]string(nil), modNames[1:]...)
}

func EnableDebugModules(mask ModuleMask) {
	for {
		old := modDebugMask.Load()
		if modDebugMask.CompareAndSwap(old, old|uint64(mask)) {
			break
		}
	}
	logrus.SetLevel(logrus.DebugLevel)
}

func DisableDebugModules(mask ModuleMask) {
	for {
		old := modDebugMask.Load()
		if modDebugMask.CompareAndSwap(old, old&^uint64(mask)) {
			break
		}
	}
}

// Disable silences all modules, whatever their level.
func Disable() { disabled.Store(true) }

func (mod Module) Mask() ModuleMask {
	return 1 << ModuleMask(mod)
}

func (mod Module) String() string {
	if int(mod) < len(modNames) {
		return modNames[mod]
	}
	return modNames[0]
}

func (mod Module) Enabled(level Level) bool {
	if disabled.Load() {
		return false
	}
	return level <= WarnLevel || ModuleMask(modDebugMask.Load())&mod.Mask() != 0
}

// ParseModules converts a comma separated list of module names into a mask.
// "all" and "no" are special values.
func ParseModules(s string) (ModuleMask, []string) {
	var (
		mask    ModuleMask
		unknown []string
	)
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		switch name {
		case "":
		case "all":
			mask = ModuleMaskAll
		case "no":
			mask = ModuleMaskNone
		default:
			mod, ok := ModuleByName(name)
			if !ok {
				unknown = append(unknown, name)
				continue
			}
			mask |= mod.Mask()
		}
	}
	return mask, unknown
}

// New-style fast functions

func (mod Module) logz(lvl Level, msg string) *EntryZ {
	if mod.Enabled(lvl) {
		return &EntryZ{lvl: lvl, msg: msg, mod: mod}
	}
	return nil
}

func (mod Module) DebugZ(msg string) *EntryZ { return mod.logz(DebugLevel, msg) }
func (mod Module) InfoZ(msg string) *EntryZ  { return mod.logz(InfoLevel, msg) }
func (mod Module) WarnZ(msg string) *EntryZ  { return mod.logz(WarnLevel, msg) }
func (mod Module) ErrorZ(msg string) *EntryZ { return mod.logz(ErrorLevel, msg) }
