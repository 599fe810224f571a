package snscript

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

// Config configures the snscript command line and repl. Fields with a
// toml tag may also be set from a config file.
type Config struct {
	CpuProfile    string `toml:"cpuprofile"`
	MemProfile    string `toml:"memprofile"`
	ExitOnFailure bool   `toml:"exit_on_failure"`
	Command       string `toml:"-"`
	Quiet         bool   `toml:"quiet"`
	Trace         bool   `toml:"trace"`
	MaxFrames     int    `toml:"max_frames"`
	MaxValues     int    `toml:"max_values"`

	// liner bombs under emacs, avoid it with this flag.
	NoLiner     bool   `toml:"no_liner"`
	Prompt      string `toml:"prompt"` // default "sn> "
	HistoryFile string `toml:"history_file"`

	// auto, on or off
	Color string `toml:"color"`

	// install random, now and elapsed
	Extensions bool `toml:"extensions"`

	SavePath   string `toml:"-"`
	JSON       bool   `toml:"-"`
	ConfigFile string `toml:"-"`
}

const DefaultConfigFile = "~/.snscript.toml"

func NewConfig() *Config {
	return &Config{
		MaxFrames: DefaultMaxFrames,
		MaxValues: DefaultMaxValues,
		Color:     "auto",
	}
}

// call DefineFlags before the flag set is parsed
func (c *Config) DefineFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.CpuProfile, "cpuprofile", c.CpuProfile, "write cpu profile to file")
	fs.StringVar(&c.MemProfile, "memprofile", c.MemProfile, "write mem profile to file")
	fs.BoolVar(&c.ExitOnFailure, "exitonfail", c.ExitOnFailure, "leave the repl at the first error, with exit status 1")
	fs.StringVarP(&c.Command, "command", "c", "", "expressions to evaluate")
	fs.BoolVar(&c.Quiet, "quiet", c.Quiet, "start repl without printing the version banner")
	fs.BoolVar(&c.Trace, "trace", c.Trace, "trace every frame push and pop (very verbose)")
	fs.IntVar(&c.MaxFrames, "max-frames", c.MaxFrames, "maximum evaluation stack depth")
	fs.IntVar(&c.MaxValues, "max-values", c.MaxValues, "maximum value arena size")
	fs.BoolVar(&c.NoLiner, "noliner", c.NoLiner, "read the repl with a plain reader instead of line editing")
	fs.StringVar(&c.Prompt, "prompt", c.Prompt, "repl prompt")
	fs.StringVar(&c.Color, "color", c.Color, "colored diagnostics: auto, on or off")
	fs.BoolVar(&c.Extensions, "ext", c.Extensions, "install the random, now and elapsed builtins")
	fs.StringVar(&c.ConfigFile, "config", "", "config file (default "+DefaultConfigFile+")")
}

// LoadFile reads a toml config file into c. Flags already set on fs
// are applied again afterwards, so the command line wins over the file.
// A missing default config file is not an error.
func (c *Config) LoadFile(path string, fs *pflag.FlagSet) error {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	path = expandHome(path)
	if _, err := os.Stat(path); err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil
		}
		return err
	}
	// the flags write into c's fields, so remember what was given on
	// the command line before the file overwrites it
	given := make(map[string]string)
	if fs != nil {
		fs.Visit(func(f *pflag.Flag) {
			given[f.Name] = f.Value.String()
		})
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("config file '%s': %w", path, err)
	}
	for name, val := range given {
		if err := fs.Set(name, val); err != nil {
			return err
		}
	}
	return nil
}

// call c.ValidateConfig() after the flags are parsed
func (c *Config) ValidateConfig() error {
	if c.Prompt == "" {
		c.Prompt = "sn> "
	}
	if c.HistoryFile == "" {
		c.HistoryFile = "~/.snscripthist"
	}
	c.HistoryFile = expandHome(c.HistoryFile)
	if c.MaxFrames <= 0 {
		return fmt.Errorf("max-frames must be positive, got %d", c.MaxFrames)
	}
	if c.MaxValues <= 0 {
		return fmt.Errorf("max-values must be positive, got %d", c.MaxValues)
	}
	switch c.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("color must be auto, on or off; got '%s'", c.Color)
	}
	return nil
}

func (c *Config) Limits() Limits {
	return Limits{MaxFrames: c.MaxFrames, MaxValues: c.MaxValues}
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
