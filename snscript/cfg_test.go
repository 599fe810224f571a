package snscript

import (
	"os"
	"path/filepath"
	"testing"

	cv "github.com/glycerine/goconvey/convey"
	"github.com/spf13/pflag"
)

func Test500ConfigFileAndFlags(t *testing.T) {

	cv.Convey(`Settings come from the config file, and flags given on the command line override it`, t, func() {

		path := filepath.Join(t.TempDir(), "snscript.toml")
		panicOn(os.WriteFile(path, []byte(`
max_frames = 99
max_values = 1000
prompt = "x> "
color = "off"
`), 0644))

		cfg := NewConfig()
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		cfg.DefineFlags(fs)
		panicOn(fs.Parse([]string{"--max-frames=7", "-c", "(+ 1 2)"}))

		panicOn(cfg.LoadFile(path, fs))
		panicOn(cfg.ValidateConfig())

		cv.So(cfg.MaxFrames, cv.ShouldEqual, 7)
		cv.So(cfg.MaxValues, cv.ShouldEqual, 1000)
		cv.So(cfg.Prompt, cv.ShouldEqual, "x> ")
		cv.So(cfg.Color, cv.ShouldEqual, "off")
		cv.So(cfg.Command, cv.ShouldEqual, "(+ 1 2)")
		cv.So(cfg.Limits(), cv.ShouldResemble, Limits{MaxFrames: 7, MaxValues: 1000})
	})

	cv.Convey(`A missing default config file is fine, a missing named one is not`, t, func() {

		t.Setenv("HOME", t.TempDir())
		cfg := NewConfig()
		cv.So(cfg.LoadFile("", nil), cv.ShouldBeNil)
		cv.So(cfg.LoadFile(filepath.Join(t.TempDir(), "nope.toml"), nil), cv.ShouldNotBeNil)
	})

	cv.Convey(`A malformed config file is reported`, t, func() {

		path := filepath.Join(t.TempDir(), "bad.toml")
		panicOn(os.WriteFile(path, []byte("max_frames = \"lots\"\n"), 0644))
		cfg := NewConfig()
		cv.So(cfg.LoadFile(path, nil), cv.ShouldNotBeNil)
	})
}

func Test501ValidateConfig(t *testing.T) {

	cv.Convey(`ValidateConfig fills in defaults and rejects nonsense`, t, func() {

		t.Setenv("HOME", "/home/someone")
		cfg := NewConfig()
		panicOn(cfg.ValidateConfig())
		cv.So(cfg.Prompt, cv.ShouldEqual, "sn> ")
		cv.So(cfg.HistoryFile, cv.ShouldEqual, "/home/someone/.snscripthist")
		cv.So(cfg.Limits(), cv.ShouldResemble, DefaultLimits())

		cfg.MaxFrames = 0
		cv.So(cfg.ValidateConfig(), cv.ShouldNotBeNil)

		cfg = NewConfig()
		cfg.MaxValues = -1
		cv.So(cfg.ValidateConfig(), cv.ShouldNotBeNil)

		cfg = NewConfig()
		cfg.Color = "purple"
		cv.So(cfg.ValidateConfig(), cv.ShouldNotBeNil)
	})
}
