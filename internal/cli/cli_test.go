// Package cli_test runs the chromapoem commands end to end.
package cli_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gensys/chromapoem/internal/cli"
	"github.com/gensys/chromapoem/internal/geometry"
	"github.com/gensys/chromapoem/internal/report"
	"github.com/gensys/chromapoem/internal/snapshot"
)

// setupEnv isolates the commands from the caller's environment and returns
// the snapshot directory they use.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, key := range []string{
		"CLAUDE_API_KEY", "ANTHROPIC_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY",
		"CHROMAPOEM_CLAUDE_API_KEY", "CHROMAPOEM_GOOGLE_API_KEY", "CHROMAPOEM_PROVIDER",
		"CHROMAPOEM_PROXY_URL", "CHROMAPOEM_LOG_JSON",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("CHROMAPOEM_STORE", "file")
	t.Setenv("CHROMAPOEM_STORE_PATH", dir)
	t.Setenv("CHROMAPOEM_LOG_LEVEL", "error")
	return dir
}

// run executes one command line on a fresh command tree.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	rootCmd := cli.NewRootCmd()
	rootCmd.SetOut(&outBuf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, stderr, err := run(t, args...)
	if err != nil {
		t.Fatalf("%v failed: %v\nstderr: %s", args, err, stderr)
	}
	return out
}

func TestVersionCommand(t *testing.T) {
	setupEnv(t)
	out := mustRun(t, "version")
	if !strings.HasPrefix(out, "chromapoem ") {
		t.Errorf("version output = %q", out)
	}
}

func TestConvertCommand(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"hex", []string{"convert", "#FF0080"}, []string{"#FF0080", "rgb(255, 0, 128)", "hsv(330°, 100%, 100%)", "cmyk(0%, 100%, 50%, 0%)", "cmyk(0.0000, 1.0000, 0.4980, 0.0000)"}},
		{"rgb triple", []string{"convert", "255,247,0"}, []string{"#FFF700"}},
		{"short hex", []string{"convert", "f08"}, []string{"#FF0088"}},
		{"hsv wraps", []string{"convert", "--hsv", "360,100,100"}, []string{"#FF0000"}},
		{"cmyk black", []string{"convert", "--cmyk", "0,0,0,100"}, []string{"#000000"}},
		{"cmyk clamps", []string{"convert", "--cmyk", "0,150,-10,0"}, []string{"#FF00FF"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := mustRun(t, tt.args...)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestConvertCommandErrors(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no input", []string{"convert"}},
		{"two inputs", []string{"convert", "#FFFFFF", "--hsv", "0,0,100"}},
		{"bad hex", []string{"convert", "#GGGGGG"}},
		{"short hsv", []string{"convert", "--hsv", "10,20"}},
		{"bad format", []string{"convert", "#FFFFFF", "--format", "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := run(t, tt.args...); err == nil {
				t.Errorf("%v: expected error", tt.args)
			}
		})
	}
}

func TestConvertCommandJSON(t *testing.T) {
	setupEnv(t)
	out := mustRun(t, "convert", "#1B2A4A", "--format", "json")

	var got struct {
		Hex      string `json:"hex"`
		HSVExact struct {
			H float64 `json:"h"`
		} `json:"hsvExact"`
		CMYKExact struct {
			K float64 `json:"k"`
		} `json:"cmykExact"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if got.Hex != "#1B2A4A" || got.HSVExact.H < 220 || got.HSVExact.H > 221 {
		t.Errorf("conversion = %+v", got)
	}
	// max channel 0x4A = 74, so k = 1 - 74/255.
	if k := 1 - 74.0/255; math.Abs(got.CMYKExact.K-k) > 1e-9 {
		t.Errorf("cmykExact.k = %v, want %v", got.CMYKExact.K, k)
	}
}

func TestChimeCommand(t *testing.T) {
	setupEnv(t)
	path := filepath.Join(t.TempDir(), "chime.wav")
	mustRun(t, "chime", "-o", path, "--background", "#1B2A4A")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) || len(data) <= 44 {
		t.Errorf("not a WAV file (%d bytes)", len(data))
	}

	out := mustRun(t, "chime", "--list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 || !strings.HasPrefix(lines[0], "Background") || !strings.HasPrefix(lines[4], "duration") {
		t.Errorf("voice list = %q", out)
	}
}

func TestPreviewCommand(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()

	tests := []struct {
		name         string
		args         []string
		wantW, wantH int
	}{
		{"scene", []string{"--width", "64", "--height", "40", "--scale", "0.05"}, 64, 40},
		{"thumbnail", []string{"--width", "64", "--height", "40", "--scale", "0.05", "--thumbnail", "32"}, 32, 20},
		{"waveform", []string{"--waveform", "--width", "100", "--height", "20"}, 100, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".png")
			mustRun(t, append([]string{"preview", "-o", path}, tt.args...)...)

			f, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			cfg, err := png.DecodeConfig(f)
			if err != nil {
				t.Fatalf("not a PNG: %v", err)
			}
			if cfg.Width != tt.wantW || cfg.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestSnapshotCommands(t *testing.T) {
	dir := setupEnv(t)

	out := mustRun(t, "snapshot", "save", "sunset", "--background", "#FF8800", "--circle3", "10,20,30", "--blur3", "12")
	if !strings.Contains(out, "Saved sunset") {
		t.Errorf("save output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "sunset.json")); err != nil {
		t.Errorf("snapshot file not written: %v", err)
	}

	out = mustRun(t, "snapshot", "list")
	if !strings.Contains(out, "sunset") || !strings.Contains(out, "#FF8800") || !strings.Contains(out, "#0A141E") {
		t.Errorf("list output:\n%s", out)
	}

	out = mustRun(t, "snapshot", "show", "sunset", "--json")
	s, err := snapshot.Decode([]byte(out))
	if err != nil {
		t.Fatalf("show --json: %v", err)
	}
	if s.Background.Hex() != "#FF8800" || s.Blur == nil || s.Blur.Circle3 != 12 {
		t.Errorf("snapshot = %+v", s)
	}

	mustRun(t, "preview", "--from", "sunset", "--width", "32", "--height", "20", "--scale", "0.02",
		"-o", filepath.Join(t.TempDir(), "p.png"))

	mustRun(t, "snapshot", "delete", "sunset")
	if _, _, err := run(t, "snapshot", "show", "sunset"); err == nil {
		t.Error("show after delete expected error")
	}
	if out := mustRun(t, "snapshot", "list"); !strings.Contains(out, "No snapshots") {
		t.Errorf("list after delete = %q", out)
	}
}

func TestSnapshotSaveRejectsBadKey(t *testing.T) {
	setupEnv(t)
	if _, _, err := run(t, "snapshot", "save", "../escape"); err == nil {
		t.Error("expected invalid key error")
	}
}

func TestLayoutCommand(t *testing.T) {
	setupEnv(t)

	out := mustRun(t, "layout", "--format", "json", "press 1", "wheel 1000")
	var l geometry.Layout
	if err := json.Unmarshal([]byte(out), &l); err != nil {
		t.Fatalf("layout is not JSON: %v\n%s", err, out)
	}
	limits := geometry.DefaultLimits()
	if l.Controllers[0].Size != limits.ControllerMin[0] {
		t.Errorf("controller 1 size = %v, want %v", l.Controllers[0].Size, limits.ControllerMin[0])
	}
	if l.Controllers[1].Size > l.Controllers[0].Size-limits.NestMargin {
		t.Errorf("controller 2 (%v) does not fit inside controller 1 (%v)", l.Controllers[1].Size, l.Controllers[0].Size)
	}

	out = mustRun(t, "layout", "--format", "json", "press 2", "press 2 0,0", "move 500,0", "release")
	if err := json.Unmarshal([]byte(out), &l); err != nil {
		t.Fatal(err)
	}
	parent := l.Controllers[0].Size / 2
	if off := l.Controllers[1].Offset; off.X <= 0 || off.Len() >= parent {
		t.Errorf("dragged controller 2 offset = %+v (parent radius %v)", off, parent)
	}

	out = mustRun(t, "layout", "--format", "json", "blur 2 80", "blur 3 -4")
	if err := json.Unmarshal([]byte(out), &l); err != nil {
		t.Fatal(err)
	}
	if l.Circles[1].Blur != limits.MaxBlur || l.Circles[2].Blur != 0 {
		t.Errorf("blur not clamped: circle2 %v, circle3 %v", l.Circles[1].Blur, l.Circles[2].Blur)
	}

	if out := mustRun(t, "layout"); !strings.Contains(out, "circle3") || !strings.Contains(out, "idle") {
		t.Errorf("layout table:\n%s", out)
	}

	if _, _, err := run(t, "layout", "jump 3"); err == nil {
		t.Error("unknown event expected error")
	}
	if _, _, err := run(t, "layout", "blur 1 5"); err == nil {
		t.Error("blur on circle 1 expected error")
	}
}

func TestLayoutCommandSave(t *testing.T) {
	setupEnv(t)
	events := filepath.Join(t.TempDir(), "events.txt")
	os.WriteFile(events, []byte("# shrink the outer circle\npress 1\nwheel 200\n"), 0o600)

	mustRun(t, "layout", "--file", events, "--save", "shrunk")
	out := mustRun(t, "snapshot", "show", "shrunk", "--json")
	s, err := snapshot.Decode([]byte(out))
	if err != nil {
		t.Fatal(err)
	}
	if s.Controllers == nil || s.Controllers.Sizes.Circle1 != 140 {
		t.Errorf("saved controllers = %+v", s.Controllers)
	}
}

func TestReportCommand(t *testing.T) {
	setupEnv(t)

	var gotPrompt string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		gotPrompt = req.Prompt
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"poem":"yellow\n  circle","success":true}`))
	}))
	defer proxy.Close()

	bundle := filepath.Join(t.TempDir(), "report.tar.xz")
	out := mustRun(t, "report", "--proxy="+proxy.URL, "-o", bundle, "--width", "64", "--height", "40")
	if !strings.Contains(out, "yellow") {
		t.Errorf("summary missing poem:\n%s", out)
	}
	if !strings.Contains(gotPrompt, "#FFF700") {
		t.Errorf("prompt sent to proxy lacks the background hex")
	}

	out = mustRun(t, "report", "inspect", bundle)
	for _, name := range report.BundleFiles {
		if !strings.Contains(out, name) {
			t.Errorf("inspect output missing %s:\n%s", name, out)
		}
	}

	out = mustRun(t, "report", "inspect", bundle, "--print", report.PoemFile)
	if !strings.Contains(out, "circle") {
		t.Errorf("poem.txt = %q", out)
	}

	// The report saved the palette under the default key.
	if out := mustRun(t, "snapshot", "show"); !strings.Contains(out, "#FFF700") {
		t.Errorf("default snapshot:\n%s", out)
	}
}

func TestReportCommandWithoutProvider(t *testing.T) {
	setupEnv(t)
	out := mustRun(t, "report", "-o", "-", "--no-save", "--width", "64", "--height", "40", "--random", "--seed", "9")
	if !strings.Contains(out, "Poem unavailable") {
		t.Errorf("expected a poem error without an API key:\n%s", out)
	}
}

func TestSeedCommand(t *testing.T) {
	setupEnv(t)

	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	quad := []color.RGBA{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}, {255, 255, 255, 255}}
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			i := 0
			switch {
			case x < 10:
				i = 0
			case x < 20:
				i = 1
			case x < 30:
				i = 2
			default:
				i = 3
			}
			img.Set(x, y, quad[i])
		}
	}
	path := filepath.Join(t.TempDir(), "seed.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	png.Encode(f, img)
	f.Close()

	out := mustRun(t, "seed", path, "--format", "hex", "--seed", "1", "--save", "seeded")
	lines := strings.Fields(out)
	if len(lines) != 4 {
		t.Fatalf("expected 4 colours, got %q", out)
	}
	seen := map[string]bool{}
	for _, l := range lines {
		seen[l] = true
	}
	for _, want := range []string{"#FF0000", "#00FF00", "#0000FF", "#FFFFFF"} {
		if !seen[want] {
			t.Errorf("seeded palette %v missing %s", lines, want)
		}
	}

	if out := mustRun(t, "snapshot", "list"); !strings.Contains(out, "seeded") {
		t.Errorf("seeded palette not saved:\n%s", out)
	}

	if _, _, err := run(t, "seed", filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("missing image expected error")
	}
}
