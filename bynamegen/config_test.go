package bynamegen

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/broady/byname/bynamegen/golang"
	"github.com/broady/byname/bynamegen/ir"
)

const sampleConfig = `
packages: ["./..."]
strategy: lazy
parallelism: 3
requests:
  - container:
      name: Palette
      package: example.com/paint
      dir: paint
    enum:
      name: Color
      members:
        - {name: Red, value: 1}
        - {name: Crimson, value: 1, alias: Red}
        - {name: Blue, value: 2}
  - container:
      name: Palette
      package: example.com/paint
    enum:
      name: Shade
      members:
        - {name: Light}
        - {name: Dark}
    strategy: all-once
  - container:
      name: themes
      visibility: internal
      package: example.com/ui
    enum:
      name: Color
      package: example.com/paint
    strategy: eager
`

func TestApplyConfigDefaults(t *testing.T) {
	cfg := applyConfigDefaults(&Config{})

	if len(cfg.Packages) != 1 || cfg.Packages[0] != "." {
		t.Errorf("Packages = %v", cfg.Packages)
	}
	if cfg.Strategy != "dictionary-cache" {
		t.Errorf("Strategy = %q", cfg.Strategy)
	}
	if cfg.Suffix != "_byname.go" {
		t.Errorf("Suffix = %q", cfg.Suffix)
	}
	if cfg.Parallelism != runtime.GOMAXPROCS(0) {
		t.Errorf("Parallelism = %d", cfg.Parallelism)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.RuntimeImport != golang.DefaultRuntimeImport {
		t.Errorf("RuntimeImport = %q", cfg.RuntimeImport)
	}
	if cfg.Comments == nil || !*cfg.Comments {
		t.Errorf("Comments should default to true")
	}

	off := false
	explicit := applyConfigDefaults(&Config{Strategy: "lazy", Suffix: "_names.go", Comments: &off})
	if explicit.Strategy != "lazy" || explicit.Suffix != "_names.go" || *explicit.Comments {
		t.Errorf("explicit values not preserved: %+v", explicit)
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	if cfg.Packages[0] != "./..." || cfg.Parallelism != 3 {
		t.Errorf("cfg = %+v", cfg)
	}
	if s, ok := cfg.DefaultStrategy(); !ok || s != ir.StrategyLazy {
		t.Errorf("DefaultStrategy() = %v, %v", s, ok)
	}
	if len(cfg.Requests) != 3 {
		t.Fatalf("Requests = %d, want 3", len(cfg.Requests))
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		errMsg string
	}{
		{"unknown field", "strategies: lazy\n", "strategies"},
		{"bad suffix", "suffix: _byname.txt\n", "suffix"},
		{"negative parallelism", "parallelism: -1\n", "parallelism"},
		{"bad log level", "logLevel: loud\n", "logLevel"},
		{"container without name", "requests:\n  - container: {package: example.com/p}\n    enum: {name: Color}\n", "name"},
		{"container name not identifier", "requests:\n  - container: {name: my-palette, package: example.com/p}\n    enum: {name: Color}\n", "goident"},
		{"bad visibility", "requests:\n  - container: {name: P, package: example.com/p, visibility: friend}\n    enum: {name: Color}\n", "visibility"},
		{"member not identifier", "requests:\n  - container: {name: P, package: example.com/p}\n    enum: {name: Color, members: [{name: 1st}]}\n", "goident"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			if err == nil {
				t.Fatal("ParseConfig() expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error = %v, want mention of %q", err, tt.errMsg)
			}
		})
	}

	_, err := ParseConfig([]byte("logLevel: loud\n"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("validation error should wrap ErrInvalidConfig, got %v", err)
	}
}

func TestConfig_UnknownDefaultStrategy(t *testing.T) {
	cfg, err := ParseConfig([]byte("strategy: eager\n"))
	if err != nil {
		t.Fatalf("unknown strategies are reported at generation time, got %v", err)
	}
	if s, ok := cfg.DefaultStrategy(); ok || s != ir.DefaultStrategy {
		t.Errorf("DefaultStrategy() = %v, %v; want fallback", s, ok)
	}

	cfg.Requests = []RequestConfig{{
		Container: ContainerConfig{Name: "P", Package: "example.com/p"},
		Enum:      EnumConfig{Name: "Color"},
	}}
	req := cfg.Batches()[0].Requests[0]
	if req.StrategyName != "eager" || req.Strategy != ir.DefaultStrategy {
		t.Errorf("request = %q %v, want the configured name with the fallback strategy", req.StrategyName, req.Strategy)
	}
}

func TestConfig_Batches(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	batches := cfg.Batches()

	if len(batches) != 2 {
		t.Fatalf("Batches() = %d, want 2", len(batches))
	}

	paint := batches[0]
	if paint.Container.Name != "Palette" || paint.Container.PackageName != "paint" || paint.Container.Dir != "paint" {
		t.Errorf("container = %+v", paint.Container)
	}
	if len(paint.Requests) != 2 {
		t.Fatalf("Palette requests = %d, want 2", len(paint.Requests))
	}

	color := paint.Requests[0]
	if color.StrategyName != "lazy" || color.Strategy != ir.StrategyLazy {
		t.Errorf("config default strategy not applied: %q %v", color.StrategyName, color.Strategy)
	}
	if color.Enum.Package != "example.com/paint" {
		t.Errorf("enum package should default to container package, got %q", color.Enum.Package)
	}
	if m := color.Enum.Members[1]; m.AliasOf != "Red" || m.Value != int64(1) || m.Order != 1 {
		t.Errorf("member = %+v", m)
	}
	if color.Source.File != "byname.yaml: requests[0]" {
		t.Errorf("Source = %v", color.Source)
	}

	shade := paint.Requests[1]
	if shade.Strategy != ir.StrategyAllOnce {
		t.Errorf("shade request = %+v", shade)
	}
	if shade.Enum.Members[0].HasValue() {
		t.Error("member without value should have none")
	}

	ui := batches[1]
	if ui.Container.Visibility != ir.VisibilityInternal {
		t.Errorf("visibility = %v", ui.Container.Visibility)
	}
	if ui.Requests[0].StrategyName != "eager" {
		t.Errorf("unknown strategy name should be kept for diagnostics, got %q", ui.Requests[0].StrategyName)
	}
}

func TestConfig_BatchesGenerate(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	res, err := New(*cfg).Generate(t.Context(), cfg.Batches())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got := codes(res.Diagnostics); len(got) != 1 || got[0] != ir.CodeUnknownStrategy {
		t.Errorf("diagnostic codes = %v", got)
	}
	if len(res.Units) != 2 {
		t.Fatalf("Units = %d", len(res.Units))
	}

	src := string(res.Units[0].Source)
	if !strings.Contains(src, "_Palette_1_m_Light = byname.Must(_Palette_1_lookup, \"Light\")") {
		t.Errorf("Shade should be bound during initialization\n%s", src)
	}
	if strings.Contains(src, "Crimson") {
		t.Errorf("alias should be skipped\n%s", src)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, DefaultConfigFile)
	if err := os.WriteFile(file, []byte(sampleConfig), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(file)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if got := cfg.Requests[0].Container.Dir; got != filepath.Join(dir, "paint") {
		t.Errorf("Dir = %q, want it resolved against the config file", got)
	}
	if got := cfg.Requests[1].Container.Dir; got != "" {
		t.Errorf("empty Dir should stay empty, got %q", got)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadConfig() on missing file should fail")
	}
}
