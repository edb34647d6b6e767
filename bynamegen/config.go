package bynamegen

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"

	"github.com/broady/byname/bynamegen/golang"
	"github.com/broady/byname/bynamegen/ir"
)

// DefaultConfigFile is the configuration file looked up by the CLI.
const DefaultConfigFile = "byname.yaml"

// ErrInvalidConfig is wrapped by all configuration validation errors.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the configuration for code generation.
type Config struct {
	// Packages are the package patterns scanned for //byname:enum directives.
	// Default: ["."]
	Packages []string `yaml:"packages"`

	// Strategy is used by directives and requests that name no strategy.
	// Unknown names fall back to dictionary-cache with a warning.
	// Default: "dictionary-cache"
	Strategy string `yaml:"strategy"`

	// Suffix is appended to the lowercased container name to form the output file name.
	// Default: "_byname.go"
	Suffix string `yaml:"suffix" validate:"omitempty,endswith=.go"`

	// Parallelism bounds how many containers are generated concurrently.
	// Default: GOMAXPROCS.
	Parallelism int `yaml:"parallelism" validate:"gte=0"`

	// LogLevel is one of debug, info, warn, error.
	// Default: "info"
	LogLevel string `yaml:"logLevel" validate:"omitempty,oneof=debug info warn error"`

	// RuntimeImport is the import path of the runtime package generated code uses.
	// Default: "github.com/broady/byname"
	RuntimeImport string `yaml:"runtimeImport"`

	// Comments controls doc comments on generated accessors.
	// Default: true
	Comments *bool `yaml:"comments"`

	// Requests are generation requests supplied directly instead of being
	// discovered from directives.
	Requests []RequestConfig `yaml:"requests" validate:"dive"`
}

// RequestConfig is a generation request written in the configuration file.
type RequestConfig struct {
	Container ContainerConfig `yaml:"container"`
	Enum      EnumConfig      `yaml:"enum"`
	Strategy  string          `yaml:"strategy"`
}

// ContainerConfig describes the type hosting the accessors.
type ContainerConfig struct {
	Name        string `yaml:"name" validate:"required,goident"`
	Visibility  string `yaml:"visibility" validate:"omitempty,oneof=public private protected protected-internal internal"`
	Package     string `yaml:"package" validate:"required"`
	PackageName string `yaml:"packageName" validate:"omitempty,goident"`
	Dir         string `yaml:"dir"`
}

// EnumConfig describes the enum type and its members.
type EnumConfig struct {
	Name        string         `yaml:"name" validate:"required,goident"`
	Package     string         `yaml:"package"`
	PackageName string         `yaml:"packageName" validate:"omitempty,goident"`
	Members     []MemberConfig `yaml:"members" validate:"dive"`
}

// MemberConfig describes one enum member. Value may be omitted when unknown.
type MemberConfig struct {
	Name  string `yaml:"name" validate:"required,goident"`
	Value any    `yaml:"value"`
	Alias string `yaml:"alias" validate:"omitempty,goident"`
}

// LoadConfig reads, defaults and validates a YAML configuration file.
// Relative request directories are resolved against the file's directory.
func LoadConfig(file string) (*Config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	base := filepath.Dir(file)
	for i := range cfg.Requests {
		dir := cfg.Requests[i].Container.Dir
		if dir != "" && !filepath.IsAbs(dir) {
			cfg.Requests[i].Container.Dir = filepath.Join(base, dir)
		}
	}
	return cfg, nil
}

// ParseConfig decodes, defaults and validates YAML configuration data.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns a configuration with every field at its default.
func DefaultConfig() *Config {
	return applyConfigDefaults(&Config{})
}

// applyConfigDefaults fills unset fields with their defaults.
func applyConfigDefaults(cfg *Config) *Config {
	if len(cfg.Packages) == 0 {
		cfg.Packages = []string{"."}
	}
	if cfg.Strategy == "" {
		cfg.Strategy = ir.DefaultStrategy.String()
	}
	if cfg.Suffix == "" {
		cfg.Suffix = "_byname.go"
	}
	if cfg.Parallelism == 0 {
		cfg.Parallelism = runtime.GOMAXPROCS(0)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.RuntimeImport == "" {
		cfg.RuntimeImport = golang.DefaultRuntimeImport
	}
	if cfg.Comments == nil {
		comments := true
		cfg.Comments = &comments
	}
	return cfg
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("goident", func(fl validator.FieldLevel) bool {
		return golang.IsIdentifier(fl.Field().String())
	})
	return v
}

// Validate checks field constraints. Unknown strategy names are not an
// error here; they are reported per request during generation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// DefaultStrategy returns the configured default strategy and whether its name is known.
func (c *Config) DefaultStrategy() (ir.Strategy, bool) {
	if c.Strategy == "" {
		return ir.DefaultStrategy, true
	}
	return ir.ParseStrategy(c.Strategy)
}

// Batches converts the configured requests to generation batches, one per
// container, in order of first appearance.
func (c *Config) Batches() []ir.Batch {
	var (
		batches []ir.Batch
		index   = make(map[string]int)
	)

	for i, rc := range c.Requests {
		req := c.request(rc)
		req.Source = ir.Source{File: fmt.Sprintf("%s: requests[%d]", DefaultConfigFile, i)}

		key := req.Container.Package + "." + req.Container.Name
		j, ok := index[key]
		if !ok {
			j = len(batches)
			index[key] = j
			batches = append(batches, ir.Batch{Container: req.Container})
		}
		batches[j].Requests = append(batches[j].Requests, req)
	}
	return batches
}

func (c *Config) request(rc RequestConfig) ir.Request {
	container := ir.Container{
		Name:        rc.Container.Name,
		Visibility:  ir.VisibilityPublic,
		Package:     rc.Container.Package,
		PackageName: rc.Container.PackageName,
		Dir:         rc.Container.Dir,
	}
	if rc.Container.Visibility != "" {
		container.Visibility, _ = ir.ParseVisibility(rc.Container.Visibility)
	}
	if container.PackageName == "" {
		container.PackageName = path.Base(container.Package)
	}

	enum := ir.EnumType{
		Name:        rc.Enum.Name,
		Package:     rc.Enum.Package,
		PackageName: rc.Enum.PackageName,
	}
	if enum.Package == "" {
		enum.Package = container.Package
	}
	if enum.PackageName == "" {
		enum.PackageName = path.Base(enum.Package)
	}
	for i, mc := range rc.Enum.Members {
		enum.Members = append(enum.Members, ir.EnumMember{
			Name:    mc.Name,
			Order:   i,
			Value:   normalizeValue(mc.Value),
			AliasOf: mc.Alias,
		})
	}

	name := rc.Strategy
	strategy, _ := ir.ParseStrategy(name)
	if name == "" {
		name = c.Strategy
		strategy, _ = c.DefaultStrategy()
	}

	return ir.Request{
		Container:    container,
		Enum:         enum,
		Strategy:     strategy,
		StrategyName: name,
	}
}

// normalizeValue maps decoded YAML scalars onto the value types providers use.
func normalizeValue(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case uint64:
		if n <= 1<<63-1 {
			return int64(n)
		}
		return n
	case uint:
		return normalizeValue(uint64(n))
	default:
		return v
	}
}
