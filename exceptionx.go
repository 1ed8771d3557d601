// Package exceptionx wires the error registry, handler dispatcher, exception
// factory and normalization filter into one Module.
//
//	mod, err := exceptionx.New(exceptionx.Options{
//		Errors: []errx.Definition{
//			{Code: "USER_NOT_FOUND", StatusCode: 404, Message: "User not found"},
//		},
//		Logger: filterx.LogxLogger(nil),
//	})
//	app := fiberx.New(mod.Filter)
//
// New also sets the package level errx factory, so errx.New("USER_NOT_FOUND")
// works anywhere after startup.
package exceptionx

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abraxas-365/exceptionx/asyncx"
	"github.com/Abraxas-365/exceptionx/configx"
	"github.com/Abraxas-365/exceptionx/errx"
	"github.com/Abraxas-365/exceptionx/filterx"
	"github.com/Abraxas-365/exceptionx/handlerx"
	"github.com/Abraxas-365/exceptionx/logx"
	"github.com/Abraxas-365/exceptionx/validatex"
)

// ErrNilOptionsFactory is returned by NewAsync when no factory is given
var ErrNilOptionsFactory = errors.New("exceptionx: NewAsync requires an options factory")

// Options configures a Module
type Options struct {
	// Errors are registered in order before the module is returned
	Errors []errx.Definition `json:"errors" yaml:"errors" validate:"dive"`

	// IsDev includes exception traces in responses
	IsDev bool `json:"dev" yaml:"dev"`

	// Logger receives a record for every normalized error; nil disables logging
	Logger filterx.Logger `json:"-" yaml:"-"`
}

// Module is a fully wired exception stack
type Module struct {
	Registry   *errx.Registry
	Dispatcher *handlerx.Dispatcher
	Exceptions *errx.Factory
	Filter     *filterx.Filter
}

// New validates the presets and builds a Module
func New(opts Options) (*Module, error) {
	if err := validatex.Struct(opts); err != nil {
		return nil, fmt.Errorf("exceptionx: invalid error presets: %w", err)
	}

	registry := errx.NewRegistry(opts.Errors...)
	dispatcher := handlerx.NewDispatcher()
	m := &Module{
		Registry:   registry,
		Dispatcher: dispatcher,
		Exceptions: errx.NewFactory(registry, opts.IsDev),
		Filter: filterx.New(dispatcher,
			filterx.WithDevMode(opts.IsDev),
			filterx.WithLogger(opts.Logger),
		),
	}

	errx.Init(registry, opts.IsDev)
	return m, nil
}

// NewAsync resolves Options with factory, e.g. after reading a secret store,
// and builds the Module.
func NewAsync(ctx context.Context, factory func(ctx context.Context) (Options, error)) (*Module, error) {
	if factory == nil {
		return nil, ErrNilOptionsFactory
	}
	opts, err := factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("exceptionx: resolving options: %w", err)
	}
	return New(opts)
}

// FromConfig builds a Module from exceptions.dev and exceptions.errors. When
// logger is nil a logx logger is built from log.level and log.format.
func FromConfig(cfg configx.Config, logger filterx.Logger) (*Module, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	opts.Logger = logger
	if opts.Logger == nil {
		l, err := loggerFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		opts.Logger = filterx.LogxLogger(l)
	}
	return New(opts)
}

func optionsFromConfig(cfg configx.Config) (Options, error) {
	opts := Options{IsDev: cfg.Get("exceptions.dev").AsBool()}
	if v := cfg.Get("exceptions.errors"); v.IsSet() {
		if err := v.AsStruct(&opts.Errors); err != nil {
			return Options{}, fmt.Errorf("exceptionx: %w", err)
		}
	}
	return opts, nil
}

func loggerFromConfig(cfg configx.Config) (*logx.Logger, error) {
	l := logx.New()
	logx.ConfigureFromEnv(l)
	if v := cfg.Get("log.level"); v.IsSet() {
		var level logx.Level
		if err := level.UnmarshalText([]byte(v.AsString())); err != nil {
			return nil, fmt.Errorf("exceptionx: %w", err)
		}
		l.SetLevel(level)
	}
	if v := cfg.Get("log.format"); v.IsSet() {
		l.SetFormat(logx.ParseFormat(v.AsString()))
	}
	return l, nil
}

// LoadPresets reads exceptions.errors from a YAML or JSON file and registers
// the codes the registry does not know yet. Existing codes keep their first
// definition. It returns the number of codes added.
func (m *Module) LoadPresets(path string) (int, error) {
	defs, err := readPresets(path)
	if err != nil {
		return 0, err
	}
	return m.register(defs), nil
}

// LoadPresetFiles parses every file concurrently and registers their codes
// in argument order. Nothing is registered if any file fails.
func (m *Module) LoadPresetFiles(ctx context.Context, paths ...string) (int, error) {
	parsed, err := asyncx.All(ctx, paths, func(ctx context.Context, path string) ([]errx.Definition, error) {
		return readPresets(path)
	})
	if err != nil {
		return 0, err
	}

	added := 0
	for _, defs := range parsed {
		added += m.register(defs)
	}
	return added, nil
}

func (m *Module) register(defs []errx.Definition) int {
	added := 0
	for _, def := range defs {
		if _, ok := m.Registry.RegisterIfAbsent(def.Code, def.StatusCode, def.Message); ok {
			added++
		}
	}
	return added
}

func readPresets(path string) ([]errx.Definition, error) {
	cfg, err := configx.New(configx.NewFileSource(path, configx.PriorityFile))
	if err != nil {
		return nil, err
	}
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	if err := validatex.Struct(opts); err != nil {
		return nil, fmt.Errorf("exceptionx: invalid error presets in %s: %w", path, err)
	}
	return opts.Errors, nil
}

// WatchPresets loads path now and again whenever it changes, until ctx is
// done. Reload failures are logged and the registry is left as it was.
func (m *Module) WatchPresets(ctx context.Context, path string) error {
	if _, err := m.LoadPresets(path); err != nil {
		return err
	}
	return configx.WatchFile(ctx, path, func(p string) {
		added, err := m.LoadPresets(p)
		if err != nil {
			logx.Warn("reloading error presets from %s: %v", p, err)
			return
		}
		if added > 0 {
			logx.Info("registered %d error codes from %s", added, p)
		}
	})
}
