package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonwraymond/routecost/codec"
	"github.com/jonwraymond/routecost/config"
	"github.com/jonwraymond/routecost/lookup"
	"github.com/jonwraymond/routecost/observe"
	"github.com/jonwraymond/routecost/profile"
)

var errContextNotLoaded = errors.New("routecost: context not loaded")

// session holds what one command invocation works on: the configuration,
// the loaded registries and the telemetry pipeline.
type session struct {
	cfg        *config.Config
	md         lookup.Metadata
	registries map[string]*lookup.Registry
	observer   observe.Observer
	mw         *observe.Middleware
	context    string
}

func openSession(ctx context.Context, configPath string, flags *sourceFlags, logs io.Writer) (*session, error) {
	cfg, err := loadConfig(configPath, flags)
	if err != nil {
		return nil, err
	}

	registries, md, err := loadRegistries(cfg.Profile.Metadata, cfg.Profile.Contexts)
	if err != nil {
		return nil, err
	}

	cfg.Observe.Output = logs
	obs, err := observe.NewObserver(ctx, cfg.Observe)
	if err != nil {
		return nil, err
	}
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:        cfg,
		md:         md,
		registries: registries,
		observer:   obs,
		mw:         mw,
		context:    flags.Context,
	}, nil
}

func loadConfig(path string, flags *sourceFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case path != "":
		cfg, err = config.LoadFile(path)
	case os.Getenv(config.EnvVar) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, err
	}

	if flags.Meta != "" {
		cfg.Profile.Metadata = flags.Meta
		if cfg.Profile.Name == "" {
			cfg.Profile.Name = strings.TrimSuffix(filepath.Base(flags.Meta), filepath.Ext(flags.Meta))
		}
	}
	if flags.Context != "" && !cfg.HasContext(flags.Context) {
		cfg.Profile.Contexts = append(cfg.Profile.Contexts, flags.Context)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadRegistries reads the metadata file at path into one frozen registry per
// context.
func loadRegistries(path string, contexts []string) (map[string]*lookup.Registry, lookup.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, lookup.Metadata{}, err
	}
	defer f.Close()

	parsers := make([]*lookup.MetaParser, 0, len(contexts))
	for _, name := range contexts {
		parsers = append(parsers, lookup.NewMetaParser(name, lookup.NewRegistry()))
	}
	md, err := lookup.ReadMetadata(f, parsers...)
	if err != nil {
		return nil, md, fmt.Errorf("%s: %w", path, err)
	}

	registries := make(map[string]*lookup.Registry, len(parsers))
	for _, p := range parsers {
		registries[p.Context()] = p.Registry()
	}
	return registries, md, nil
}

// registry returns the registry of the selected context.
func (s *session) registry() (*lookup.Registry, error) {
	reg, ok := s.registries[s.context]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errContextNotLoaded, s.context)
	}
	return reg, nil
}

// freshRegistry loads a private copy of the selected context's registry with
// all occurrence counts cleared.
func (s *session) freshRegistry() (*lookup.Registry, error) {
	registries, _, err := loadRegistries(s.cfg.Profile.Metadata, []string{s.context})
	if err != nil {
		return nil, err
	}
	reg := registries[s.context]
	reg.ClearStats()
	return reg, nil
}

func (s *session) format() codec.Format {
	return s.cfg.CodecFormat(s.md)
}

func (s *session) codec() (*codec.Codec, error) {
	reg, err := s.registry()
	if err != nil {
		return nil, err
	}
	return codec.New(reg, s.format()), nil
}

// evaluator builds and compiles an evaluation context for the selected
// context name.
func (s *session) evaluator(ctx context.Context, p profile.Parser) (*profile.Context, error) {
	reg, err := s.registry()
	if err != nil {
		return nil, err
	}

	pc, err := profile.NewContext(s.context, reg,
		profile.WithProfileName(s.cfg.Profile.Name),
		profile.WithCachePolicy(s.cfg.CachePolicy()),
		profile.WithFormat(s.format()),
		profile.WithMiddleware(s.mw),
	)
	if err != nil {
		return nil, err
	}

	snap, err := pc.CompileGlobalDefaults(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := pc.Compile(ctx, p, snap); err != nil {
		return nil, err
	}
	return pc, nil
}

func (s *session) Close(ctx context.Context) error {
	return s.observer.Shutdown(ctx)
}
