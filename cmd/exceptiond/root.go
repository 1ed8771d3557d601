package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/Abraxas-365/exceptionx"
	"github.com/Abraxas-365/exceptionx/configx"
	"github.com/Abraxas-365/exceptionx/filterx"
)

const envPrefix = "EXCEPTIOND_"

type rootFlags struct {
	configFile string
	dotEnv     string
	presets    []string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "exceptiond",
		Short:         "Error registry and normalization demo",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "YAML file with exceptions and log settings")
	cmd.PersistentFlags().StringVar(&flags.dotEnv, "env-file", ".env", "optional .env file")
	cmd.PersistentFlags().StringSliceVar(&flags.presets, "presets", nil, "extra files with exceptions.errors to register")

	cmd.AddCommand(newServeCmd(flags), newCodesCmd(flags))
	return cmd
}

// load layers defaults, EXCEPTIOND_* env vars, the .env file and the config file
func (f *rootFlags) load() (configx.Config, error) {
	b := configx.NewBuilder().
		WithDefaults(map[string]any{
			"exceptions": map[string]any{"dev": false},
			"log":        map[string]any{"level": "info", "format": "console"},
			"server":     map[string]any{"addr": ":3000"},
		}).
		FromEnv(envPrefix)

	if f.dotEnv != "" {
		if _, err := os.Stat(f.dotEnv); err == nil {
			b = b.FromDotEnv(f.dotEnv)
		}
	}
	if f.configFile != "" {
		b = b.FromFile(f.configFile)
	}
	return b.Build()
}

// module builds the exception module from the loaded config plus any
// --presets files
func (f *rootFlags) module(ctx context.Context, cfg configx.Config, logger filterx.Logger) (*exceptionx.Module, error) {
	mod, err := exceptionx.FromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	if len(f.presets) > 0 {
		if _, err := mod.LoadPresetFiles(ctx, f.presets...); err != nil {
			return nil, err
		}
	}
	return mod, nil
}
