/*
Package configx loads layered configuration from defaults, environment
variables, .env files, YAML files and in-memory maps. Sources with a higher
priority override lower ones; nested maps merge key by key.

	cfg, err := configx.NewBuilder().
		WithDefaults(map[string]any{"log": map[string]any{"level": "info"}}).
		FromEnv("APP_").
		FromFile("exceptions.yaml").
		Build()

	dev := cfg.Get("exceptions.dev").AsBool()

Environment keys are lowercased and split on underscores, so
APP_EXCEPTIONS_DEV maps to exceptions.dev.

WatchFile reports changes to a single file and is used to hot-reload error
presets.
*/
package configx
