package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/weft"
	ConfigFileName    = "weft.yml"
)

// Config holds platform settings. The master key (KEK) is deliberately
// absent: it is passed explicitly to the components that need it and is
// never carried through configuration.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string. Overridable via
	// the DATABASE_URL environment variable.
	DatabaseURL string `yaml:"database_url"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFile, when set, routes logs through a rotated file instead of
	// stderr.
	LogFile string `yaml:"log_file"`

	// TenantTables overrides the default set of tenant-scoped tables.
	TenantTables []string `yaml:"tenant_tables"`

	// ResourceListLimitMax caps FindMany page sizes handed to plugins.
	ResourceListLimitMax int `yaml:"resource_list_limit_max"`
}

func defaults() Config {
	return Config{
		LogLevel:             "info",
		ResourceListLimitMax: 1000,
	}
}

// Load reads the config file at dir/weft.yml, falling back to defaults
// when the file is absent, then applies environment overrides.
func Load(dir string) (Config, error) {
	if dir == "" {
		dir = DefaultConfigPath
	}
	cfg := defaults()

	path := filepath.Join(dir, ConfigFileName)
	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file is fine; env and defaults carry it.
	case err != nil:
		return cfg, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}
	if lvl := os.Getenv("WEFT_LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

// Watch reloads the config whenever its file changes and hands the
// result to onChange. It blocks until the watcher fails or stop is
// closed.
func Watch(dir string, stop <-chan struct{}, onChange func(Config)) error {
	if dir == "" {
		dir = DefaultConfigPath
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors replace the file, which would drop a
	// watch on the file itself.
	if err := watcher.Add(dir); err != nil {
		return err
	}

	target := filepath.Join(dir, ConfigFileName)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(dir)
			if err != nil {
				continue
			}
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		case <-stop:
			return nil
		}
	}
}
