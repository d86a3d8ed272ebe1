package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/kbukum/seqkit/logger"
)

// FileSystem abstracts the file lookups Load performs, so tests can fake them.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem on the local disk.
type RealFileSystem struct{}

// Exists reports whether path can be stat'ed.
func (RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv sets process environment variables from a .env file without
// overriding variables that are already set.
func (RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds the config and env files of an application.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
// An empty path means nothing was found.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths in opts where given and searches
// the standard locations for the rest.
func (r *Resolver) ResolveFiles(name string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(configCandidates(name))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first(envCandidates(name))
	}
	return resolved
}

func (r *Resolver) first(paths []string) string {
	path, _ := lo.Find(paths, r.FileSystem.Exists)
	return path
}

// searchDirs are the directories probed for files, nearest first.
var searchDirs = []string{".", "./config", "..", "../config"}

// configCandidates lists config.yml locations for name: the application's
// cmd directory first, then the shared search directories.
func configCandidates(name string) []string {
	dirs := append([]string{"./cmd/" + name, "../cmd/" + name}, searchDirs...)
	return lo.Map(dirs, func(dir string, _ int) string {
		return filepath.Join(dir, "config.yml")
	})
}

// envCandidates lists .env locations for name. An application-specific
// .env.<name> wins over a plain .env in any directory.
func envCandidates(name string) []string {
	files := []string{".env." + name, ".env"}
	return lo.FlatMap(files, func(file string, _ int) []string {
		return lo.Map(searchDirs, func(dir string, _ int) string {
			return filepath.Join(dir, file)
		})
	})
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load loads configuration for an application into cfg. It searches for
// config.yml and .env files in standard locations, binds environment
// variables over file values, and unmarshals the result. If cfg implements
// Defaulter, defaults are applied and the result validated.
//
// Environment variables map to nested keys by underscores, so
// PIPELINE_BATCH_SIZE sets pipeline.batch_size.
func Load(name string, cfg any, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = RealFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(name, lc)

	if err := loadFromResolvedFiles(name, cfg, files, lc.FileSystem); err != nil {
		return err
	}
	if d, ok := cfg.(Defaulter); ok {
		d.ApplyDefaults()
		if err := d.Validate(); err != nil {
			return fmt.Errorf("invalid config for %s: %w", name, err)
		}
	}
	return nil
}

// loadFromResolvedFiles loads configuration from specific files.
func loadFromResolvedFiles(name string, cfg any, files ResolvedFiles, fs FileSystem) error {
	v := viper.New()

	// YAML first, environment on top.
	if files.ConfigFile != "" && fs.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			logger.Warn("failed to load config file", logger.MergeWithError(
				logger.Fields("file", files.ConfigFile), err))
		}
	}

	v.AutomaticEnv()
	autoBindEnvVars(v)

	if files.EnvFile != "" && fs.Exists(files.EnvFile) {
		if err := fs.LoadEnv(files.EnvFile); err != nil {
			logger.Warn("failed to load env file", logger.MergeWithError(
				logger.Fields("file", files.EnvFile), err))
		} else {
			// pick up variables the .env file just set
			autoBindEnvVars(v)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for %s: %w", name, err)
	}

	return nil
}

// autoBindEnvVars sets every environment variable on v under each nested
// key it could stand for, since viper cannot tell which underscores in
// PIPELINE_BATCH_SIZE separate sections.
func autoBindEnvVars(v *viper.Viper) {
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}
		for _, variant := range generateEnvKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// generateEnvKeyVariants lists the config keys an environment variable may
// address: the flat key, the fully dotted key, and every split into a
// dotted section path followed by an underscored field name.
//
//	PIPELINE_BATCH_SIZE -> [pipeline_batch_size, pipeline.batch.size, pipeline.batch_size]
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")
	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{lowerKey, strings.Join(parts, ".")}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	return lo.Uniq(variants)
}
