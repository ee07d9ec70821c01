package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/repohq/internal/exclude"
	pathutils "github.com/temirov/repohq/internal/utils/path"
	"github.com/temirov/repohq/internal/vcs"
)

const (
	// RootConfigurationKey names the workspace root setting.
	RootConfigurationKey = "root"
	// DefaultHostConfigurationKey names the host used for bare references.
	DefaultHostConfigurationKey = "default_host"
	// DefaultVersionControlConfigurationKey names the backend used by new and clone.
	DefaultVersionControlConfigurationKey = "default_vcs"
	// IncludesConfigurationKey names the directories import scans by default.
	IncludesConfigurationKey = "includes"
	// ExcludesConfigurationKey names the glob patterns removed from scans and refreshes.
	ExcludesConfigurationKey = "excludes"
	// CacheFileConfigurationKey names the cache location setting.
	CacheFileConfigurationKey = "cache_file"

	// DefaultRootDirectory is the workspace root used when none is configured.
	DefaultRootDirectory = "~/repohq"
	// DefaultHost is the host assumed for bare references.
	DefaultHost = "github.com"

	applicationDirectoryNameConstant  = "repohq"
	cacheFileNameConstant             = "cache.json"
	rootResolveErrorTemplateConstant  = "unable to resolve root directory %q: %w"
	cacheResolveErrorTemplateConstant = "unable to resolve cache file %q: %w"
	includeResolveErrorTemplate       = "unable to resolve include directory %q: %w"
	excludesErrorTemplateConstant     = "invalid exclude patterns: %w"
)

// Settings mirrors the configuration file before paths are expanded.
type Settings struct {
	Root                  string   `mapstructure:"root" toml:"root"`
	DefaultHost           string   `mapstructure:"default_host" toml:"default_host"`
	DefaultVersionControl vcs.Kind `mapstructure:"default_vcs" toml:"default_vcs"`
	Includes              []string `mapstructure:"includes" toml:"includes"`
	Excludes              []string `mapstructure:"excludes" toml:"excludes"`
	CacheFile             string   `mapstructure:"cache_file" toml:"cache_file"`
}

// Config is the resolved configuration: paths are absolute and excludes compiled.
type Config struct {
	RootDirectory         string
	DefaultHost           string
	DefaultVersionControl vcs.Kind
	IncludeDirectories    []string
	Excludes              exclude.Set
	CacheFilePath         string
}

// DefaultCacheFilePath returns <user cache dir>/repohq/cache.json, falling back to the home directory.
func DefaultCacheFilePath() string {
	if cacheDirectory, cacheDirectoryError := os.UserCacheDir(); cacheDirectoryError == nil && len(cacheDirectory) > 0 {
		return filepath.Join(cacheDirectory, applicationDirectoryNameConstant, cacheFileNameConstant)
	}
	return filepath.Join("~", ".cache", applicationDirectoryNameConstant, cacheFileNameConstant)
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Root:                  DefaultRootDirectory,
		DefaultHost:           DefaultHost,
		DefaultVersionControl: vcs.KindGit,
		Includes:              []string{},
		Excludes:              []string{},
		CacheFile:             DefaultCacheFilePath(),
	}
}

// DefaultConfigurationValues returns viper defaults keyed by configuration key.
func DefaultConfigurationValues() map[string]any {
	defaults := DefaultSettings()
	return map[string]any{
		RootConfigurationKey:                  defaults.Root,
		DefaultHostConfigurationKey:           defaults.DefaultHost,
		DefaultVersionControlConfigurationKey: string(defaults.DefaultVersionControl),
		IncludesConfigurationKey:              defaults.Includes,
		ExcludesConfigurationKey:              defaults.Excludes,
		CacheFileConfigurationKey:             defaults.CacheFile,
	}
}

// Resolve expands and validates settings into a Config.
func (settings Settings) Resolve(expander *pathutils.PathExpander) (Config, error) {
	if expander == nil {
		expander = pathutils.NewPathExpander()
	}
	defaults := DefaultSettings()

	rootDirectory, rootError := absoluteExpandedPath(expander, firstNonEmpty(settings.Root, defaults.Root))
	if rootError != nil {
		return Config{}, fmt.Errorf(rootResolveErrorTemplateConstant, settings.Root, rootError)
	}

	cacheFilePath, cacheError := absoluteExpandedPath(expander, firstNonEmpty(settings.CacheFile, defaults.CacheFile))
	if cacheError != nil {
		return Config{}, fmt.Errorf(cacheResolveErrorTemplateConstant, settings.CacheFile, cacheError)
	}

	includeDirectories := make([]string, 0, len(settings.Includes))
	seenIncludes := make(map[string]struct{}, len(settings.Includes))
	for _, include := range settings.Includes {
		if len(strings.TrimSpace(include)) == 0 {
			continue
		}
		includeDirectory, includeError := absoluteExpandedPath(expander, include)
		if includeError != nil {
			return Config{}, fmt.Errorf(includeResolveErrorTemplate, include, includeError)
		}
		if _, duplicate := seenIncludes[includeDirectory]; duplicate {
			continue
		}
		seenIncludes[includeDirectory] = struct{}{}
		includeDirectories = append(includeDirectories, includeDirectory)
	}

	excludes, excludesError := exclude.CompileAll(settings.Excludes, expander)
	if excludesError != nil {
		return Config{}, fmt.Errorf(excludesErrorTemplateConstant, excludesError)
	}

	defaultVersionControl := settings.DefaultVersionControl
	if len(defaultVersionControl) == 0 {
		defaultVersionControl = defaults.DefaultVersionControl
	}

	return Config{
		RootDirectory:         rootDirectory,
		DefaultHost:           firstNonEmpty(strings.TrimSpace(settings.DefaultHost), defaults.DefaultHost),
		DefaultVersionControl: defaultVersionControl,
		IncludeDirectories:    includeDirectories,
		Excludes:              excludes,
		CacheFilePath:         cacheFilePath,
	}, nil
}

func absoluteExpandedPath(expander *pathutils.PathExpander, candidatePath string) (string, error) {
	return filepath.Abs(expander.Expand(strings.TrimSpace(candidatePath)))
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if len(value) > 0 {
			return value
		}
	}
	return ""
}
