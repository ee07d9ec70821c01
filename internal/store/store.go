package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/temirov/repohq/internal/remote"
	"github.com/temirov/repohq/internal/repository"
	"github.com/temirov/repohq/internal/utils"
	pathutils "github.com/temirov/repohq/internal/utils/path"
	"github.com/temirov/repohq/internal/vcs"
)

const (
	configurationLoaderMissingMessage = "file store requires a configuration loader"
	configurationLoadErrorTemplate    = "unable to load configuration: %w"
	cacheReadErrorTemplateConstant    = "unable to read cache %s: %w"
	cacheDecodeErrorTemplateConstant  = "unable to decode cache %s: %w"
	cacheEncodeErrorTemplateConstant  = "unable to encode cache: %w"
	cacheDirectoryErrorTemplate       = "unable to create cache directory %s: %w"
	cacheWriteErrorTemplateConstant   = "unable to write cache %s: %w"
	cacheReplaceErrorTemplateConstant = "unable to replace cache %s: %w"
	cacheTemporaryPatternConstant     = ".cache-*.json"
	cacheDirectoryPermissionsConstant = 0o755
	cacheJSONIndentConstant           = "  "
)

// ErrConfigurationLoaderMissing indicates a FileStore built without a loader.
var ErrConfigurationLoaderMissing = errors.New(configurationLoaderMissingMessage)

// Cache is the persisted repository list.
type Cache struct {
	Timestamp    time.Time
	Repositories []repository.Repository
	// Exists is false when no cache has ever been saved.
	Exists bool
}

// Store loads configuration and loads or saves the repository cache.
type Store interface {
	LoadConfig() (Config, error)
	LoadCache() (Cache, error)
	SaveCache(repositories []repository.Repository) error
}

// ConfigurationLoader decodes configuration files and environment overrides into a target.
type ConfigurationLoader interface {
	LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (utils.LoadedConfiguration, error)
}

// FileStoreOptions configure a FileStore.
type FileStoreOptions struct {
	ConfigurationLoader   ConfigurationLoader
	ConfigurationFilePath string
	// CacheFilePath overrides the cache_file setting when set.
	CacheFilePath string
	PathExpander  *pathutils.PathExpander
	Clock         func() time.Time
}

// FileStore reads configuration through viper and keeps the cache as a JSON file.
type FileStore struct {
	options        FileStoreOptions
	configOnce     sync.Once
	config         Config
	configError    error
	configFileUsed string
}

// NewFileStore constructs a FileStore.
func NewFileStore(options FileStoreOptions) (*FileStore, error) {
	if options.ConfigurationLoader == nil {
		return nil, ErrConfigurationLoaderMissing
	}
	if options.PathExpander == nil {
		options.PathExpander = pathutils.NewPathExpander()
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}
	return &FileStore{options: options}, nil
}

// LoadConfig loads and resolves the configuration once; later calls return the same result.
func (fileStore *FileStore) LoadConfig() (Config, error) {
	fileStore.configOnce.Do(func() {
		var settings Settings
		loadedConfiguration, loadError := fileStore.options.ConfigurationLoader.LoadConfiguration(
			fileStore.options.ConfigurationFilePath,
			DefaultConfigurationValues(),
			&settings,
		)
		if loadError != nil {
			fileStore.configError = fmt.Errorf(configurationLoadErrorTemplate, loadError)
			return
		}
		fileStore.configFileUsed = loadedConfiguration.ConfigFileUsed

		if len(fileStore.options.CacheFilePath) > 0 {
			settings.CacheFile = fileStore.options.CacheFilePath
		}
		fileStore.config, fileStore.configError = settings.Resolve(fileStore.options.PathExpander)
	})
	return fileStore.config, fileStore.configError
}

// ConfigurationFileUsed returns the configuration file viper read, if any.
func (fileStore *FileStore) ConfigurationFileUsed() string {
	return fileStore.configFileUsed
}

// LoadCache reads the cache file. A missing file yields an empty cache with Exists unset.
func (fileStore *FileStore) LoadCache() (Cache, error) {
	config, configError := fileStore.LoadConfig()
	if configError != nil {
		return Cache{}, configError
	}

	contents, readError := os.ReadFile(config.CacheFilePath)
	if errors.Is(readError, fs.ErrNotExist) {
		return Cache{}, nil
	}
	if readError != nil {
		return Cache{}, fmt.Errorf(cacheReadErrorTemplateConstant, config.CacheFilePath, readError)
	}

	var document cacheDocument
	if decodeError := json.Unmarshal(contents, &document); decodeError != nil {
		return Cache{}, fmt.Errorf(cacheDecodeErrorTemplateConstant, config.CacheFilePath, decodeError)
	}
	return document.toCache(), nil
}

// SaveCache writes the repositories to a temporary sibling and renames it over the cache file.
func (fileStore *FileStore) SaveCache(repositories []repository.Repository) error {
	config, configError := fileStore.LoadConfig()
	if configError != nil {
		return configError
	}

	encoded, encodeError := json.MarshalIndent(newCacheDocument(fileStore.options.Clock(), repositories), "", cacheJSONIndentConstant)
	if encodeError != nil {
		return fmt.Errorf(cacheEncodeErrorTemplateConstant, encodeError)
	}
	return writeFileAtomically(config.CacheFilePath, append(encoded, '\n'))
}

func writeFileAtomically(targetPath string, contents []byte) error {
	targetDirectory := filepath.Dir(targetPath)
	if mkdirError := os.MkdirAll(targetDirectory, cacheDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(cacheDirectoryErrorTemplate, targetDirectory, mkdirError)
	}

	temporaryFile, createError := os.CreateTemp(targetDirectory, cacheTemporaryPatternConstant)
	if createError != nil {
		return fmt.Errorf(cacheWriteErrorTemplateConstant, targetPath, createError)
	}
	temporaryPath := temporaryFile.Name()
	defer os.Remove(temporaryPath)

	if _, writeError := temporaryFile.Write(contents); writeError != nil {
		temporaryFile.Close()
		return fmt.Errorf(cacheWriteErrorTemplateConstant, targetPath, writeError)
	}
	if syncError := temporaryFile.Sync(); syncError != nil {
		temporaryFile.Close()
		return fmt.Errorf(cacheWriteErrorTemplateConstant, targetPath, syncError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		return fmt.Errorf(cacheWriteErrorTemplateConstant, targetPath, closeError)
	}
	if renameError := os.Rename(temporaryPath, targetPath); renameError != nil {
		return fmt.Errorf(cacheReplaceErrorTemplateConstant, targetPath, renameError)
	}
	return nil
}

type cacheDocument struct {
	Timestamp    time.Time    `json:"timestamp"`
	Repositories []cacheEntry `json:"repositories"`
}

type cacheEntry struct {
	Name   string       `json:"name"`
	Path   string       `json:"path"`
	Kind   vcs.Kind     `json:"vcs"`
	Remote *cacheRemote `json:"remote,omitempty"`
}

type cacheRemote struct {
	URL string `json:"url"`
}

func newCacheDocument(timestamp time.Time, repositories []repository.Repository) cacheDocument {
	document := cacheDocument{Timestamp: timestamp.UTC(), Repositories: make([]cacheEntry, 0, len(repositories))}
	for _, cachedRepository := range repositories {
		entry := cacheEntry{Name: cachedRepository.Name, Path: cachedRepository.Path, Kind: cachedRepository.Kind}
		if cachedRepository.HasRemote() {
			entry.Remote = &cacheRemote{URL: cachedRepository.Remote.String()}
		}
		document.Repositories = append(document.Repositories, entry)
	}
	return document
}

func (document cacheDocument) toCache() Cache {
	cache := Cache{Timestamp: document.Timestamp, Exists: true, Repositories: make([]repository.Repository, 0, len(document.Repositories))}
	for _, entry := range document.Repositories {
		cachedRepository := repository.Repository{Name: entry.Name, Path: entry.Path, Kind: entry.Kind}
		if len(cachedRepository.Name) == 0 {
			cachedRepository.Name = filepath.Base(entry.Path)
		}
		if entry.Remote != nil {
			cachedRepository.Remote = remote.Remote(entry.Remote.URL)
		}
		cache.Repositories = append(cache.Repositories, cachedRepository)
	}
	return cache
}
