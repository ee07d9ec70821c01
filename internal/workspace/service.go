package workspace

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/repohq/internal/exclude"
	"github.com/temirov/repohq/internal/execshell"
	"github.com/temirov/repohq/internal/location"
	"github.com/temirov/repohq/internal/printer"
	"github.com/temirov/repohq/internal/reference"
	"github.com/temirov/repohq/internal/remote"
	"github.com/temirov/repohq/internal/repository"
	"github.com/temirov/repohq/internal/scanner"
	"github.com/temirov/repohq/internal/store"
	pathutils "github.com/temirov/repohq/internal/utils/path"
	"github.com/temirov/repohq/internal/vcs"
)

const (
	storeMissingMessageConstant         = "workspace requires a store"
	backendsMissingMessageConstant      = "workspace requires version control backends"
	inspectorMissingMessageConstant     = "workspace requires a repository inspector"
	scannerMissingMessageConstant       = "workspace requires a repository scanner"
	executorMissingMessageConstant      = "workspace requires a command executor"
	cacheNotInitializedMessageConstant  = "the cache has not been initialized yet; run import or add first"
	noImportRootsMessageConstant        = "no directories to import; pass them as arguments or configure includes"
	emptyCommandMessageConstant         = "command name is required"
	configurationErrorTemplateConstant  = "unable to load configuration: %w"
	cacheErrorTemplateConstant          = "unable to load cache: %w"
	saveErrorTemplateConstant           = "unable to save cache: %w"
	referenceErrorTemplateConstant      = "unable to parse %q: %w"
	backendErrorTemplateConstant        = "unable to select %s backend: %w"
	initErrorTemplateConstant           = "unable to create repository at %s: %w"
	cloneErrorTemplateConstant          = "unable to clone %s into %s: %w"
	setRemoteErrorTemplateConstant      = "unable to set remote of %s: %w"
	recordErrorTemplateConstant         = "unable to record repository %s: %w"
	destinationErrorTemplateConstant    = "unable to resolve destination %q: %w"
	foreachErrorTemplateConstant        = "command failed in %s: %w"
	alreadyExistsNoticeTemplateConstant = "[info] The repository %s already exists (%s)\n"
	createNoticeTemplateConstant        = "Creating an empty repository at %s (VCS: %s)\n"
	cloneNoticeTemplateConstant         = "Cloning %s into %s (VCS: %s)\n"
	remoteSkippedNoticeTemplateConstant = "[info] Remote not recorded for %s: %v\n"
	ignoredNoticeTemplateConstant       = "Ignored: %s is not a repository\n"
	inspectFailedNoticeTemplateConstant = "Ignored: %s (%v)\n"
	excludedNoticeTemplateConstant      = "Excluded: %s (%s)\n"
	serviceLoadedLogMessageConstant     = "workspace loaded"
	importRootLogMessageConstant        = "importing repositories"
	importedLogMessageConstant          = "import finished"
	savedLogMessageConstant             = "cache saved"
	logFieldRepositoryCountConstant     = "repository_count"
	logFieldCacheExistsConstant         = "cache_exists"
	logFieldRootConstant                = "root"
	logFieldMergedConstant              = "merged"
	logFieldDepthConstant               = "max_depth"
)

// ErrCacheNotInitialized indicates a read of an index that was never saved or populated.
var ErrCacheNotInitialized = errors.New(cacheNotInitializedMessageConstant)

// ErrNoImportRoots indicates an import without arguments or configured includes.
var ErrNoImportRoots = errors.New(noImportRootsMessageConstant)

// ErrEmptyCommand indicates a foreach without a command.
var ErrEmptyCommand = errors.New(emptyCommandMessageConstant)

var (
	errStoreMissing     = errors.New(storeMissingMessageConstant)
	errBackendsMissing  = errors.New(backendsMissingMessageConstant)
	errInspectorMissing = errors.New(inspectorMissingMessageConstant)
	errScannerMissing   = errors.New(scannerMissingMessageConstant)
	errExecutorMissing  = errors.New(executorMissingMessageConstant)
)

// BackendProvider selects the backend for a version control kind.
type BackendProvider interface {
	Backend(kind vcs.Kind) (vcs.Backend, error)
}

// RepositoryScanner discovers repositories below a root.
type RepositoryScanner interface {
	Scan(executionContext context.Context, root string, options scanner.Options) (iter.Seq[repository.Repository], error)
}

// CommandExecutor runs commands inside repositories.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error)
}

// ServiceDependencies describes the collaborators of a Service.
type ServiceDependencies struct {
	Store        store.Store
	Backends     BackendProvider
	Inspector    Validator
	Scanner      RepositoryScanner
	Executor     CommandExecutor
	Printer      printer.Printer
	Logger       *zap.Logger
	PathExpander *pathutils.PathExpander
	Clock        func() time.Time
}

// Service runs workspace operations against an index loaded from the store.
type Service struct {
	store        store.Store
	backends     BackendProvider
	inspector    Validator
	scanner      RepositoryScanner
	executor     CommandExecutor
	notices      printer.Printer
	logger       *zap.Logger
	pathExpander *pathutils.PathExpander
	clock        func() time.Time
	config       store.Config
	index        *Index
}

// NewService loads the configuration and cache and returns a ready Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Store == nil {
		return nil, errStoreMissing
	}
	if dependencies.Backends == nil {
		return nil, errBackendsMissing
	}
	if dependencies.Inspector == nil {
		return nil, errInspectorMissing
	}
	if dependencies.Scanner == nil {
		return nil, errScannerMissing
	}
	if dependencies.Executor == nil {
		return nil, errExecutorMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notices := dependencies.Printer
	if notices == nil {
		notices = printer.Discard()
	}
	pathExpander := dependencies.PathExpander
	if pathExpander == nil {
		pathExpander = pathutils.NewPathExpander()
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = time.Now
	}

	config, configError := dependencies.Store.LoadConfig()
	if configError != nil {
		return nil, fmt.Errorf(configurationErrorTemplateConstant, configError)
	}
	cache, cacheError := dependencies.Store.LoadCache()
	if cacheError != nil {
		return nil, fmt.Errorf(cacheErrorTemplateConstant, cacheError)
	}

	index := NewIndex(notices, logger)
	if cache.Exists {
		index.Load(cache.Repositories, cache.Timestamp)
	}
	logger.Debug(serviceLoadedLogMessageConstant, zap.Bool(logFieldCacheExistsConstant, cache.Exists), zap.Int(logFieldRepositoryCountConstant, index.Len()))

	return &Service{
		store:        dependencies.Store,
		backends:     dependencies.Backends,
		inspector:    dependencies.Inspector,
		scanner:      dependencies.Scanner,
		executor:     dependencies.Executor,
		notices:      notices,
		logger:       logger,
		pathExpander: pathExpander,
		clock:        clock,
		config:       config,
		index:        index,
	}, nil
}

// Config returns the resolved configuration.
func (service *Service) Config() store.Config {
	return service.config
}

// Index exposes the loaded index.
func (service *Service) Index() *Index {
	return service.index
}

// CreateOptions configure Create.
type CreateOptions struct {
	Kind          vcs.Kind
	UseSSH        bool
	RootDirectory string
}

// CreateResult reports what Create did.
type CreateResult struct {
	Repository repository.Repository
	Created    bool
}

// Create initializes an empty repository at the workspace location of query and
// points it at the matching remote when the backend supports it. An existing
// repository at that location is left untouched.
func (service *Service) Create(executionContext context.Context, query string, options CreateOptions) (CreateResult, error) {
	parsedReference, parseError := reference.Parse(query)
	if parseError != nil {
		return CreateResult{}, fmt.Errorf(referenceErrorTemplateConstant, query, parseError)
	}
	kind := service.kindOrDefault(options.Kind)

	repositoryPath, locationError := service.locationResolver(options.RootDirectory).Resolve(parsedReference)
	if locationError != nil {
		return CreateResult{}, locationError
	}

	service.notices.Printf(createNoticeTemplateConstant, repositoryPath, kind)
	if existingKind, exists := vcs.Detect(repositoryPath); exists {
		service.notices.Printf(alreadyExistsNoticeTemplateConstant, repositoryPath, existingKind)
		return CreateResult{}, nil
	}

	backend, backendError := service.backends.Backend(kind)
	if backendError != nil {
		return CreateResult{}, fmt.Errorf(backendErrorTemplateConstant, kind, backendError)
	}
	if initError := backend.Init(executionContext, repositoryPath); initError != nil {
		return CreateResult{}, fmt.Errorf(initErrorTemplateConstant, repositoryPath, initError)
	}

	recordedRemote, remoteError := service.configureRemote(executionContext, backend, parsedReference, repositoryPath, options.UseSSH)
	if remoteError != nil {
		return CreateResult{}, remoteError
	}

	createdRepository, buildError := repository.New(repositoryPath, kind, recordedRemote)
	if buildError != nil {
		return CreateResult{}, fmt.Errorf(recordErrorTemplateConstant, repositoryPath, buildError)
	}
	service.index.Add(createdRepository)
	return CreateResult{Repository: createdRepository, Created: true}, nil
}

func (service *Service) configureRemote(executionContext context.Context, backend vcs.Backend, parsedReference reference.Reference, repositoryPath string, useSSH bool) (remote.Remote, error) {
	resolvedRemote, resolveError := remote.Resolve(parsedReference, useSSH, service.config.DefaultHost)
	if resolveError != nil {
		service.notices.Printf(remoteSkippedNoticeTemplateConstant, repositoryPath, resolveError)
		return "", nil
	}

	setError := backend.SetRemoteURL(executionContext, repositoryPath, resolvedRemote.String())
	if vcs.IsUnsupportedOperation(setError) {
		service.notices.Printf(remoteSkippedNoticeTemplateConstant, repositoryPath, setError)
		return "", nil
	}
	if setError != nil {
		return "", fmt.Errorf(setRemoteErrorTemplateConstant, repositoryPath, setError)
	}
	return resolvedRemote, nil
}

// CloneOptions configure Clone.
type CloneOptions struct {
	// Destination overrides the workspace location derived from the query.
	Destination    string
	Kind           vcs.Kind
	UseSSH         bool
	RootDirectory  string
	ExtraArguments []string
}

// CloneResult reports what Clone did.
type CloneResult struct {
	Repository repository.Repository
	Remote     remote.Remote
	Cloned     bool
}

// Clone resolves the remote and destination of query, clones it and records it.
// A destination that already holds a repository is left untouched.
func (service *Service) Clone(executionContext context.Context, query string, options CloneOptions) (CloneResult, error) {
	parsedReference, parseError := reference.Parse(query)
	if parseError != nil {
		return CloneResult{}, fmt.Errorf(referenceErrorTemplateConstant, query, parseError)
	}
	kind := service.kindOrDefault(options.Kind)

	resolvedRemote, resolveError := remote.Resolve(parsedReference, options.UseSSH, service.config.DefaultHost)
	if resolveError != nil {
		return CloneResult{}, resolveError
	}

	destination, destinationError := service.cloneDestination(parsedReference, options)
	if destinationError != nil {
		return CloneResult{}, destinationError
	}

	service.notices.Printf(cloneNoticeTemplateConstant, resolvedRemote, destination, kind)
	if existingKind, exists := vcs.Detect(destination); exists {
		service.notices.Printf(alreadyExistsNoticeTemplateConstant, destination, existingKind)
		return CloneResult{Remote: resolvedRemote}, nil
	}

	backend, backendError := service.backends.Backend(kind)
	if backendError != nil {
		return CloneResult{}, fmt.Errorf(backendErrorTemplateConstant, kind, backendError)
	}
	if cloneError := backend.Clone(executionContext, destination, resolvedRemote.String(), options.ExtraArguments); cloneError != nil {
		return CloneResult{}, fmt.Errorf(cloneErrorTemplateConstant, resolvedRemote, destination, cloneError)
	}

	clonedRepository, buildError := repository.New(destination, kind, resolvedRemote)
	if buildError != nil {
		return CloneResult{}, fmt.Errorf(recordErrorTemplateConstant, destination, buildError)
	}
	service.index.Add(clonedRepository)
	return CloneResult{Repository: clonedRepository, Remote: resolvedRemote, Cloned: true}, nil
}

func (service *Service) cloneDestination(parsedReference reference.Reference, options CloneOptions) (string, error) {
	if len(options.Destination) == 0 {
		return service.locationResolver(options.RootDirectory).Resolve(parsedReference)
	}
	destination, absoluteError := filepath.Abs(service.pathExpander.Expand(options.Destination))
	if absoluteError != nil {
		return "", fmt.Errorf(destinationErrorTemplateConstant, options.Destination, absoluteError)
	}
	return destination, nil
}

// AddPaths records every path that holds a repository and reports the others as ignored.
// It returns how many repositories were recorded.
func (service *Service) AddPaths(executionContext context.Context, paths []string) int {
	recorded := 0
	for _, expandedPath := range service.pathExpander.ExpandAll(paths) {
		inspectedRepository, inspectError := service.inspector.Inspect(executionContext, expandedPath)
		switch {
		case errors.Is(inspectError, repository.ErrNotRepository):
			service.notices.Printf(ignoredNoticeTemplateConstant, expandedPath)
		case inspectError != nil:
			service.notices.Printf(inspectFailedNoticeTemplateConstant, expandedPath, inspectError)
		default:
			service.index.Add(inspectedRepository)
			recorded++
		}
	}
	return recorded
}

// ImportOptions configure Import.
type ImportOptions struct {
	Roots    []string
	MaxDepth int
}

// Import scans each root in turn, or the configured includes when none are given,
// and merges the results. Roots nested inside another root are scanned once. It returns how many repositories were merged.
func (service *Service) Import(executionContext context.Context, options ImportOptions) (int, error) {
	roots := options.Roots
	if len(roots) == 0 {
		roots = service.config.IncludeDirectories
	}
	roots = pathutils.NewPathListSanitizer(service.pathExpander, pathutils.PathListSanitizerConfiguration{PruneNestedPaths: true}).Sanitize(roots)
	if len(roots) == 0 {
		return 0, ErrNoImportRoots
	}

	scanOptions := scanner.Options{
		MaxDepth: options.MaxDepth,
		Excludes: service.config.Excludes,
		OnExcluded: func(excludedPath string, pattern exclude.Pattern) {
			service.notices.Printf(excludedNoticeTemplateConstant, excludedPath, pattern.String())
		},
	}

	merged := 0
	for _, root := range roots {
		service.logger.Debug(importRootLogMessageConstant, zap.String(logFieldRootConstant, root), zap.Int(logFieldDepthConstant, options.MaxDepth))
		repositories, scanError := service.scanner.Scan(executionContext, root, scanOptions)
		if scanError != nil {
			return merged, scanError
		}
		merged += service.index.Merge(repositories)
		if contextError := executionContext.Err(); contextError != nil {
			return merged, contextError
		}
	}
	service.logger.Debug(importedLogMessageConstant, zap.Int(logFieldMergedConstant, merged), zap.Int(logFieldRepositoryCountConstant, service.index.Len()))
	return merged, nil
}

// Refresh drops entries that are no longer repositories or are now excluded,
// refreshes remotes of the rest and optionally sorts. It returns the number dropped.
func (service *Service) Refresh(executionContext context.Context, sortEntries bool) int {
	dropped := service.index.DropInvalid(executionContext, service.inspector, service.config.Excludes)
	if sortEntries {
		service.index.Sort()
	}
	return dropped
}

// Repositories returns the entries sorted by name.
func (service *Service) Repositories() ([]repository.Repository, error) {
	if !service.index.Loaded() {
		return nil, ErrCacheNotInitialized
	}
	service.index.Sort()
	return service.index.All(), nil
}

// Save persists the index.
func (service *Service) Save() error {
	if saveError := service.store.SaveCache(service.index.All()); saveError != nil {
		return fmt.Errorf(saveErrorTemplateConstant, saveError)
	}
	service.index.MarkSaved(service.clock())
	service.logger.Debug(savedLogMessageConstant, zap.Int(logFieldRepositoryCountConstant, service.index.Len()))
	return nil
}

func (service *Service) kindOrDefault(kind vcs.Kind) vcs.Kind {
	if len(kind) > 0 {
		return kind
	}
	if len(service.config.DefaultVersionControl) > 0 {
		return service.config.DefaultVersionControl
	}
	return vcs.KindGit
}

func (service *Service) locationResolver(rootOverride string) location.Resolver {
	rootDirectory := service.config.RootDirectory
	if len(rootOverride) > 0 {
		if absoluteRoot, absoluteError := filepath.Abs(service.pathExpander.Expand(rootOverride)); absoluteError == nil {
			rootDirectory = absoluteRoot
		}
	}
	return location.NewResolver(rootDirectory, service.config.DefaultHost)
}
