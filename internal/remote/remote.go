// Package remote renders parsed references into clone URLs.
package remote

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/temirov/repohq/internal/reference"
)

const (
	emptyHostMessageConstant     = "repository reference has no host"
	emptyPathMessageConstant     = "repository reference has no repository path"
	unsupportedReferenceMessage  = "unsupported repository reference"
	resolveErrorTemplateConstant = "unable to resolve remote for %q: %v"
	schemeSSHConstant            = "ssh"
	defaultSSHUsernameConstant   = "git"
	scpRemoteTemplateConstant    = "%s@%s:%s.git"
	httpsRemoteTemplateConstant  = "https://%s/%s.git"
	gitSuffixConstant            = ".git"
	pathSeparatorConstant        = "/"
)

// ErrEmptyHost indicates a reference whose host is missing.
var ErrEmptyHost = errors.New(emptyHostMessageConstant)

// ErrEmptyPath indicates a reference with no repository path after the host.
var ErrEmptyPath = errors.New(emptyPathMessageConstant)

// ErrUnsupportedReference indicates a zero-value or unknown reference kind.
var ErrUnsupportedReference = errors.New(unsupportedReferenceMessage)

// ResolveError reports why a reference could not be rendered.
type ResolveError struct {
	Reference string
	Cause     error
}

// Error describes the failing reference.
func (resolveError ResolveError) Error() string {
	return fmt.Sprintf(resolveErrorTemplateConstant, resolveError.Reference, resolveError.Cause)
}

// Unwrap exposes the sentinel cause.
func (resolveError ResolveError) Unwrap() error {
	return resolveError.Cause
}

// Remote is a clone URL in whatever form the backend accepts.
type Remote string

// String returns the URL text.
func (remoteURL Remote) String() string {
	return string(remoteURL)
}

// IsZero reports whether no remote is recorded.
func (remoteURL Remote) IsZero() bool {
	return len(remoteURL) == 0
}

// Resolve renders a reference as a clone URL.
//
// URL references are kept as given, credentials, query and fragment included,
// with .git appended when missing. ssh URLs without a port are rendered in scp
// form; scp form has no port, so ssh URLs with one stay URLs. scp-like
// references are always rendered in scp form. Bare paths use the leading known host or defaultHost, and useSSH chooses
// between git@host:path.git and https://host/path.git.
func Resolve(parsedReference reference.Reference, useSSH bool, defaultHost string) (Remote, error) {
	repositoryPath := parsedReference.RepositoryPath()

	switch parsedReference.Kind() {
	case reference.KindURL:
		host, _ := parsedReference.Host()
		if len(host) == 0 {
			return "", newResolveError(parsedReference, ErrEmptyHost)
		}
		if len(repositoryPath) == 0 {
			return "", newResolveError(parsedReference, ErrEmptyPath)
		}
		if parsedReference.Scheme() == schemeSSHConstant && len(parsedReference.Port()) == 0 {
			username := parsedReference.Username()
			if len(username) == 0 {
				username = defaultSSHUsernameConstant
			}
			return Remote(fmt.Sprintf(scpRemoteTemplateConstant, username, host, repositoryPath)), nil
		}
		return Remote(withGitSuffix(parsedReference.URL()).String()), nil
	case reference.KindSCP:
		host, _ := parsedReference.Host()
		if len(host) == 0 {
			return "", newResolveError(parsedReference, ErrEmptyHost)
		}
		if len(repositoryPath) == 0 {
			return "", newResolveError(parsedReference, ErrEmptyPath)
		}
		return Remote(fmt.Sprintf(scpRemoteTemplateConstant, parsedReference.Username(), host, repositoryPath)), nil
	case reference.KindPath:
		host, hasHost := parsedReference.Host()
		if !hasHost {
			host = defaultHost
		}
		if len(host) == 0 {
			return "", newResolveError(parsedReference, ErrEmptyHost)
		}
		if len(repositoryPath) == 0 {
			return "", newResolveError(parsedReference, ErrEmptyPath)
		}
		if useSSH {
			return Remote(fmt.Sprintf(scpRemoteTemplateConstant, defaultSSHUsernameConstant, host, repositoryPath)), nil
		}
		return Remote(fmt.Sprintf(httpsRemoteTemplateConstant, host, repositoryPath)), nil
	default:
		return "", newResolveError(parsedReference, ErrUnsupportedReference)
	}
}

func withGitSuffix(location *url.URL) *url.URL {
	trimmedPath := strings.TrimSuffix(location.Path, pathSeparatorConstant)
	if strings.HasSuffix(trimmedPath, gitSuffixConstant) {
		if trimmedPath != location.Path {
			location.Path = trimmedPath
			location.RawPath = strings.TrimSuffix(location.RawPath, pathSeparatorConstant)
		}
		return location
	}
	location.Path = trimmedPath + gitSuffixConstant
	if len(location.RawPath) > 0 {
		location.RawPath = strings.TrimSuffix(location.RawPath, pathSeparatorConstant) + gitSuffixConstant
	}
	return location
}

func newResolveError(parsedReference reference.Reference, cause error) ResolveError {
	return ResolveError{Reference: parsedReference.String(), Cause: cause}
}
