package reference

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

// Kind tags the shape a Reference was parsed from.
type Kind int

const (
	// KindURL is a scheme URL such as https://github.com/org/repo.git.
	KindURL Kind = iota + 1
	// KindSCP is an scp-like address such as git@github.com:org/repo.git.
	KindSCP
	// KindPath is a bare path such as org/repo or github.com/org/repo.
	KindPath
)

const (
	schemeHTTP                 = "http"
	schemeHTTPS                = "https"
	schemeSSH                  = "ssh"
	schemeGit                  = "git"
	gitSuffixConstant          = ".git"
	pathSeparatorConstant      = "/"
	userHostSeparatorConstant  = "@"
	defaultSCPUsernameConstant = "git"
	urlRenderTemplateConstant  = "%s://%s/%s"
	scpRenderTemplateConstant  = "%s@%s:%s"
	hostPortTemplateConstant   = "%s:%s"
	userHostTemplateConstant   = "%s@%s"
)

var (
	schemePattern = regexp.MustCompile(`^([^:]+)://`)
	scpPattern    = regexp.MustCompile(`^((?:[^@]+@)?)([^:]+):/?(.+)$`)

	supportedSchemes = []string{schemeHTTP, schemeHTTPS, schemeSSH, schemeGit}
	relativePrefixes = []string{"./", "../", `.\`, `..\`}
	relativeSegments = []string{".", ".."}

	// KnownHosts are recognized as the host component when they lead a bare path.
	KnownHosts = []string{"github.com", "gitlab.com", "bitbucket.org"}
)

// Reference is a parsed repository reference.
type Reference struct {
	kind     Kind
	scheme   string
	username string
	host     string
	port     string
	path     string
	segments []string
	location *url.URL
}

// Parse classifies input as a URL, an scp-like address or a bare path.
func Parse(input string) (Reference, error) {
	if len(input) == 0 {
		return Reference{}, ParseError{Input: input, Cause: ErrEmptyReference}
	}

	if schemeMatch := schemePattern.FindStringSubmatch(input); schemeMatch != nil {
		return parseURL(input, schemeMatch[1])
	}

	if scpMatch := scpPattern.FindStringSubmatch(input); scpMatch != nil {
		return parseSCP(input, scpMatch[1], scpMatch[2], scpMatch[3])
	}

	for _, relativePrefix := range relativePrefixes {
		if strings.HasPrefix(input, relativePrefix) {
			return Reference{}, ParseError{Input: input, Cause: ErrRelativePath}
		}
	}

	return parseBarePath(input)
}

func parseURL(input string, scheme string) (Reference, error) {
	if !slices.Contains(supportedSchemes, scheme) {
		return Reference{}, ParseError{Input: input, Cause: ErrInvalidScheme, Detail: scheme}
	}

	parsedURL, parseError := url.Parse(input)
	if parseError != nil {
		return Reference{}, ParseError{Input: input, Cause: ErrMalformedURL, Detail: parseError.Error()}
	}

	parsedReference := Reference{
		kind:     KindURL,
		scheme:   scheme,
		host:     parsedURL.Hostname(),
		port:     parsedURL.Port(),
		path:     normalizeRepositoryPath(parsedURL.Path),
		location: parsedURL,
	}
	if parsedURL.User != nil {
		parsedReference.username = parsedURL.User.Username()
	}
	return parsedReference, nil
}

func parseSCP(input string, userPrefix string, host string, path string) (Reference, error) {
	username := strings.TrimSuffix(userPrefix, userHostSeparatorConstant)
	if len(username) == 0 {
		username = defaultSCPUsernameConstant
	}
	return Reference{
		kind:     KindSCP,
		username: username,
		host:     host,
		path:     normalizeRepositoryPath(path),
	}, nil
}

func parseBarePath(input string) (Reference, error) {
	segments := make([]string, 0, strings.Count(input, pathSeparatorConstant)+1)
	for _, segment := range strings.Split(input, pathSeparatorConstant) {
		if slices.Contains(relativeSegments, segment) {
			return Reference{}, ParseError{Input: input, Cause: ErrRelativePath}
		}
		if len(segment) > 0 {
			segments = append(segments, segment)
		}
	}
	if len(segments) == 0 {
		return Reference{}, ParseError{Input: input, Cause: ErrEmptyReference}
	}

	lastIndex := len(segments) - 1
	segments[lastIndex] = strings.TrimSuffix(segments[lastIndex], gitSuffixConstant)
	if len(segments[lastIndex]) == 0 {
		segments = segments[:lastIndex]
	}
	if len(segments) == 0 {
		return Reference{}, ParseError{Input: input, Cause: ErrEmptyReference}
	}

	return Reference{kind: KindPath, segments: segments}, nil
}

func normalizeRepositoryPath(rawPath string) string {
	trimmedPath := strings.Trim(rawPath, pathSeparatorConstant)
	return strings.TrimSuffix(trimmedPath, gitSuffixConstant)
}

// Kind reports which shape the reference was parsed from.
func (reference Reference) Kind() Kind {
	return reference.kind
}

// Scheme returns the URL scheme, empty for other shapes.
func (reference Reference) Scheme() string {
	return reference.scheme
}

// Username returns the user component of URL and scp-like references.
func (reference Reference) Username() string {
	return reference.username
}

// Port returns the URL port, empty when absent.
func (reference Reference) Port() string {
	return reference.port
}

// URL returns a copy of the parsed URL, including credentials, query and
// fragment, for URL references and nil for other shapes.
func (reference Reference) URL() *url.URL {
	if reference.location == nil {
		return nil
	}
	copied := *reference.location
	return &copied
}

// Host returns the host the reference names. Bare paths only name a host when
// their first segment is one of KnownHosts.
func (reference Reference) Host() (string, bool) {
	switch reference.kind {
	case KindURL, KindSCP:
		return reference.host, len(reference.host) > 0
	case KindPath:
		if len(reference.segments) > 0 && slices.Contains(KnownHosts, reference.segments[0]) {
			return reference.segments[0], true
		}
	}
	return "", false
}

// RepositoryPath returns the slash-joined repository path without host or .git suffix.
func (reference Reference) RepositoryPath() string {
	if reference.kind != KindPath {
		return reference.path
	}
	if _, hasHost := reference.Host(); hasHost {
		return strings.Join(reference.segments[1:], pathSeparatorConstant)
	}
	return strings.Join(reference.segments, pathSeparatorConstant)
}

// String renders the reference in its parsed shape.
func (reference Reference) String() string {
	switch reference.kind {
	case KindURL:
		authority := reference.host
		if len(reference.port) > 0 {
			authority = fmt.Sprintf(hostPortTemplateConstant, authority, reference.port)
		}
		if len(reference.username) > 0 {
			authority = fmt.Sprintf(userHostTemplateConstant, reference.username, authority)
		}
		return fmt.Sprintf(urlRenderTemplateConstant, reference.scheme, authority, reference.path)
	case KindSCP:
		return fmt.Sprintf(scpRenderTemplateConstant, reference.username, reference.host, reference.path)
	case KindPath:
		return strings.Join(reference.segments, pathSeparatorConstant)
	default:
		return ""
	}
}
