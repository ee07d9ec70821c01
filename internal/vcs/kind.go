package vcs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind names a supported version-control system.
type Kind string

const (
	// KindGit identifies git repositories.
	KindGit Kind = "git"
	// KindMercurial identifies Mercurial repositories.
	KindMercurial Kind = "hg"
	// KindDarcs identifies darcs repositories.
	KindDarcs Kind = "darcs"
	// KindPijul identifies pijul repositories.
	KindPijul Kind = "pijul"
)

const (
	unknownKindMessageConstant  = "unknown version control system"
	unknownKindTemplateConstant = "%w: %q"
	gitMarkerConstant           = ".git"
	mercurialMarkerConstant     = ".hg"
	darcsMarkerConstant         = "_darcs"
	pijulMarkerConstant         = ".pijul"
	mercurialAliasConstant      = "mercurial"
)

// ErrUnknownKind indicates a version-control name outside the supported set.
var ErrUnknownKind = errors.New(unknownKindMessageConstant)

// detectionOrder lists kinds in marker priority order.
var detectionOrder = []Kind{KindGit, KindMercurial, KindDarcs, KindPijul}

// Kinds returns every supported kind in detection priority order.
func Kinds() []Kind {
	return append([]Kind(nil), detectionOrder...)
}

// KindNames returns the textual names of Kinds, for flag usage strings.
func KindNames() []string {
	names := make([]string, 0, len(detectionOrder))
	for _, kind := range detectionOrder {
		names = append(names, string(kind))
	}
	return names
}

// ParseKind converts a case-insensitive name into a Kind.
func ParseKind(value string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == mercurialAliasConstant {
		return KindMercurial, nil
	}
	for _, kind := range detectionOrder {
		if string(kind) == normalized {
			return kind, nil
		}
	}
	return "", fmt.Errorf(unknownKindTemplateConstant, ErrUnknownKind, value)
}

// String returns the kind name.
func (kind Kind) String() string {
	return string(kind)
}

// Marker returns the directory entry whose presence identifies the kind.
func (kind Kind) Marker() string {
	switch kind {
	case KindGit:
		return gitMarkerConstant
	case KindMercurial:
		return mercurialMarkerConstant
	case KindDarcs:
		return darcsMarkerConstant
	case KindPijul:
		return pijulMarkerConstant
	default:
		return ""
	}
}

// MarshalText encodes the kind name.
func (kind Kind) MarshalText() ([]byte, error) {
	if len(kind.Marker()) == 0 {
		return nil, fmt.Errorf(unknownKindTemplateConstant, ErrUnknownKind, string(kind))
	}
	return []byte(kind), nil
}

// UnmarshalText decodes a kind name through ParseKind.
func (kind *Kind) UnmarshalText(text []byte) error {
	parsedKind, parseError := ParseKind(string(text))
	if parseError != nil {
		return parseError
	}
	*kind = parsedKind
	return nil
}

// Detect reports the kind of the repository rooted at directory. Markers are
// checked in the order git, hg, darcs, pijul and the first present one wins.
func Detect(directory string) (Kind, bool) {
	for _, kind := range detectionOrder {
		if _, statError := os.Stat(filepath.Join(directory, kind.Marker())); statError == nil {
			return kind, true
		}
	}
	return "", false
}
