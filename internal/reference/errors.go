package reference

import (
	"errors"
	"fmt"
)

const (
	invalidSchemeMessageConstant  = "unsupported scheme"
	relativePathMessageConstant   = "relative filesystem paths are not repository references"
	emptyReferenceMessageConstant = "repository reference is empty"
	malformedURLMessageConstant   = "malformed repository URL"
	parseErrorTemplateConstant    = "invalid repository reference %q: %v"
	parseErrorWithDetailTemplate  = "invalid repository reference %q: %v (%s)"
)

// ErrInvalidScheme indicates a URL whose scheme is not http, https, ssh or git.
var ErrInvalidScheme = errors.New(invalidSchemeMessageConstant)

// ErrRelativePath indicates an input that starts with ./ or ../.
var ErrRelativePath = errors.New(relativePathMessageConstant)

// ErrEmptyReference indicates an input with no usable path segments.
var ErrEmptyReference = errors.New(emptyReferenceMessageConstant)

// ErrMalformedURL indicates a scheme URL that net/url rejected.
var ErrMalformedURL = errors.New(malformedURLMessageConstant)

// ParseError reports why an input could not be parsed into a Reference.
type ParseError struct {
	Input  string
	Cause  error
	Detail string
}

// Error describes the rejected input.
func (parseError ParseError) Error() string {
	if len(parseError.Detail) == 0 {
		return fmt.Sprintf(parseErrorTemplateConstant, parseError.Input, parseError.Cause)
	}
	return fmt.Sprintf(parseErrorWithDetailTemplate, parseError.Input, parseError.Cause, parseError.Detail)
}

// Unwrap exposes the sentinel cause.
func (parseError ParseError) Unwrap() error {
	return parseError.Cause
}
