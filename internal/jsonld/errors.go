package jsonld

import (
	"errors"
	"fmt"
)

var ErrMissingRendition = errors.New("jsonld: missing image rendition")

// RenditionError reports an image without the thumbnail size a builder needs.
type RenditionError struct {
	Image string
	Size  string
}

func (e *RenditionError) Error() string {
	return fmt.Sprintf("jsonld: image %q has no %s rendition", e.Image, e.Size)
}

func (e *RenditionError) Is(target error) bool {
	return target == ErrMissingRendition
}

// SerializationError reports a document value the encoder cannot represent as JSON.
// Path is the dotted key path of the offending value.
type SerializationError struct {
	Path string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("jsonld: cannot serialize %s: %v", e.Path, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
