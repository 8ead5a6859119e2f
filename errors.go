package relate

import "github.com/cockroachdb/errors"

// ErrUnsupportedGeometry is returned for nil geometries and geometry types the engine cannot evaluate.
var ErrUnsupportedGeometry = errors.New("unsupported geometry")

// ErrInvalidPattern is returned for DE-9IM patterns that are not nine characters from "012FT*".
var ErrInvalidPattern = errors.New("invalid DE-9IM pattern")

// ErrInvalidInput is returned for geometries with non-finite coordinates or degenerate rings.
var ErrInvalidInput = errors.New("invalid geometry")
