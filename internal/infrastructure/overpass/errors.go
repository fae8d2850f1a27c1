package overpass

import (
	"errors"
	"fmt"
)

// Failure classes of a single Overpass request. Rate limiting and server
// errors are connection-class failures, so errors.Is(err, ErrConnection)
// holds for both.
var (
	ErrConnection      = errors.New("overpass connection error")
	ErrTimeout         = errors.New("overpass request timed out")
	ErrRateLimited     = fmt.Errorf("%w: rate limit exceeded", ErrConnection)
	ErrServer          = fmt.Errorf("%w: server error", ErrConnection)
	ErrUnexpectedReply = fmt.Errorf("%w: unexpected status", ErrConnection)
	ErrBadRequest      = errors.New("overpass bad request")
	ErrInvalidResponse = errors.New("overpass invalid JSON response")
	ErrNoEndpoints     = errors.New("overpass: no endpoints configured")
)
