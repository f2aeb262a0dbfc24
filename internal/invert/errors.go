package invert

import "errors"

var errShortBuffer = errors.New("invert: posting buffer too short to decode")
