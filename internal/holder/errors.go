package holder

import "errors"

var ErrNotInitialized = errors.New("data not set")
