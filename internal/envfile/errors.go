package envfile

import "errors"

// ErrFileRead is returned when the environment file cannot be read.
var ErrFileRead = errors.New("environment file cannot be read")
