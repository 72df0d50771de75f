package atmo

import "github.com/pkg/errors"

var errNegativePressure = errors.New("atmo: negative pressure")
