package volume

import "errors"

var ErrVolumeNameRequired = errors.New("volume name is required")
var ErrVolumeRootRequired = errors.New("volume root is required")
var ErrDuplicateVolume = errors.New("duplicate volume name")
