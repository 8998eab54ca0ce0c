package maintenance

import "errors"

var ErrInvalidPrune = errors.New("invalid prune expiry")
