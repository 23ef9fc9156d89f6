package places

import "errors"

var ErrNoCandidates = errors.New("no places found")
