package publish

import "errors"

// Sentinel domain errors classifying pipeline failures by step. They are
// always wrapped with contextual information at the call site.
var (
	ErrBind     = errors.New("predmarkets: repository bind error")
	ErrGenerate = errors.New("predmarkets: generator error")
	ErrStage    = errors.New("predmarkets: stage error")
	ErrCommit   = errors.New("predmarkets: commit error")
	ErrPush     = errors.New("predmarkets: push error")
)
