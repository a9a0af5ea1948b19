package executor

import "errors"

// ErrCommitFailed indicates the session transaction could not be committed.
var ErrCommitFailed = errors.New("commit failed")

// ErrCascadeBroken indicates deleting a Project left Chunk or AudioVariant rows behind.
var ErrCascadeBroken = errors.New("cascade delete did not remove child rows")
