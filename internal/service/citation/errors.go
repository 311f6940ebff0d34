package citation

import "errors"

// Sentinel errors for the citation service layer.
var (
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrBrandNotFound       = errors.New("brand record not found")
	ErrBatchNotFound       = errors.New("batch not found")
	ErrUnknownProvider     = errors.New("unknown provider slug")
	ErrProviderDisabled    = errors.New("provider is disabled")
	ErrNoAdapter           = errors.New("provider has no API adapter")
	ErrBatchNotCancellable = errors.New("batch is already in a terminal state")
)
