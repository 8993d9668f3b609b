package serviceerrors

import "errors"

var (
	ErrContextCanceled  = errors.New("context canceled")
	ErrDeadlineExceeded = errors.New("deadline exceeded")
	ErrCorruptedCart    = errors.New("cart contents are corrupted")
)
