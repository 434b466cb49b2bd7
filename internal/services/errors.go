package services

import (
	"errors"
	"fmt"
)

var (
	ErrFlaggedContentNotFound = errors.New("flagged content not found")
	ErrModelNotFlaggable      = errors.New("this model cannot be flagged")
	ErrContentOverFlagged     = errors.New("flag limit reached for this content")
	ErrInvalidComment         = errors.New("invalid comment")
	ErrCommentRequired        = fmt.Errorf("%w: a comment is required", ErrInvalidComment)
	ErrCommentNotAllowed      = fmt.Errorf("%w: comments are not allowed here", ErrInvalidComment)
)

// AlreadyFlaggedError reports that a user hit the per-user limit on a single
// content object. Count is how many flags they already placed on it.
type AlreadyFlaggedError struct {
	Count int64
}

func (e *AlreadyFlaggedError) Error() string {
	if e.Count == 1 {
		return "you already flagged this content"
	}
	return fmt.Sprintf("you already flagged this content %d times", e.Count)
}
