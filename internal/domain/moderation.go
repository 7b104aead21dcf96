package domain

import "context"

// ForbiddenWordRepository stores the per-event word list used to pre-moderate comments.
type ForbiddenWordRepository interface {
	ListByEventID(ctx context.Context, eventID int64) ([]string, error)
	// Merge adds words to the event's list. Words already stored are kept.
	Merge(ctx context.Context, eventID int64, words []string) error
}

// CommentModerationService manages forbidden words and screens comment text against them.
type CommentModerationService interface {
	ForbiddenWords(ctx context.Context, eventID int64) ([]string, error)
	// MergeForbiddenWords union-merges words into the list and returns the resulting list.
	MergeForbiddenWords(ctx context.Context, eventID int64, words []string) ([]string, error)
	// ScreenComment returns the forbidden words found in text, or nil when it is clean.
	ScreenComment(ctx context.Context, eventID int64, text string) ([]string, error)
}
