package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"eventhub/internal/domain"
)

type commentModerationService struct {
	wordRepo       domain.ForbiddenWordRepository
	contextTimeout time.Duration
}

// NewCommentModerationService returns the forbidden-word list service.
func NewCommentModerationService(wordRepo domain.ForbiddenWordRepository, timeout time.Duration) domain.CommentModerationService {
	return &commentModerationService{wordRepo: wordRepo, contextTimeout: timeout}
}

func (s *commentModerationService) ForbiddenWords(ctx context.Context, eventID int64) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	words, err := s.wordRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list forbidden words: %w", err)
	}
	slices.Sort(words)
	return words, nil
}

func (s *commentModerationService) MergeForbiddenWords(ctx context.Context, eventID int64, words []string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	normalized := normalizeWords(words)
	if len(normalized) > 0 {
		if err := s.wordRepo.Merge(ctx, eventID, normalized); err != nil {
			return nil, fmt.Errorf("merge forbidden words: %w", err)
		}
	}
	merged, err := s.wordRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list forbidden words: %w", err)
	}
	slices.Sort(merged)
	return merged, nil
}

func (s *commentModerationService) ScreenComment(ctx context.Context, eventID int64, text string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	words, err := s.wordRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list forbidden words: %w", err)
	}
	if len(words) == 0 {
		return nil, nil
	}
	forbidden := make(map[string]struct{}, len(words))
	for _, w := range words {
		forbidden[w] = struct{}{}
	}
	var found []string
	for _, token := range normalizeWords(strings.FieldsFunc(text, isWordSeparator)) {
		if _, ok := forbidden[token]; ok {
			found = append(found, token)
		}
	}
	slices.Sort(found)
	return found, nil
}

// normalizeWords lower-cases, trims and deduplicates words, dropping empty ones.
func normalizeWords(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func isWordSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
