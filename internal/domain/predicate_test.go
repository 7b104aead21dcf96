package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicate_Match(t *testing.T) {
	date := time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)
	ev := &Event{
		ID:          1,
		Annotation:  "Open air Jazz evening",
		Description: "Bring a blanket",
		CategoryID:  3,
		EventDate:   date,
		Paid:        true,
		InitiatorID: 7,
		State:       StatePublished,
	}

	tests := []struct {
		name string
		p    Predicate
		want bool
	}{
		{"empty predicate matches everything", Predicate{}, true},
		{"state in", Predicate{}.And(StateIn(StatePending, StatePublished)), true},
		{"state not in", Predicate{}.And(StateIn(StateCanceled)), false},
		{"category in", Predicate{}.And(CategoryIn(1, 3)), true},
		{"category not in", Predicate{}.And(CategoryIn(2)), false},
		{"initiator in", Predicate{}.And(InitiatorIn(7)), true},
		{"paid", Predicate{}.And(PaidIs(true)), true},
		{"free", Predicate{}.And(PaidIs(false)), false},
		{"date lower bound inclusive", Predicate{}.And(EventDateFrom(date)), true},
		{"date lower bound after", Predicate{}.And(EventDateFrom(date.Add(time.Second))), false},
		{"date upper bound inclusive", Predicate{}.And(EventDateTo(date)), true},
		{"date upper bound before", Predicate{}.And(EventDateTo(date.Add(-time.Second))), false},
		{"text in annotation ignores case", Predicate{}.And(TextContains("jazz")), true},
		{"text in description", Predicate{}.And(TextContains("BLANKET")), true},
		{"text missing", Predicate{}.And(TextContains("rock")), false},
		{"conjunction all true", Predicate{}.And(StateIn(StatePublished), CategoryIn(3), PaidIs(true)), true},
		{"conjunction one false", Predicate{}.And(StateIn(StatePublished), CategoryIn(4)), false},
		{"empty category set matches nothing", Predicate{}.And(CategoryIn()), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Match(ev))
		})
	}
}

func TestPredicate_AndDoesNotMutateReceiver(t *testing.T) {
	base := Predicate{}.And(StateIn(StatePublished))
	a := base.And(PaidIs(true))
	b := base.And(PaidIs(false))

	require.Len(t, base.Conditions(), 1)
	require.Len(t, a.Conditions(), 2)
	require.Len(t, b.Conditions(), 2)
	assert.Equal(t, true, a.Conditions()[1].Value)
	assert.Equal(t, false, b.Conditions()[1].Value)
	assert.True(t, Predicate{}.IsEmpty())
}

func TestPageRequest_Validate(t *testing.T) {
	require.NoError(t, PageRequest{From: 0, Size: 10}.Validate())
	require.ErrorIs(t, PageRequest{From: -1, Size: 10}.Validate(), ErrInvalidInput)
	require.ErrorIs(t, PageRequest{From: 0, Size: 0}.Validate(), ErrInvalidInput)
}

func TestEventPatch_ApplyTo(t *testing.T) {
	ev := &Event{Title: "old title", Annotation: "old annotation", ParticipantLimit: 10, Paid: true}
	title := "new title"
	limit := 0
	patch := EventPatch{Title: &title, ParticipantLimit: &limit}

	patch.ApplyTo(ev)

	assert.Equal(t, "new title", ev.Title)
	assert.Equal(t, 0, ev.ParticipantLimit)
	assert.Equal(t, "old annotation", ev.Annotation)
	assert.True(t, ev.Paid)
}

func TestErrorKinds(t *testing.T) {
	err := NotFoundf("event with id=%d was not found", 5)
	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrConflict)
	assert.Equal(t, "event with id=5 was not found", err.Error())

	_, err = ParseEventState("DRAFT")
	require.ErrorIs(t, err, ErrInvalidInput)
	st, err := ParseEventState("PUBLISHED")
	require.NoError(t, err)
	assert.Equal(t, StatePublished, st)
}
