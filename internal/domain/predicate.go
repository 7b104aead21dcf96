package domain

import (
	"slices"
	"strings"
	"time"
)

// Field names an Event attribute a Condition can constrain.
type Field string

const (
	FieldState     Field = "state"
	FieldCategory  Field = "category"
	FieldInitiator Field = "initiator"
	FieldPaid      Field = "paid"
	FieldEventDate Field = "event_date"
	// FieldText matches annotation or description.
	FieldText Field = "text"
)

// Op is a comparison operator.
type Op int

const (
	OpEq Op = iota
	OpIn
	OpGTE
	OpLTE
	OpContainsFold
)

// Condition is a single clause of a Predicate. Value types by field:
// FieldState []EventState, FieldCategory and FieldInitiator []int64,
// FieldPaid bool, FieldEventDate time.Time, FieldText string.
type Condition struct {
	Field Field
	Op    Op
	Value any
}

// StateIn constrains the event state to one of states.
func StateIn(states ...EventState) Condition {
	return Condition{Field: FieldState, Op: OpIn, Value: states}
}

// CategoryIn constrains the category to one of ids.
func CategoryIn(ids ...int64) Condition {
	return Condition{Field: FieldCategory, Op: OpIn, Value: ids}
}

// InitiatorIn constrains the initiator to one of ids.
func InitiatorIn(ids ...int64) Condition {
	return Condition{Field: FieldInitiator, Op: OpIn, Value: ids}
}

// PaidIs constrains the paid flag.
func PaidIs(paid bool) Condition {
	return Condition{Field: FieldPaid, Op: OpEq, Value: paid}
}

// EventDateFrom constrains the event date to t or later.
func EventDateFrom(t time.Time) Condition {
	return Condition{Field: FieldEventDate, Op: OpGTE, Value: t}
}

// EventDateTo constrains the event date to t or earlier.
func EventDateTo(t time.Time) Condition {
	return Condition{Field: FieldEventDate, Op: OpLTE, Value: t}
}

// TextContains matches events whose annotation or description contains text, ignoring case.
func TextContains(text string) Condition {
	return Condition{Field: FieldText, Op: OpContainsFold, Value: text}
}

// Predicate is a conjunction of conditions. The zero value matches every event.
type Predicate struct {
	conds []Condition
}

// And returns a predicate with cs appended. p is not modified.
func (p Predicate) And(cs ...Condition) Predicate {
	out := make([]Condition, 0, len(p.conds)+len(cs))
	out = append(out, p.conds...)
	out = append(out, cs...)
	return Predicate{conds: out}
}

// Conditions returns the clauses of p in the order they were added.
func (p Predicate) Conditions() []Condition {
	return slices.Clone(p.conds)
}

// IsEmpty reports whether p has no clauses.
func (p Predicate) IsEmpty() bool {
	return len(p.conds) == 0
}

// Match evaluates p against e in memory.
func (p Predicate) Match(e *Event) bool {
	for _, c := range p.conds {
		if !c.Match(e) {
			return false
		}
	}
	return true
}

// Match evaluates a single condition against e. Unknown combinations never match.
func (c Condition) Match(e *Event) bool {
	switch c.Field {
	case FieldState:
		states, _ := c.Value.([]EventState)
		return slices.Contains(states, e.State)
	case FieldCategory:
		ids, _ := c.Value.([]int64)
		return slices.Contains(ids, e.CategoryID)
	case FieldInitiator:
		ids, _ := c.Value.([]int64)
		return slices.Contains(ids, e.InitiatorID)
	case FieldPaid:
		paid, ok := c.Value.(bool)
		return ok && e.Paid == paid
	case FieldEventDate:
		t, ok := c.Value.(time.Time)
		if !ok {
			return false
		}
		switch c.Op {
		case OpGTE:
			return !e.EventDate.Before(t)
		case OpLTE:
			return !e.EventDate.After(t)
		}
	case FieldText:
		text, ok := c.Value.(string)
		if !ok {
			return false
		}
		text = strings.ToLower(text)
		return strings.Contains(strings.ToLower(e.Annotation), text) ||
			strings.Contains(strings.ToLower(e.Description), text)
	}
	return false
}

// EventQuery is a predicate plus the page window it is evaluated over.
type EventQuery struct {
	Predicate Predicate
	Page      PageRequest
}
