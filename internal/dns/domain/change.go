package domain

import "fmt"

// ChangeKind is the kind of a planned change.
type ChangeKind int

const (
	ChangeCreate ChangeKind = iota + 1
	ChangeUpdate
	ChangeDelete
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeCreate:
		return "create"
	case ChangeUpdate:
		return "update"
	case ChangeDelete:
		return "delete"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// Change is one planned modification of a zone. Create carries New, Delete
// carries Existing and Update carries both.
type Change struct {
	Kind     ChangeKind
	Existing *Record
	New      *Record
}

// NewCreate returns a change that creates r.
func NewCreate(r *Record) Change { return Change{Kind: ChangeCreate, New: r} }

// NewDelete returns a change that deletes r.
func NewDelete(r *Record) Change { return Change{Kind: ChangeDelete, Existing: r} }

// NewUpdate returns a change that replaces existing with r.
func NewUpdate(existing, r *Record) Change {
	return Change{Kind: ChangeUpdate, Existing: existing, New: r}
}

// Record returns the record the change is about: New when set, else Existing.
func (c Change) Record() *Record {
	if c.New != nil {
		return c.New
	}
	return c.Existing
}

func (c Change) String() string {
	switch c.Kind {
	case ChangeUpdate:
		return fmt.Sprintf("update %s -> %s", c.Existing, c.New)
	default:
		return fmt.Sprintf("%s %s", c.Kind, c.Record())
	}
}

// Plan is the ordered set of changes that brings a zone to its desired state.
type Plan struct {
	Desired *Zone
	Changes []Change
}
