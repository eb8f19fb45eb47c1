package mongostore

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrCollectionNotAllowed = errors.New("collection is not in the allowlist")
	ErrWriteStage           = errors.New("write stages are not allowed")
	ErrDuplicateKey         = errors.New("duplicate key in pipeline document")
)

// Allowlist is the fixed set of collections the query generator may see and touch.
type Allowlist struct {
	names []string
	set   map[string]struct{}
}

func NewAllowlist(names []string) *Allowlist {
	a := &Allowlist{set: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := a.set[n]; dup {
			continue
		}
		a.set[n] = struct{}{}
		a.names = append(a.names, n)
	}
	return a
}

// Names returns the collections in configured order.
func (a *Allowlist) Names() []string {
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

func (a *Allowlist) Allows(name string) bool {
	_, ok := a.set[name]
	return ok
}

// Check rejects a query that reads outside the allowlist, including through $lookup,
// $graphLookup and $unionWith, or that writes through $out or $merge.
func (a *Allowlist) Check(q *Query) error {
	if !a.Allows(q.Collection) {
		return fmt.Errorf("%w: %s", ErrCollectionNotAllowed, q.Collection)
	}
	for _, stage := range q.Pipeline {
		if err := a.walk(stage); err != nil {
			return err
		}
	}
	return nil
}

// Referenced lists every collection a query names, the source collection first.
func Referenced(q *Query) []string {
	refs := []string{q.Collection}
	for _, stage := range q.Pipeline {
		collectRefs(stage, &refs)
	}
	return refs
}

func (a *Allowlist) walk(v interface{}) error {
	var refs []string
	if err := checkDuplicateKeys(v); err != nil {
		return err
	}
	if err := checkWrites(v); err != nil {
		return err
	}
	collectRefs(v, &refs)
	for _, r := range refs {
		if !a.Allows(r) {
			return fmt.Errorf("%w: %s", ErrCollectionNotAllowed, r)
		}
	}
	return nil
}

func checkWrites(v interface{}) error {
	switch t := v.(type) {
	case bson.D:
		for _, e := range t {
			if e.Key == "$out" || e.Key == "$merge" {
				return fmt.Errorf("%w: %s", ErrWriteStage, e.Key)
			}
			if err := checkWrites(e.Value); err != nil {
				return err
			}
		}
	case bson.A:
		for _, item := range t {
			if err := checkWrites(item); err != nil {
				return err
			}
		}
	case []bson.D:
		for _, item := range t {
			if err := checkWrites(item); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkDuplicateKeys rejects documents that repeat a key. The server keeps the last
// occurrence, so a repeated "from" could hide the real lookup target.
func checkDuplicateKeys(v interface{}) error {
	switch t := v.(type) {
	case bson.D:
		seen := make(map[string]struct{}, len(t))
		for _, e := range t {
			if _, dup := seen[e.Key]; dup {
				return fmt.Errorf("%w: %s", ErrDuplicateKey, e.Key)
			}
			seen[e.Key] = struct{}{}
			if err := checkDuplicateKeys(e.Value); err != nil {
				return err
			}
		}
	case bson.A:
		for _, item := range t {
			if err := checkDuplicateKeys(item); err != nil {
				return err
			}
		}
	case []bson.D:
		for _, item := range t {
			if err := checkDuplicateKeys(item); err != nil {
				return err
			}
		}
	}
	return nil
}

func collectRefs(v interface{}, refs *[]string) {
	switch t := v.(type) {
	case bson.D:
		for _, e := range t {
			switch e.Key {
			case "$lookup", "$graphLookup":
				if spec, ok := e.Value.(bson.D); ok {
					*refs = append(*refs, lookupRefs(spec, "from")...)
				}
			case "$unionWith":
				switch spec := e.Value.(type) {
				case string:
					*refs = append(*refs, spec)
				case bson.D:
					*refs = append(*refs, lookupRefs(spec, "coll")...)
				default:
					*refs = append(*refs, fmt.Sprint(spec))
				}
			}
			collectRefs(e.Value, refs)
		}
	case bson.A:
		for _, item := range t {
			collectRefs(item, refs)
		}
	case []bson.D:
		for _, item := range t {
			collectRefs(item, refs)
		}
	}
}

// lookupRefs returns every value stored under key. Non-string targets such as
// {db, coll} documents are rendered so they never match an allowlisted name.
func lookupRefs(d bson.D, key string) []string {
	var out []string
	for _, e := range d {
		if e.Key != key {
			continue
		}
		if s, ok := e.Value.(string); ok {
			out = append(out, s)
		} else {
			out = append(out, fmt.Sprint(e.Value))
		}
	}
	return out
}
