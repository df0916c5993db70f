// Package memory provides the in-memory instance store. It is the
// authoritative working set for a run; the sqlite and postgres packages wrap
// it with durable snapshot mirrors.
package memory

import (
	"fmt"
	"sort"
	"sync"

	"orthoinfer/pkg/domain"
)

// Store implements domain.Store with map-backed indexes.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*domain.Instance
	// byClass tracks concrete classes only; subclass queries walk the
	// class hierarchy at read time.
	byClass map[domain.Class]map[int64]bool
	// byKey indexes structural identity keys, keys remembers each
	// instance's currently indexed key.
	byKey map[string]map[int64]bool
	keys  map[int64]string
	// inRefs maps target ID -> attribute -> referrer IDs.
	inRefs map[int64]map[string]map[int64]bool
	// outRefs remembers each instance's indexed outgoing references so a
	// re-index can retract them.
	outRefs map[int64][]refEdge
}

type refEdge struct {
	attr   string
	target int64
}

var _ domain.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		byID:    map[int64]*domain.Instance{},
		byClass: map[domain.Class]map[int64]bool{},
		byKey:   map[string]map[int64]bool{},
		keys:    map[int64]string{},
		inRefs:  map[int64]map[string]map[int64]bool{},
		outRefs: map[int64][]refEdge{},
	}
}

// Fetch returns the instance with the given DB ID.
func (s *Store) Fetch(id int64) (*domain.Instance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	in, ok := s.byID[id]
	return in, ok
}

// ListByClass returns instances of the class or any subclass in ascending
// DB ID order.
func (s *Store) ListByClass(class domain.Class) []*domain.Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []int64
	for c, set := range s.byClass {
		if !domain.IsA(c, class) {
			continue
		}
		for id := range set {
			ids = append(ids, id)
		}
	}
	return s.resolveSorted(ids)
}

// FetchByAttribute returns instances of the class holding the string value
// for the attribute.
func (s *Store) FetchByAttribute(class domain.Class, attr, value string) []*domain.Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []int64
	for c, set := range s.byClass {
		if !domain.IsA(c, class) {
			continue
		}
		for id := range set {
			for _, v := range s.byID[id].List(attr) {
				if str, ok := v.(string); ok && str == value {
					ids = append(ids, id)
					break
				}
			}
		}
	}
	return s.resolveSorted(ids)
}

// StructurallyIdentical returns committed instances sharing the candidate's
// structural key.
func (s *Store) StructurallyIdentical(in *domain.Instance) []*domain.Instance {
	key := domain.StructuralKey(in)
	if key == "" {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []int64
	for id := range s.byKey[key] {
		if id != in.ID {
			ids = append(ids, id)
		}
	}
	return s.resolveSorted(ids)
}

// Store commits the instance, assigning the next DB ID when it has none.
func (s *Store) Store(in *domain.Instance) *domain.Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in.ID == 0 {
		s.nextID++
		in.ID = s.nextID
	} else if in.ID > s.nextID {
		s.nextID = in.ID
	}
	s.byID[in.ID] = in
	if s.byClass[in.Class] == nil {
		s.byClass[in.Class] = map[int64]bool{}
	}
	s.byClass[in.Class][in.ID] = true
	s.reindex(in)
	return in
}

// Update re-indexes a committed instance after in-place attribute mutation.
func (s *Store) Update(in *domain.Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[in.ID]; !ok {
		return
	}
	s.reindex(in)
}

// Referrers returns committed instances referencing id through attr.
func (s *Store) Referrers(id int64, attr string) []*domain.Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []int64
	for rid := range s.inRefs[id][attr] {
		ids = append(ids, rid)
	}
	return s.resolveSorted(ids)
}

// Len returns the number of committed instances.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *Store) resolveSorted(ids []int64) []*domain.Instance {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*domain.Instance, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.byID[id])
	}
	return out
}

// reindex refreshes structural-key and reference indexes for in. Callers
// hold the write lock.
func (s *Store) reindex(in *domain.Instance) {
	if old, ok := s.keys[in.ID]; ok {
		delete(s.byKey[old], in.ID)
	}
	if key := domain.StructuralKey(in); key != "" {
		if s.byKey[key] == nil {
			s.byKey[key] = map[int64]bool{}
		}
		s.byKey[key][in.ID] = true
		s.keys[in.ID] = key
	} else {
		delete(s.keys, in.ID)
	}

	for _, edge := range s.outRefs[in.ID] {
		delete(s.inRefs[edge.target][edge.attr], in.ID)
	}
	var edges []refEdge
	for _, attr := range in.AttrNames() {
		for _, v := range in.List(attr) {
			ref, ok := v.(*domain.Instance)
			if !ok {
				continue
			}
			if s.inRefs[ref.ID] == nil {
				s.inRefs[ref.ID] = map[string]map[int64]bool{}
			}
			if s.inRefs[ref.ID][attr] == nil {
				s.inRefs[ref.ID][attr] = map[int64]bool{}
			}
			s.inRefs[ref.ID][attr][in.ID] = true
			edges = append(edges, refEdge{attr: attr, target: ref.ID})
		}
	}
	s.outRefs[in.ID] = edges
}

// Value is the snapshot form of a single attribute value.
type Value struct {
	Str  *string `json:"s,omitempty"`
	Int  *int64  `json:"i,omitempty"`
	Bool *bool   `json:"b,omitempty"`
	Ref  *int64  `json:"r,omitempty"`
}

// Record is the snapshot form of an instance. References are flattened to DB
// IDs; the instance graph is cyclic and cannot be serialized in place.
type Record struct {
	ID          int64              `json:"id"`
	Class       string             `json:"class"`
	DisplayName string             `json:"display_name,omitempty"`
	Attrs       map[string][]Value `json:"attrs,omitempty"`
}

// Snapshot renders the store as per-class record buckets with records in
// ascending DB ID order.
func (s *Store) Snapshot() map[string][]Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	buckets := map[string][]Record{}
	for class, set := range s.byClass {
		var ids []int64
		for id := range set {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		recs := make([]Record, 0, len(ids))
		for _, id := range ids {
			recs = append(recs, flatten(s.byID[id]))
		}
		buckets[string(class)] = recs
	}
	return buckets
}

// Restore replaces the store's contents with the given snapshot.
func (s *Store) Restore(buckets map[string][]Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = 0
	s.byID = map[int64]*domain.Instance{}
	s.byClass = map[domain.Class]map[int64]bool{}
	s.byKey = map[string]map[int64]bool{}
	s.keys = map[int64]string{}
	s.inRefs = map[int64]map[string]map[int64]bool{}
	s.outRefs = map[int64][]refEdge{}

	// First pass creates every instance so references can resolve.
	for class, recs := range buckets {
		for _, rec := range recs {
			if rec.ID <= 0 {
				return fmt.Errorf("restore: record in bucket %s without id", class)
			}
			in := domain.New(domain.Class(rec.Class))
			in.ID = rec.ID
			in.DisplayName = rec.DisplayName
			s.byID[rec.ID] = in
			if s.byClass[in.Class] == nil {
				s.byClass[in.Class] = map[int64]bool{}
			}
			s.byClass[in.Class][rec.ID] = true
			if rec.ID > s.nextID {
				s.nextID = rec.ID
			}
		}
	}
	for _, recs := range buckets {
		for _, rec := range recs {
			in := s.byID[rec.ID]
			for attr, vals := range rec.Attrs {
				for _, v := range vals {
					switch {
					case v.Ref != nil:
						target, ok := s.byID[*v.Ref]
						if !ok {
							return fmt.Errorf("restore: instance %d references unknown id %d", rec.ID, *v.Ref)
						}
						in.Add(attr, target)
					case v.Str != nil:
						in.Add(attr, *v.Str)
					case v.Int != nil:
						in.Add(attr, *v.Int)
					case v.Bool != nil:
						in.Add(attr, *v.Bool)
					}
				}
			}
		}
	}
	for _, in := range s.byID {
		s.reindex(in)
	}
	return nil
}

func flatten(in *domain.Instance) Record {
	rec := Record{ID: in.ID, Class: string(in.Class), DisplayName: in.DisplayName}
	names := in.AttrNames()
	if len(names) == 0 {
		return rec
	}
	sort.Strings(names)
	rec.Attrs = map[string][]Value{}
	for _, attr := range names {
		vals := in.List(attr)
		out := make([]Value, 0, len(vals))
		for _, v := range vals {
			switch t := v.(type) {
			case *domain.Instance:
				id := t.ID
				out = append(out, Value{Ref: &id})
			case string:
				str := t
				out = append(out, Value{Str: &str})
			case int64:
				n := t
				out = append(out, Value{Int: &n})
			case int:
				n := int64(t)
				out = append(out, Value{Int: &n})
			case bool:
				b := t
				out = append(out, Value{Bool: &b})
			}
		}
		rec.Attrs[attr] = out
	}
	return rec
}
