package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

type subscriber struct {
	id         int
	collection string
	order      *OrderBy
	onSnapshot func([]Document)
}

// Memory is an in-process Store. Snapshots are delivered synchronously on the
// writing goroutine, after the write is applied. Several store instances
// sharing one Memory behave like clients of the same remote project.
type Memory struct {
	mu     sync.Mutex
	docs   map[string]map[string]json.RawMessage
	subs   map[int]*subscriber
	nextID int
	fail   map[string]error
	writes map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		docs:   make(map[string]map[string]json.RawMessage),
		subs:   make(map[int]*subscriber),
		fail:   make(map[string]error),
		writes: make(map[string]int),
	}
}

// FailWrites makes every write to collection return err. A nil err clears it.
func (m *Memory) FailWrites(collection string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, collection)
		return
	}
	m.fail[collection] = err
}

// Writes counts successful writes to collection.
func (m *Memory) Writes(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[collection]
}

func (m *Memory) Subscribers(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.subs {
		if s.collection == collection {
			n++
		}
	}
	return n
}

func (m *Memory) Subscribe(_ context.Context, collection string, order *OrderBy, onSnapshot func([]Document), _ func(error)) (Unsubscribe, error) {
	m.mu.Lock()
	m.nextID++
	sub := &subscriber{id: m.nextID, collection: collection, order: order, onSnapshot: onSnapshot}
	m.subs[sub.id] = sub
	docs := m.snapshotLocked(collection, order)
	m.mu.Unlock()

	onSnapshot(docs)

	return func() {
		m.mu.Lock()
		delete(m.subs, sub.id)
		m.mu.Unlock()
	}, nil
}

func (m *Memory) Set(_ context.Context, collection, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	return m.write(collection, func(coll map[string]json.RawMessage) error {
		coll[id] = data
		return nil
	})
}

func (m *Memory) Update(_ context.Context, collection, id string, fields map[string]any) error {
	return m.write(collection, func(coll map[string]json.RawMessage) error {
		raw, ok := coll[id]
		if !ok {
			return ErrNotFound
		}
		doc := make(map[string]any)
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		for k, v := range fields {
			doc[k] = v
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
		}
		coll[id] = data
		return nil
	})
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	return m.write(collection, func(coll map[string]json.RawMessage) error {
		delete(coll, id)
		return nil
	})
}

func (m *Memory) write(collection string, apply func(map[string]json.RawMessage) error) error {
	m.mu.Lock()
	if err := m.fail[collection]; err != nil {
		m.mu.Unlock()
		return err
	}
	coll, ok := m.docs[collection]
	if !ok {
		coll = make(map[string]json.RawMessage)
		m.docs[collection] = coll
	}
	if err := apply(coll); err != nil {
		m.mu.Unlock()
		return err
	}
	m.writes[collection]++

	type delivery struct {
		fn   func([]Document)
		docs []Document
	}
	var out []delivery
	ids := make([]int, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		s := m.subs[id]
		if s.collection == collection {
			out = append(out, delivery{fn: s.onSnapshot, docs: m.snapshotLocked(collection, s.order)})
		}
	}
	m.mu.Unlock()

	for _, d := range out {
		d.fn(d.docs)
	}
	return nil
}

func (m *Memory) snapshotLocked(collection string, order *OrderBy) []Document {
	coll := m.docs[collection]
	docs := make([]Document, 0, len(coll))
	for id, data := range coll {
		docs = append(docs, Document{ID: id, Data: data})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	if order == nil {
		return docs
	}

	keys := make(map[string]string, len(docs))
	for _, d := range docs {
		var fields map[string]any
		_ = json.Unmarshal(d.Data, &fields)
		keys[d.ID] = fmt.Sprint(fields[order.Field])
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if order.Desc {
			return keys[docs[i].ID] > keys[docs[j].ID]
		}
		return keys[docs[i].ID] < keys[docs[j].ID]
	})
	return docs
}
