// Package docstore is the remote document store: named collections of JSON
// documents with a live change feed that re-delivers the full collection on
// every change.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	Products = "products"
	Orders   = "orders"
)

var ErrNotFound = errors.New("document not found")

type Document struct {
	ID   string
	Data json.RawMessage
}

type OrderBy struct {
	Field string
	Desc  bool
}

// Unsubscribe releases a change-feed subscription. It must be called on teardown.
type Unsubscribe func()

type Store interface {
	// Subscribe delivers the full, optionally ordered, collection to onSnapshot
	// now and after every change. onError is called once if the feed fails;
	// no further snapshots follow.
	Subscribe(ctx context.Context, collection string, order *OrderBy, onSnapshot func([]Document), onError func(error)) (Unsubscribe, error)
	// Set upserts the whole document.
	Set(ctx context.Context, collection, id string, doc any) error
	// Update patches top-level fields of an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
}

// Decode unmarshals every document into a T, forcing the id field from the document key.
func Decode[T any](docs []Document, setID func(*T, string)) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := json.Unmarshal(d.Data, &v); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", d.ID, err)
		}
		setID(&v, d.ID)
		out = append(out, v)
	}
	return out, nil
}

// Fields converts a JSON-tagged value into top-level document fields.
func Fields(doc any) (map[string]any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	m := make(map[string]any)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("document is not an object: %w", err)
	}
	return m, nil
}
