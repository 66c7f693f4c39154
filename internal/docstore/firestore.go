package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type firestoreStore struct{ client *firestore.Client }

func NewFirestore(client *firestore.Client) Store {
	return &firestoreStore{client: client}
}

func (s *firestoreStore) Subscribe(ctx context.Context, collection string, order *OrderBy, onSnapshot func([]Document), onError func(error)) (Unsubscribe, error) {
	q := s.client.Collection(collection).Query
	if order != nil {
		dir := firestore.Asc
		if order.Desc {
			dir = firestore.Desc
		}
		q = q.OrderBy(order.Field, dir)
	}

	ctx, cancel := context.WithCancel(ctx)
	it := q.Snapshots(ctx)

	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if ctx.Err() == nil && status.Code(err) != codes.Canceled {
					onError(fmt.Errorf("watch %s: %w", collection, err))
				}
				return
			}
			snaps, err := snap.Documents.GetAll()
			if err != nil {
				onError(fmt.Errorf("read %s snapshot: %w", collection, err))
				return
			}

			docs := make([]Document, 0, len(snaps))
			for _, ds := range snaps {
				data, err := json.Marshal(ds.Data())
				if err != nil {
					onError(fmt.Errorf("encode %s/%s: %w", collection, ds.Ref.ID, err))
					return
				}
				docs = append(docs, Document{ID: ds.Ref.ID, Data: data})
			}
			onSnapshot(docs)
		}
	}()

	return Unsubscribe(cancel), nil
}

func (s *firestoreStore) Set(ctx context.Context, collection, id string, doc any) error {
	m, err := Fields(doc)
	if err != nil {
		return err
	}
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, m); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *firestoreStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	normalized, err := Fields(fields)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(normalized))
	for k := range normalized {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	updates := make([]firestore.Update, 0, len(keys))
	for _, k := range keys {
		updates = append(updates, firestore.Update{Path: k, Value: normalized[k]})
	}

	if _, err := s.client.Collection(collection).Doc(id).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *firestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}
