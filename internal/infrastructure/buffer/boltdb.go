package buffer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const defaultBatch = 50

// Store keeps task, subtask and profile writes on disk while Postgres is
// unreachable. Keys sort by priority, then enqueue time, so a subtask create
// always drains after the create of the task it belongs to.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open creates the file and its parent directory when missing.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "buffer"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create buffer dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open buffer %s: %w", path, err)
	}

	store := &Store{db: db, bucket: []byte(bucket)}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(store.bucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) update(fn func(b *bolt.Bucket) error) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error { return fn(tx.Bucket(s.bucket)) })
}

func (s *Store) view(fn func(b *bolt.Bucket) error) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.View(func(tx *bolt.Tx) error { return fn(tx.Bucket(s.bucket)) })
}

// each walks the bucket in key order. Undecodable values are skipped.
func each(b *bolt.Bucket, fn func(key []byte, item Item) (bool, error)) error {
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		var item Item
		if err := json.Unmarshal(v, &item); err != nil {
			continue
		}
		more, err := fn(k, item)
		if err != nil || !more {
			return err
		}
	}
	return nil
}

func (s *Store) Enqueue(item Item) error {
	if err := item.normalize(); err != nil {
		return err
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return s.update(func(b *bolt.Bucket) error {
		return b.Put(itemKey(item), payload)
	})
}

// GetBatch returns up to limit items in drain order without removing them.
func (s *Store) GetBatch(limit int) ([]Item, error) {
	if limit <= 0 {
		limit = defaultBatch
	}
	var items []Item
	err := s.view(func(b *bolt.Bucket) error {
		return each(b, func(k []byte, item Item) (bool, error) {
			item.bucketKey = append([]byte(nil), k...)
			items = append(items, item)
			return len(items) < limit, nil
		})
	})
	return items, err
}

// Remove deletes item by its key, or by id when it was not read from the store.
func (s *Store) Remove(item Item) error {
	return s.update(func(b *bolt.Bucket) error {
		if len(item.bucketKey) > 0 {
			return b.Delete(item.bucketKey)
		}
		if item.ID == "" {
			return nil
		}
		var found []byte
		if err := each(b, func(k []byte, stored Item) (bool, error) {
			if stored.ID == item.ID {
				found = append([]byte(nil), k...)
				return false, nil
			}
			return true, nil
		}); err != nil {
			return err
		}
		if found == nil {
			return nil
		}
		return b.Delete(found)
	})
}

// Requeue moves item to the back of its priority class.
func (s *Store) Requeue(item Item) error {
	item.bucketKey = nil
	item.Timestamp = time.Now()
	return s.Enqueue(item)
}

func (s *Store) Size() (int, error) {
	var count int
	err := s.view(func(b *bolt.Bucket) error {
		count = b.Stats().KeyN
		return nil
	})
	return count, err
}

// Cleanup drops items enqueued before olderThan and reports how many went.
func (s *Store) Cleanup(olderThan time.Time) (int, error) {
	var stale [][]byte
	err := s.update(func(b *bolt.Bucket) error {
		if err := each(b, func(k []byte, item Item) (bool, error) {
			if item.Timestamp.Before(olderThan) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return true, nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(stale), nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func itemKey(item Item) []byte {
	return []byte(fmt.Sprintf("%d_%020d_%s", item.Priority, item.Timestamp.UnixNano(), item.ID))
}
