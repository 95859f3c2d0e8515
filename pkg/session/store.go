// Package session persists timestamped input samples so a live run can be
// replayed deterministically through the engine later.
package session

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Sample is one observed input state at a point in time.
type Sample struct {
	PointerX       float32 `json:"px"`
	PointerY       float32 `json:"py"`
	ScrollProgress float32 `json:"sp"`
	ElapsedSeconds float32 `json:"t"`
}

// Store is a badger-backed log of samples keyed by elapsed milliseconds.
// Keys are big-endian so iteration yields samples in time order.
type Store struct {
	db *badger.DB
}

func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	// Decrease logging verbosity
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func sampleKey(elapsedMs uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, elapsedMs)
	return key
}

// Append stores a single sample.
func (s *Store) Append(elapsedMs uint64, smp Sample) error {
	val, err := json.Marshal(smp)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sampleKey(elapsedMs), val)
	})
}

// BatchAppend stores many samples in one write batch.
func (s *Store) BatchAppend(entries map[uint64]Sample) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for ms, smp := range entries {
		val, err := json.Marshal(smp)
		if err != nil {
			return err
		}
		if err := wb.Set(sampleKey(ms), val); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// ForEach visits every sample in time order.
func (s *Store) ForEach(fn func(elapsedMs uint64, smp Sample) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			if len(item.Key()) != 8 {
				continue
			}
			ms := binary.BigEndian.Uint64(item.Key())
			err := item.Value(func(v []byte) error {
				var smp Sample
				if err := json.Unmarshal(v, &smp); err != nil {
					return err
				}
				return fn(ms, smp)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Stats returns the sample count and the first/last timestamps.
func (s *Store) Stats() (count int, firstMs, lastMs uint64, err error) {
	err = s.ForEach(func(ms uint64, _ Sample) error {
		if count == 0 {
			firstMs = ms
		}
		lastMs = ms
		count++
		return nil
	})
	return count, firstMs, lastMs, err
}

// Recorder buffers observed samples and flushes them to a Store in batches
// so the per-frame path never blocks on disk.
type Recorder struct {
	store *Store

	mu      sync.Mutex
	pending map[uint64]Sample
}

func NewRecorder(store *Store) *Recorder {
	return &Recorder{
		store:   store,
		pending: make(map[uint64]Sample),
	}
}

// Observe buffers one sample. Samples landing in the same millisecond
// overwrite, matching the last-write-wins input model.
func (r *Recorder) Observe(elapsedMs float64, smp Sample) {
	if elapsedMs < 0 {
		return
	}
	r.mu.Lock()
	r.pending[uint64(elapsedMs)] = smp
	r.mu.Unlock()
}

// Run flushes the buffer every 500ms until ctx is cancelled, then performs
// a final flush.
func (r *Recorder) Run(ctx context.Context) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = r.Flush()
			return
		case <-ticker.C:
			_ = r.Flush()
		}
	}
}

// Flush writes buffered samples to the store.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	if len(r.pending) == 0 {
		r.mu.Unlock()
		return nil
	}
	batch := r.pending
	r.pending = make(map[uint64]Sample)
	r.mu.Unlock()
	return r.store.BatchAppend(batch)
}
