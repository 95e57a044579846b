// Package bolt provides a file-backed store using bbolt. Entries survive
// process restarts, which suits caches whose values are expensive to
// rebuild.
//
// Each record is stored as an 8-byte big-endian expiry (unix nanoseconds,
// zero means no expiry) followed by the raw value. Expired records are
// skipped on read and removed by a background sweep.
package bolt

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/areusjs/distribucache/store"
)

const (
	defaultBucket = "distribucache"
	defaultSweep  = time.Minute
)

type Store struct {
	db     *bolt.DB
	bucket []byte

	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

var _ store.Store = (*Store)(nil)

type Config struct {
	// Path is the bolt database file. Created if absent.
	Path string
	// Bucket holds the cache records. Defaults to "distribucache".
	Bucket string
	// SweepInterval controls how often expired records are purged.
	// Defaults to one minute. Negative disables the sweeper.
	SweepInterval time.Duration
}

func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("bolt store: path is required")
	}
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = defaultBucket
	}
	sweep := cfg.SweepInterval
	if sweep == 0 {
		sweep = defaultSweep
	}

	db, err := bolt.Open(cfg.Path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{
		db:     db,
		bucket: []byte(bucket),
		stopCh: make(chan struct{}),
	}
	if sweep > 0 {
		s.wg.Add(1)
		go s.sweepLoop(sweep)
	}
	return s, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get([]byte(key))
		if raw == nil || len(raw) < 8 {
			return nil
		}
		exp := int64(binary.BigEndian.Uint64(raw[:8]))
		if exp > 0 && time.Now().UnixNano() >= exp {
			return nil // expired; sweeper removes it
		}
		// bolt slices are only valid inside the transaction
		out = make([]byte, len(raw)-8)
		copy(out, raw[8:])
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if out == nil {
		return nil, false, nil
	}
	return out, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).UnixNano()
	}
	rec := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(rec[:8], uint64(exp))
	copy(rec[8:], value)

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), rec)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Del(_ context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

func (s *Store) Close(_ context.Context) error {
	s.closeOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

func (s *Store) sweepLoop(interval time.Duration) {
	defer s.wg.Done()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.sweep(time.Now().UnixNano())
		case <-s.stopCh:
			return
		}
	}
}

func (s *Store) sweep(now int64) {
	// best-effort; failures are retried on the next tick
	_ = s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if len(v) < 8 {
				if err := c.Delete(); err != nil {
					return err
				}
				continue
			}
			exp := int64(binary.BigEndian.Uint64(v[:8]))
			if exp > 0 && exp <= now {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
