package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	digestBucket     = "payload_digests"
	expiryValueBytes = 8
)

// boltStore implements a Store backed by BoltDB. Values are an 8-byte
// big-endian expiry followed by the digest.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	recordTTL       time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(digestBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		recordTTL:       opts.RecordTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	store.lastCleanup.Store(time.Now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Changed compares digest against the unexpired record for queryID.
func (b *boltStore) Changed(queryID, digest string) (bool, error) {
	if b == nil || b.db == nil {
		return true, nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return false, err
	}

	changed := true
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(digestBucket))
		if bucket == nil {
			return fmt.Errorf("digest bucket missing")
		}

		stored, expiry, ok := decodeRecord(bucket.Get([]byte(queryID)))
		if ok && expiry.After(now) && stored == digest {
			changed = false
		}
		return nil
	})
	return changed, err
}

// Record stores digest for queryID with a fresh expiry.
func (b *boltStore) Record(queryID, digest string) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(digestBucket))
		if bucket == nil {
			return fmt.Errorf("digest bucket missing")
		}
		return bucket.Put([]byte(queryID), encodeRecord(digest, now.Add(b.recordTTL)))
	})
}

// maybeCleanupExpired removes expired records on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(digestBucket))
		if bucket == nil {
			return fmt.Errorf("digest bucket missing")
		}

		// Deleting through the cursor while iterating skips keys, so expired
		// keys are collected first.
		var expired [][]byte
		if err := bucket.ForEach(func(k, v []byte) error {
			if _, expiry, ok := decodeRecord(v); !ok || !expiry.After(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func encodeRecord(digest string, expiry time.Time) []byte {
	buf := make([]byte, expiryValueBytes+len(digest))
	binary.BigEndian.PutUint64(buf, uint64(expiry.Unix()))
	copy(buf[expiryValueBytes:], digest)
	return buf
}

// decodeRecord splits a stored value into digest and expiry.
func decodeRecord(value []byte) (string, time.Time, bool) {
	if len(value) < expiryValueBytes {
		return "", time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix <= 0 {
		return "", time.Time{}, false
	}
	return string(value[expiryValueBytes:]), time.Unix(unix, 0), true
}
