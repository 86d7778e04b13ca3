// Package bolt persists a built index in a bbolt database: one key per
// Domain Key (conventional dotted form) holding its encoded entry, plus a
// meta bucket with the snapshot version and build time.
package bolt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/haukened/edu-verify/internal/edu/common/log"
	"github.com/haukened/edu-verify/internal/edu/domain"
	"github.com/haukened/edu-verify/internal/edu/repos/index"
)

var (
	bucketEntries = []byte("entries")
	bucketMeta    = []byte("meta")

	metaFormat  = []byte("format")
	metaVersion = []byte("version")
	metaUpdated = []byte("updated")
)

// ErrCorruptEntry is returned when a stored entry can't be decoded.
var ErrCorruptEntry = errors.New("corrupt index entry")

// Meta describes the snapshot written by Save.
type Meta struct {
	Version     uint64 // caller-defined snapshot version
	UpdatedUnix int64  // seconds since epoch
}

// StoreStats captures counts and metadata for the persisted snapshot.
type StoreStats struct {
	Entries     uint64
	Format      string
	Version     uint64
	UpdatedUnix int64
}

// Store is a bbolt-backed index snapshot.
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) a database at path for writing and ensures the
// buckets exist.
func New(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketEntries); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing database without taking a write lock.
func OpenReadOnly(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o400, &bbolt.Options{Timeout: 1 * time.Second, ReadOnly: true})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Save replaces the stored snapshot with every entry of ix in a single
// transaction. Readers never observe a half-written snapshot.
func (s *Store) Save(ix *index.Index, meta Meta) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketEntries) != nil {
			if err := tx.DeleteBucket(bucketEntries); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(bucketEntries)
		if err != nil {
			return err
		}

		var putErr error
		ix.Walk(func(k domain.DomainKey, e domain.Entry) bool {
			putErr = b.Put([]byte(k.String()), encodeEntry(e))
			return putErr == nil
		})
		if putErr != nil {
			return putErr
		}

		m, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		vbuf := make([]byte, 8)
		ubuf := make([]byte, 8)
		binary.BigEndian.PutUint64(vbuf, meta.Version)
		binary.BigEndian.PutUint64(ubuf, uint64(meta.UpdatedUnix))
		if err := m.Put(metaFormat, []byte(domain.ArtifactVersion)); err != nil {
			return err
		}
		if err := m.Put(metaVersion, vbuf); err != nil {
			return err
		}
		return m.Put(metaUpdated, ubuf)
	})
}

// Load rebuilds the index from the stored entries. Marker entries go in as
// overrides and everything else as dataset records, which reproduces the
// saved tree exactly.
func (s *Store) Load(logger log.Logger) (*index.Index, error) {
	builder := index.NewBuilder(logger)
	err := s.db.View(func(tx *bbolt.Tx) error {
		if m := tx.Bucket(bucketMeta); m != nil {
			if f := m.Get(metaFormat); f != nil && string(f) != domain.ArtifactVersion {
				return fmt.Errorf("%w: %q", index.ErrUnsupportedVersion, f)
			}
		}
		b := tx.Bucket(bucketEntries)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			key, err := domain.KeyFromDomain(string(k))
			if err != nil {
				return fmt.Errorf("%w: key %q: %v", ErrCorruptEntry, k, err)
			}
			e, err := decodeEntry(v)
			if err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			if e.IsOverride() {
				return builder.AddOverride(domain.OverrideRecord{Key: key, Marker: e.Marker, Source: "bolt"})
			}
			return builder.AddRecord(domain.DomainRecord{Key: key, Names: e.Names, Source: "bolt"})
		})
	})
	if err != nil {
		return nil, err
	}
	return builder.Build(), nil
}

// Stats reads counts and metadata in a read-only transaction.
func (s *Store) Stats() StoreStats {
	st := StoreStats{}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketEntries); b != nil {
			st.Entries = uint64(b.Stats().KeyN)
		}
		if b := tx.Bucket(bucketMeta); b != nil {
			st.Format = string(b.Get(metaFormat))
			if v := b.Get(metaVersion); len(v) == 8 {
				st.Version = binary.BigEndian.Uint64(v)
			}
			if v := b.Get(metaUpdated); len(v) == 8 {
				st.UpdatedUnix = int64(binary.BigEndian.Uint64(v))
			}
		}
		return nil
	})
	return st
}

// encodeEntry writes the marker byte followed by length-prefixed names.
func encodeEntry(e domain.Entry) []byte {
	size := 1
	for _, n := range e.Names {
		size += binary.MaxVarintLen64 + len(n)
	}
	buf := make([]byte, 1, size)
	buf[0] = byte(e.Marker)
	for _, n := range e.Names {
		buf = binary.AppendUvarint(buf, uint64(len(n)))
		buf = append(buf, n...)
	}
	return buf
}

func decodeEntry(v []byte) (domain.Entry, error) {
	if len(v) == 0 {
		return domain.Entry{}, fmt.Errorf("%w: empty value", ErrCorruptEntry)
	}
	m := domain.Marker(v[0])
	switch {
	case m.IsOverride():
		if len(v) != 1 {
			return domain.Entry{}, fmt.Errorf("%w: marker entry carries names", ErrCorruptEntry)
		}
		return domain.MarkerEntry(m), nil
	case m != domain.MarkerNone:
		return domain.Entry{}, fmt.Errorf("%w: unknown marker %d", ErrCorruptEntry, v[0])
	}

	var names []string
	rest := v[1:]
	for len(rest) > 0 {
		n, sz := binary.Uvarint(rest)
		if sz <= 0 || uint64(len(rest)-sz) < n {
			return domain.Entry{}, fmt.Errorf("%w: truncated name", ErrCorruptEntry)
		}
		rest = rest[sz:]
		names = append(names, string(rest[:n]))
		rest = rest[n:]
	}
	return domain.Entry{Names: names}, nil
}
