package cache

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"time"

	"github.com/SteelMorgan/multicurl-log-analyzer/internal/domain"
	"github.com/rs/zerolog/log"
	"go.etcd.io/bbolt"
)

const (
	bucketName = "records"
)

// entry is the stored value: the record plus the file fingerprint it was parsed from
type entry struct {
	Size    int64            `json:"size"`
	ModTime int64            `json:"mod_time"` // unix nanoseconds
	Record  domain.LogRecord `json:"record"`
}

// BoltDBStore caches parsed records keyed by file path.
// An entry is only reused while the file size and modification time are unchanged.
type BoltDBStore struct {
	db *bbolt.DB
}

// NewBoltDBStore opens (or creates) the cache database
func NewBoltDBStore(dbPath string) (*BoltDBStore, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb (file may be locked by another process): %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	log.Info().
		Str("db_path", dbPath).
		Msg("BoltDB record cache initialized")

	return &BoltDBStore{db: db}, nil
}

// Get returns the cached record for path if the file is unchanged.
// Lookup errors are logged and reported as a miss.
func (s *BoltDBStore) Get(path string, info fs.FileInfo) (*domain.LogRecord, bool) {
	var e entry
	found := false

	err := s.db.View(func(tx *bbolt.Tx) error {
		val := tx.Bucket([]byte(bucketName)).Get([]byte(path))
		if val == nil {
			return nil
		}
		if err := json.Unmarshal(val, &e); err != nil {
			return fmt.Errorf("invalid cache entry: %w", err)
		}
		found = true
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Record cache lookup failed")
		return nil, false
	}

	if !found || e.Size != info.Size() || e.ModTime != info.ModTime().UnixNano() {
		return nil, false
	}

	return &e.Record, true
}

// Put stores the record parsed from path
func (s *BoltDBStore) Put(path string, info fs.FileInfo, record *domain.LogRecord) error {
	val, err := json.Marshal(entry{
		Size:    info.Size(),
		ModTime: info.ModTime().UnixNano(),
		Record:  *record,
	})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(path), val)
	})
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	return nil
}

// Delete removes the entry for path
func (s *BoltDBStore) Delete(path string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete([]byte(path))
	})
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Len returns the number of cached records
func (s *BoltDBStore) Len() (int, error) {
	n := 0
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket([]byte(bucketName)).Stats().KeyN
		return nil
	})
	return n, err
}

// Close closes the BoltDB database
func (s *BoltDBStore) Close() error {
	log.Debug().Msg("Closing BoltDB record cache")
	return s.db.Close()
}
