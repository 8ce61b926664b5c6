package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketReports = []byte("reports")

// ReportMeta identifies one stored analysis.
type ReportMeta struct {
	Key       string    `json:"key"`
	Target    string    `json:"target"`
	CreatedAt time.Time `json:"created_at"`
}

type storedReport struct {
	Target    string          `json:"target"`
	CreatedAt time.Time       `json:"created_at"`
	Report    json.RawMessage `json:"report"`
}

// Store persists analysis reports in BoltDB, keyed by target and
// creation time, so past sessions can be listed and reloaded.
type Store struct {
	db   *bolt.DB
	path string
}

// Open opens (or creates) a report store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketReports)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// SaveReport stores a marshaled report for a target and returns its key.
func (s *Store) SaveReport(target string, report any) (string, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("%s|%s", target, now.Format(time.RFC3339Nano))

	entry, err := json.Marshal(storedReport{
		Target:    target,
		CreatedAt: now,
		Report:    data,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal entry: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketReports)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.Put([]byte(key), entry)
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// LoadReport unmarshals a stored report into out.
func (s *Store) LoadReport(key string, out any) error {
	var entry storedReport
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketReports)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		data := b.Get([]byte(key))
		if data == nil {
			return fmt.Errorf("report not found: %s", key)
		}
		return json.Unmarshal(data, &entry)
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(entry.Report, out)
}

// ListReports returns metadata for every stored report, in key order.
func (s *Store) ListReports() ([]ReportMeta, error) {
	metas := make([]ReportMeta, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketReports)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		return b.ForEach(func(k, v []byte) error {
			var entry storedReport
			if err := json.Unmarshal(v, &entry); err != nil {
				// Skip unreadable entries rather than failing the list.
				return nil
			}
			metas = append(metas, ReportMeta{
				Key:       string(k),
				Target:    entry.Target,
				CreatedAt: entry.CreatedAt,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return metas, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
