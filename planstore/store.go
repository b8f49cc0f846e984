// Package planstore keeps the last computed batch plan of each printer in a local bbolt file.
package planstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devadigapratham/printbatch/api/models"
	"github.com/hashicorp/go-hclog"
	bolt "go.etcd.io/bbolt"
)

var plansBucket = []byte("plans")

// Store persists plans keyed by printer ID
type Store struct {
	db     *bolt.DB
	logger hclog.Logger
}

// Open opens or creates the plan database at path
func Open(path string, logger hclog.Logger) (*Store, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create plan store directory: %w", err)
	}

	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open plan store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(plansBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create plans bucket: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Save replaces the printer's stored plan
func (s *Store) Save(plan *models.Plan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(plansBucket).Put([]byte(plan.PrinterID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save plan for printer %s: %w", plan.PrinterID, err)
	}
	s.logger.Debug("saved plan", "printer_id", plan.PrinterID, "batches", len(plan.Batches))
	return nil
}

// Load returns the printer's stored plan. The bool is false when none was saved.
func (s *Store) Load(printerID string) (*models.Plan, bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(plansBucket).Get([]byte(printerID)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if data == nil {
		return nil, false, nil
	}

	var plan models.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, false, fmt.Errorf("failed to decode plan for printer %s: %w", printerID, err)
	}
	return &plan, true, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
