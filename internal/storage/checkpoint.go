// Package storage persists the trained classifier using BoltDB. One
// checkpoint lives at a well-known path and is overwritten in place
// whenever training observes a new best validation recall. The scaler
// is stored alongside the parameters so inference always applies the
// transform the model was trained with.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"quakewatch/internal/dataset"
)

const (
	checkpointFile   = "quakewatch-checkpoint.db"
	checkpointBucket = "checkpoint"

	keyParams = "params"
	keyScaler = "scaler"
	keyMeta   = "meta"
)

// ErrCheckpointMissing is returned when no checkpoint has been saved yet.
var ErrCheckpointMissing = errors.New("no checkpoint found")

// ModelMeta describes the architecture and provenance of a saved
// parameter blob. A checkpoint only round-trips through a classifier
// built with the same dimensions.
type ModelMeta struct {
	SeqLength  int       `json:"seqLength"`
	HiddenSize int       `json:"hiddenSize"`
	NumLayers  int       `json:"numLayers"`
	Dropout    float64   `json:"dropout"`
	ParamCount int       `json:"paramCount"`
	BestRecall float64   `json:"bestRecall"`
	SavedAt    time.Time `json:"savedAt"`
}

// Checkpoint bundles everything inference needs: learned parameters,
// the scaler fit during training, and the model dimensions.
type Checkpoint struct {
	Params []float64
	Scaler dataset.MinMaxScaler
	Meta   ModelMeta
}

// Store provides single-writer checkpoint persistence backed by BoltDB.
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) the checkpoint database under dataPath.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, checkpointFile)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(checkpointBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create checkpoint bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save overwrites the checkpoint in one transaction.
func (s *Store) Save(ckpt Checkpoint) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(checkpointBucket))

		params, err := json.Marshal(ckpt.Params)
		if err != nil {
			return fmt.Errorf("marshal params: %w", err)
		}
		scaler, err := json.Marshal(ckpt.Scaler)
		if err != nil {
			return fmt.Errorf("marshal scaler: %w", err)
		}
		meta, err := json.Marshal(ckpt.Meta)
		if err != nil {
			return fmt.Errorf("marshal meta: %w", err)
		}

		if err := b.Put([]byte(keyParams), params); err != nil {
			return err
		}
		if err := b.Put([]byte(keyScaler), scaler); err != nil {
			return err
		}
		return b.Put([]byte(keyMeta), meta)
	})
}

// Load reads the checkpoint. Returns ErrCheckpointMissing when nothing
// has been saved, and a decode error when the blob does not parse.
func (s *Store) Load() (Checkpoint, error) {
	var ckpt Checkpoint

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(checkpointBucket))

		params := b.Get([]byte(keyParams))
		scaler := b.Get([]byte(keyScaler))
		meta := b.Get([]byte(keyMeta))
		if params == nil || scaler == nil || meta == nil {
			return ErrCheckpointMissing
		}

		if err := json.Unmarshal(params, &ckpt.Params); err != nil {
			return fmt.Errorf("unmarshal params: %w", err)
		}
		if err := json.Unmarshal(scaler, &ckpt.Scaler); err != nil {
			return fmt.Errorf("unmarshal scaler: %w", err)
		}
		if err := json.Unmarshal(meta, &ckpt.Meta); err != nil {
			return fmt.Errorf("unmarshal meta: %w", err)
		}
		return nil
	})
	if err != nil {
		return Checkpoint{}, err
	}

	if ckpt.Meta.ParamCount != 0 && ckpt.Meta.ParamCount != len(ckpt.Params) {
		return Checkpoint{}, fmt.Errorf("checkpoint corrupt: meta declares %d params, blob has %d", ckpt.Meta.ParamCount, len(ckpt.Params))
	}

	return ckpt, nil
}
