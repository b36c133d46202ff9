package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/okian/soltify/pkg/logger"
)

// Key layout.
const (
	snapshotKey   = "snapshot"
	runKeyPrefix  = "run/"
	defaultRunCap = 50
)

// BadgerStore implements Store on BadgerDB. The latest snapshot lives under a
// single key so a save is all or nothing.
type BadgerStore struct {
	db           *badger.DB
	inMemory     bool
	historyLimit int
	log          logger.Logger
}

// Open opens (or creates) the store in dir.
func Open(dir string, opts ...Option) (*BadgerStore, error) {
	s := &BadgerStore{
		historyLimit: defaultRunCap,
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	bopts := badger.DefaultOptions(dir).WithLogger(nil)
	if s.inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}
	s.db = db
	return s, nil
}

// Load implements Store.Load.
func (s *BadgerStore) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	if err := ctx.Err(); err != nil {
		return snap, err
	}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoSnapshot
		}
		if err != nil {
			return fmt.Errorf("get snapshot: %w", err)
		}

		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &snap); err != nil {
				return fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
			}
			return nil
		})
	})
	if err != nil {
		return Snapshot{}, err
	}

	s.log.Debug(ctx, "snapshot loaded",
		logger.String("run_id", snap.RunID),
		logger.Time("last_run", snap.LastRun),
		logger.Int("songs", len(snap.Songs)),
		logger.Int("profile", len(snap.Profile)),
	)
	return snap, nil
}

// Save implements Store.Save.
func (s *BadgerStore) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap.RunID == "" {
		return ErrMissingRunID
	}

	start := time.Now()
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	run, err := json.Marshal(summarize(snap))
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(snapshotKey), data); err != nil {
			return fmt.Errorf("set snapshot: %w", err)
		}
		if err := txn.Set(runKey(snap), run); err != nil {
			return fmt.Errorf("set run: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.prune(); err != nil {
		s.log.Warn(ctx, "prune run history failed", logger.Error(err))
	}

	s.log.Info(ctx, "snapshot saved",
		logger.String("run_id", snap.RunID),
		logger.Int("bytes", len(data)),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// Runs implements Store.Runs.
func (s *BadgerStore) Runs(ctx context.Context, limit int) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var runs []Run
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(runKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// reverse iteration starts at the last key of the prefix
		seek := append([]byte(runKeyPrefix), 0xff)
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix); it.Next() {
			var r Run
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			})
			if err != nil {
				return fmt.Errorf("%w: run %s: %w", ErrCorruptSnapshot, it.Item().Key(), err)
			}
			runs = append(runs, r)
			if limit > 0 && len(runs) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// Close releases the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// prune drops the oldest run summaries beyond the history limit.
func (s *BadgerStore) prune() error {
	var stale [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Reverse = true
		opts.Prefix = []byte(runKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		n := 0
		for it.Seek(append([]byte(runKeyPrefix), 0xff)); it.ValidForPrefix(opts.Prefix); it.Next() {
			n++
			if n > s.historyLimit {
				stale = append(stale, it.Item().KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil || len(stale) == 0 {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, k := range stale {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// runKey sorts by run time; the run id breaks ties.
func runKey(s Snapshot) []byte {
	return []byte(fmt.Sprintf("%s%020d/%s", runKeyPrefix, s.LastRun.UnixNano(), s.RunID))
}
