package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
)

// Badger stores blobs in an embedded BadgerDB.
type Badger struct {
	DB     *badger.DB
	prefix string
}

// badgerLogger adapts zap to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.logger.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.logger.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.logger.Debugf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.logger.Debugf(format, args...) }

// NewBadger opens the database at cfg.Path, or in memory when cfg.InMemory is set.
func NewBadger(cfg config.BadgerConfig, prefix string, logger *zap.Logger) (*Badger, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("BADGER_PATH is required for persistent database")
		}
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create badger directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger.Named("badger").Sugar()})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Badger{DB: db, prefix: prefix}, nil
}

func (b *Badger) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(b.prefix + key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrBlobNotFound
	}
	return value, err
}

func (b *Badger) Put(_ context.Context, key string, value []byte) error {
	return b.DB.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(b.prefix+key), value)
	})
}

func (b *Badger) Delete(_ context.Context, key string) error {
	return b.DB.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(b.prefix + key))
	})
}

// Ping reports whether the database is still open.
func (b *Badger) Ping(context.Context) error {
	if b == nil || b.DB == nil || b.DB.IsClosed() {
		return errors.New("badger database closed")
	}
	return nil
}

func (b *Badger) Close() error {
	if b == nil || b.DB == nil {
		return nil
	}
	return b.DB.Close()
}
