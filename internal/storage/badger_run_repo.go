package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

const (
	runKeyPrefix = "run:"

	// Первый байт значения: формат кодирования записи
	codecJSON byte = 'j'
	codecZstd byte = 'z'
)

// BadgerRunRepo хранит забеги в BadgerDB. Записи сериализуются в JSON
// и при включённом сжатии упаковываются zstd.
type BadgerRunRepo struct {
	db       *badger.DB
	dbPath   string
	mutex    sync.RWMutex
	isReady  bool
	compress bool

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewBadgerRunRepo открывает хранилище в dataPath/runs
func NewBadgerRunRepo(dataPath string, compress bool) (*BadgerRunRepo, error) {
	dbPath := filepath.Join(dataPath, "runs")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &BadgerRunRepo{
		db:       db,
		dbPath:   dbPath,
		isReady:  true,
		compress: compress,
		encoder:  encoder,
		decoder:  decoder,
	}, nil
}

// Close закрывает хранилище данных
func (r *BadgerRunRepo) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.isReady {
		return nil
	}
	r.isReady = false
	r.encoder.Close()
	r.decoder.Close()
	return r.db.Close()
}

func (r *BadgerRunRepo) Save(ctx context.Context, rec RunRecord) error {
	if err := validate(rec); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if !r.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	data, err := r.encode(rec)
	if err != nil {
		return err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(runKeyPrefix+rec.ID), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

func (r *BadgerRunRepo) Get(ctx context.Context, id string) (RunRecord, error) {
	if err := ctx.Err(); err != nil {
		return RunRecord{}, err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if !r.isReady {
		return RunRecord{}, fmt.Errorf("хранилище не готово")
	}

	var data []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(runKeyPrefix + id))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return RunRecord{}, fmt.Errorf("забег %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	return r.decode(data)
}

func (r *BadgerRunRepo) Top(ctx context.Context, limit int) ([]RunRecord, error) {
	var records []RunRecord
	err := r.scan(ctx, func(val []byte) error {
		rec, err := r.decode(val)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rank(records, limit), nil
}

func (r *BadgerRunRepo) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if !r.isReady {
		return 0, fmt.Errorf("хранилище не готово")
	}

	count := 0
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(runKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// scan обходит все записи забегов
func (r *BadgerRunRepo) scan(ctx context.Context, fn func(val []byte) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if !r.isReady {
		return fmt.Errorf("хранилище не готово")
	}
	return r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(runKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := it.Item().Value(fn); err != nil {
				return fmt.Errorf("запись %s: %w", it.Item().Key(), err)
			}
		}
		return nil
	})
}

func (r *BadgerRunRepo) encode(rec RunRecord) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации забега: %w", err)
	}
	if !r.compress {
		return append([]byte{codecJSON}, data...), nil
	}
	return r.encoder.EncodeAll(data, []byte{codecZstd}), nil
}

// decode понимает оба формата, поэтому флаг сжатия можно менять на живой базе
func (r *BadgerRunRepo) decode(val []byte) (RunRecord, error) {
	var rec RunRecord
	if len(val) == 0 {
		return rec, fmt.Errorf("пустое значение")
	}

	data := val[1:]
	switch val[0] {
	case codecJSON:
	case codecZstd:
		var err error
		data, err = r.decoder.DecodeAll(data, nil)
		if err != nil {
			return rec, fmt.Errorf("ошибка распаковки zstd: %w", err)
		}
	default:
		return rec, fmt.Errorf("неизвестный формат записи %q", val[0])
	}

	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("ошибка десериализации забега: %w", err)
	}
	return rec, nil
}
