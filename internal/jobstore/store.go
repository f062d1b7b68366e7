package jobstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/lagrangedao/go-compute-client/constants"
	"github.com/lagrangedao/go-compute-client/internal/models"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var ErrJobNotFound = errors.New("job not found")

// Store remembers the compute jobs started from this machine.
type Store struct {
	db *leveldb.DB
}

func Open(p string) (*Store, error) {
	if err := os.MkdirAll(p, 0700); err != nil {
		return nil, err
	}
	db, err := leveldb.OpenFile(p, nil)
	if err != nil {
		return nil, fmt.Errorf("open job store %s: %w", p, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Put(record models.JobRecord) error {
	if record.JobId == "" {
		return fmt.Errorf("job record without job id")
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := s.db.Put([]byte(constants.JOB_KEY_PREFIX+record.JobId), data, nil); err != nil {
		return fmt.Errorf("writing job '%s': %w", record.JobId, err)
	}
	return nil
}

func (s *Store) Get(jobId string) (models.JobRecord, error) {
	data, err := s.db.Get([]byte(constants.JOB_KEY_PREFIX+jobId), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return models.JobRecord{}, fmt.Errorf("%s: %w", jobId, ErrJobNotFound)
		}
		return models.JobRecord{}, fmt.Errorf("reading job '%s': %w", jobId, err)
	}
	var record models.JobRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return models.JobRecord{}, err
	}
	return record, nil
}

// List returns all records, newest first.
func (s *Store) List() ([]models.JobRecord, error) {
	var records []models.JobRecord
	iter := s.db.NewIterator(util.BytesPrefix([]byte(constants.JOB_KEY_PREFIX)), nil)
	for iter.Next() {
		var record models.JobRecord
		if err := json.Unmarshal(iter.Value(), &record); err != nil {
			iter.Release()
			return nil, fmt.Errorf("decoding job '%s': %w", string(iter.Key()), err)
		}
		records = append(records, record)
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt > records[j].CreatedAt
	})
	return records, nil
}

func (s *Store) Delete(jobId string) error {
	if err := s.db.Delete([]byte(constants.JOB_KEY_PREFIX+jobId), nil); err != nil {
		return fmt.Errorf("deleting job '%s': %w", jobId, err)
	}
	return nil
}
