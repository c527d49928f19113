package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/edtrt/edtrt/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketPDs       = []byte("pds")
	bucketScheduler = []byte("scheduler")
	bucketDbs       = []byte("dbs")

	keySchedulerLocation = []byte("location")
)

// BoltStore implements Store on top of bbolt, an embedded transactional
// key-value store well suited to small, infrequently-written cluster state.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if absent) the on-disk database under dataDir.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "edtrt.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketPDs, bucketScheduler, bucketDbs} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error { return s.db.Close() }

func (s *BoltStore) CreatePD(pd *PDRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPDs)
		data, err := json.Marshal(pd)
		if err != nil {
			return err
		}
		return b.Put([]byte(pd.Location), data)
	})
}

func (s *BoltStore) GetPD(loc types.PDLocation) (*PDRecord, error) {
	var pd PDRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPDs)
		data := b.Get([]byte(loc))
		if data == nil {
			return fmt.Errorf("pd not found: %s", loc)
		}
		return json.Unmarshal(data, &pd)
	})
	if err != nil {
		return nil, err
	}
	return &pd, nil
}

func (s *BoltStore) ListPDs() ([]*PDRecord, error) {
	var pds []*PDRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPDs)
		return b.ForEach(func(k, v []byte) error {
			var pd PDRecord
			if err := json.Unmarshal(v, &pd); err != nil {
				return err
			}
			pds = append(pds, &pd)
			return nil
		})
	})
	return pds, err
}

func (s *BoltStore) UpdatePD(pd *PDRecord) error { return s.CreatePD(pd) }

func (s *BoltStore) DeletePD(loc types.PDLocation) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPDs).Delete([]byte(loc))
	})
}

func (s *BoltStore) SetSchedulerLocation(loc types.PDLocation) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketScheduler).Put(keySchedulerLocation, []byte(loc))
	})
}

func (s *BoltStore) GetSchedulerLocation() (types.PDLocation, error) {
	var loc types.PDLocation
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketScheduler).Get(keySchedulerLocation)
		if data == nil {
			return fmt.Errorf("scheduler location not set")
		}
		loc = types.PDLocation(data)
		return nil
	})
	return loc, err
}

func (s *BoltStore) PutDb(db *types.Db) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDbs)
		data, err := json.Marshal(db)
		if err != nil {
			return err
		}
		return b.Put([]byte(db.GUID), data)
	})
}

func (s *BoltStore) GetDb(guid types.GUID) (*types.Db, error) {
	var db types.Db
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDbs)
		data := b.Get([]byte(guid))
		if data == nil {
			return fmt.Errorf("db not found: %s", guid)
		}
		return json.Unmarshal(data, &db)
	})
	if err != nil {
		return nil, err
	}
	return &db, nil
}

func (s *BoltStore) ListDbs() ([]*types.Db, error) {
	var dbs []*types.Db
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDbs)
		return b.ForEach(func(k, v []byte) error {
			var db types.Db
			if err := json.Unmarshal(v, &db); err != nil {
				return err
			}
			dbs = append(dbs, &db)
			return nil
		})
	})
	return dbs, err
}

func (s *BoltStore) DeleteDb(guid types.GUID) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDbs).Delete([]byte(guid))
	})
}
