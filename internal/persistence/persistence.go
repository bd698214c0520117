package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/clusterhack/argononed/internal/curves"
	"github.com/clusterhack/argononed/internal/ui"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketOverrides = "overrides"

	keyFanControlEnabled   = "fanControlEnabled"
	keyPowerControlEnabled = "powerControlEnabled"
	keySpeedLUT            = "speedLut"
	keyFanSpeed            = "fanSpeed"
)

// Persistence stores runtime overrides applied through the API or CLI so
// they survive a daemon restart. Load methods return os.ErrNotExist when no
// override has been saved.
type Persistence interface {
	Init() error

	LoadFanControlEnabled() (bool, error)
	SaveFanControlEnabled(enabled bool) error

	LoadPowerControlEnabled() (bool, error)
	SavePowerControlEnabled(enabled bool) error

	LoadSpeedLUT() ([]curves.LUTEntry, error)
	SaveSpeedLUT(items []curves.LUTEntry) error
	DeleteSpeedLUT() error

	LoadFanSpeed() (int, error)
	SaveFanSpeed(speed int) error
}

type persistence struct {
	dbPath string
}

func NewPersistence(dbPath string) Persistence {
	return &persistence{
		dbPath: dbPath,
	}
}

func (p persistence) Init() (err error) {
	parentDir := filepath.Dir(p.dbPath)
	_, err = os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		ui.Info("Creating directory for db: %s", parentDir)
		err = os.MkdirAll(parentDir, 0755)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p persistence) openPersistence() (db *bolt.DB, err error) {
	db, err = bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
	if err != nil {
		return nil, err
	}
	return db, nil
}

func (p persistence) LoadFanControlEnabled() (bool, error) {
	return p.loadBool(keyFanControlEnabled)
}

func (p persistence) SaveFanControlEnabled(enabled bool) error {
	return p.save(keyFanControlEnabled, enabled)
}

func (p persistence) LoadPowerControlEnabled() (bool, error) {
	return p.loadBool(keyPowerControlEnabled)
}

func (p persistence) SavePowerControlEnabled(enabled bool) error {
	return p.save(keyPowerControlEnabled, enabled)
}

func (p persistence) LoadFanSpeed() (int, error) {
	return p.loadInt(keyFanSpeed)
}

func (p persistence) SaveFanSpeed(speed int) error {
	return p.save(keyFanSpeed, speed)
}

func (p persistence) SaveSpeedLUT(items []curves.LUTEntry) error {
	return p.save(keySpeedLUT, items)
}

func (p persistence) LoadSpeedLUT() ([]curves.LUTEntry, error) {
	db, err := p.openPersistence()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	var items []curves.LUTEntry
	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketOverrides))
		if b == nil {
			return os.ErrNotExist
		}
		v := b.Get([]byte(keySpeedLUT))
		if v == nil {
			return os.ErrNotExist
		}

		err := json.Unmarshal(v, &items)
		if err != nil {
			// if we cannot read the saved data, delete it
			ui.Warning("Unable to unmarshal saved fan speed LUT: %v", err)
			err := b.Delete([]byte(keySpeedLUT))
			if err != nil {
				ui.Error("Unable to delete corrupt data key %s: %v", keySpeedLUT, err)
			}
			return os.ErrNotExist
		}

		return nil
	})

	return items, err
}

func (p persistence) DeleteSpeedLUT() error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketOverrides))
		if b == nil {
			// no overrides bucket yet
			return nil
		}
		v := b.Get([]byte(keySpeedLUT))
		if v == nil {
			// no data for given key
			return nil
		}

		return b.Delete([]byte(keySpeedLUT))
	})
}

func (p persistence) save(key string, value interface{}) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BucketOverrides))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		return b.Put([]byte(key), data)
	})
}

func (p persistence) loadBool(key string) (bool, error) {
	var value bool
	err := p.load(key, &value)
	return value, err
}

func (p persistence) loadInt(key string) (int, error) {
	var value int
	err := p.load(key, &value)
	return value, err
}

func (p persistence) load(key string, value interface{}) error {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketOverrides))
		if b == nil {
			return os.ErrNotExist
		}
		v := b.Get([]byte(key))
		if v == nil {
			return os.ErrNotExist
		}

		err := json.Unmarshal(v, value)
		if err != nil {
			ui.Warning("Unable to unmarshal saved value for %s: %v", key, err)
			err := b.Delete([]byte(key))
			if err != nil {
				ui.Error("Unable to delete corrupt data key %s: %v", key, err)
			}
			return os.ErrNotExist
		}

		return nil
	})
}
