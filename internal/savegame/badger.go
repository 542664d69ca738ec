package savegame

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

const slotPrefix = "save/"

// BadgerStore keeps named save slots in a Badger database as JSON.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) the database in dir.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	return openBadger(opts)
}

// OpenBadgerInMemory opens a throwaway database, used by tests and by the
// server when no BADGER_DIR is configured.
func OpenBadgerInMemory() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return openBadger(opts)
}

func openBadger(opts badger.Options) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func slotKey(name string) []byte { return []byte(slotPrefix + name) }

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty slot name", ErrInvalidSave)
	}
	return name, nil
}

// Put stores s under name, replacing any previous save in that slot.
func (b *BadgerStore) Put(name string, s Save) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(slotKey(name), data)
	})
}

// Get loads the save in slot name.
func (b *BadgerStore) Get(name string) (Save, error) {
	var s Save
	name, err := cleanName(name)
	if err != nil {
		return s, err
	}
	err = b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(slotKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrSaveNotFound, name)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &s)
		})
	})
	return s, err
}

// List returns the slot names in lexical order.
func (b *BadgerStore) List() ([]string, error) {
	var names []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(slotPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), slotPrefix))
		}
		return nil
	})
	sort.Strings(names)
	return names, err
}

// Delete removes slot name. Missing slots report ErrSaveNotFound.
func (b *BadgerStore) Delete(name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(slotKey(name)); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrSaveNotFound, name)
		} else if err != nil {
			return err
		}
		return txn.Delete(slotKey(name))
	})
}
