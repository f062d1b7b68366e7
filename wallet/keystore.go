package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// KeyInfo is the secret material of one account.
type KeyInfo struct {
	PrivateKey string
}

// KeyStore holds KeyInfo by account address.
type KeyStore interface {
	Addresses() ([]string, error)
	Get(addr string) (KeyInfo, error)
	Put(addr string, info KeyInfo) error
	Delete(addr string) error
}

// DiskKeyStore is a leveldb backed KeyStore. Every account lives under
// KNamePrefix + address.
type DiskKeyStore struct {
	db *leveldb.DB
}

func OpenOrInitKeystore(p string) (*DiskKeyStore, error) {
	if err := os.MkdirAll(p, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir %s: %w", p, err)
	}
	db, err := leveldb.OpenFile(p, nil)
	if err != nil {
		return nil, fmt.Errorf("open keystore %s: %w", p, err)
	}
	return &DiskKeyStore{db: db}, nil
}

func (dks *DiskKeyStore) Close() error {
	return dks.db.Close()
}

func (dks *DiskKeyStore) Addresses() ([]string, error) {
	var addrs []string
	iter := dks.db.NewIterator(util.BytesPrefix([]byte(KNamePrefix)), nil)
	defer iter.Release()
	for iter.Next() {
		addrs = append(addrs, strings.TrimPrefix(string(iter.Key()), KNamePrefix))
	}
	return addrs, iter.Error()
}

func (dks *DiskKeyStore) Get(addr string) (KeyInfo, error) {
	value, err := dks.db.Get(keyName(addr), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return KeyInfo{}, ErrKeyInfoNotFound
	}
	if err != nil {
		return KeyInfo{}, fmt.Errorf("reading key of %s: %w", addr, err)
	}

	var ki KeyInfo
	if err := json.Unmarshal(value, &ki); err != nil {
		return KeyInfo{}, fmt.Errorf("decoding key of %s: %w", addr, err)
	}
	return ki, nil
}

func (dks *DiskKeyStore) Put(addr string, info KeyInfo) error {
	value, err := json.Marshal(info)
	if err != nil {
		return err
	}
	if err := dks.db.Put(keyName(addr), value, nil); err != nil {
		return fmt.Errorf("writing key of %s: %w", addr, err)
	}
	return nil
}

func (dks *DiskKeyStore) Delete(addr string) error {
	if err := dks.db.Delete(keyName(addr), nil); err != nil {
		return fmt.Errorf("deleting key of %s: %w", addr, err)
	}
	return nil
}

func keyName(addr string) []byte {
	return []byte(KNamePrefix + addr)
}
