// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package kv defines the interfaces of the key/value store backing the
// staking record store.
package kv

// Range describes a key range [From, To).
type Range struct {
	From []byte
	To   []byte
}

// Getter reads keys.
type Getter interface {
	// Get returns the value for the given key. A missing key is reported
	// as an error checkable via IsNotFound.
	Get(key []byte) (value []byte, err error)
	Has(key []byte) (bool, error)
	IsNotFound(error) bool

	NewIterator(r Range) Iterator
}

// Putter writes keys.
type Putter interface {
	Put(key, value []byte) error
	Delete(key []byte) error

	NewBatch() Batch
}

// GetPutter reads and writes keys.
type GetPutter interface {
	Getter
	Putter
}

// GetPutCloser is a GetPutter owning its underlying store.
type GetPutCloser interface {
	GetPutter
	Close() error
}

// Batch collects writes to apply as one unit.
type Batch interface {
	Putter

	Len() int
	Write() error
}

// Iterator walks keys in order. Release must be called when done.
type Iterator interface {
	Next() bool
	Release()
	Error() error

	Key() []byte
	Value() []byte
}
