// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state implements the keyed record store consumed by the staking
// engine. Records are addressed by (owner address, position) pairs, with the
// concrete key derived deterministically. Writes are journaled so that a
// whole operation either commits or is reverted as a unit.
package state

import (
	"github.com/pkg/errors"

	"github.com/kr8tiv/staking/kr8tiv"
	"github.com/kr8tiv/staking/kv"
)

var storageBucket = kv.Bucket("s")

// StorageEncoder defines the interface of custom storage encoding.
type StorageEncoder interface {
	Encode() ([]byte, error)
}

// StorageDecoder defines the interface of custom storage decoding.
type StorageDecoder interface {
	Decode([]byte) error
}

type storageKey struct {
	addr kr8tiv.Address
	pos  kr8tiv.Bytes32
}

// State manages journaled access to keyed records.
//
// It keeps a stack of write levels. NewCheckpoint pushes a level, RevertTo
// pops levels, Commit flattens all levels into the backing kv store. A nil
// backing store yields a purely in-memory state, which tests rely on.
type State struct {
	db kv.GetPutter

	base   map[storageKey][]byte // settled values, mirrors the backing store
	levels []map[storageKey][]byte
}

// New creates a state object backed by the given kv store.
// db may be nil for an in-memory only state.
func New(db kv.GetPutter) *State {
	return &State{
		db:     db,
		base:   make(map[storageKey][]byte),
		levels: []map[storageKey][]byte{make(map[storageKey][]byte)},
	}
}

func (s *State) rawKey(k storageKey) []byte {
	return append(k.addr.Bytes(), k.pos.Bytes()...)
}

func (s *State) get(k storageKey) ([]byte, error) {
	for i := len(s.levels) - 1; i >= 0; i-- {
		if v, ok := s.levels[i][k]; ok {
			return v, nil
		}
	}
	if v, ok := s.base[k]; ok {
		return v, nil
	}
	if s.db == nil {
		return nil, nil
	}
	v, err := storageBucket.ProxyGetter(s.db).Get(s.rawKey(k))
	if err != nil {
		if s.db.IsNotFound(err) {
			s.base[k] = nil
			return nil, nil
		}
		return nil, errors.Wrap(err, "get storage")
	}
	s.base[k] = v
	return v, nil
}

func (s *State) put(k storageKey, v []byte) {
	s.levels[len(s.levels)-1][k] = v
}

// NewCheckpoint makes a checkpoint of current state.
// It returns the checkpoint to be passed to RevertTo.
func (s *State) NewCheckpoint() int {
	s.levels = append(s.levels, make(map[storageKey][]byte))
	return len(s.levels) - 1
}

// RevertTo reverts the state to the given checkpoint, discarding all writes
// made since.
func (s *State) RevertTo(checkpoint int) {
	if checkpoint < 1 || checkpoint > len(s.levels)-1 {
		return
	}
	s.levels = s.levels[:checkpoint]
}

// GetRawStorage returns the raw encoded value of the record at (addr, pos).
func (s *State) GetRawStorage(addr kr8tiv.Address, pos kr8tiv.Bytes32) ([]byte, error) {
	return s.get(storageKey{addr, pos})
}

// SetRawStorage sets the raw encoded value of the record at (addr, pos).
// An empty raw deletes the record.
func (s *State) SetRawStorage(addr kr8tiv.Address, pos kr8tiv.Bytes32, raw []byte) {
	s.put(storageKey{addr, pos}, raw)
}

// GetStorage returns the fixed 32-byte value of the record at (addr, pos).
func (s *State) GetStorage(addr kr8tiv.Address, pos kr8tiv.Bytes32) (kr8tiv.Bytes32, error) {
	raw, err := s.get(storageKey{addr, pos})
	if err != nil {
		return kr8tiv.Bytes32{}, err
	}
	return kr8tiv.BytesToBytes32(raw), nil
}

// SetStorage sets the fixed 32-byte value of the record at (addr, pos).
func (s *State) SetStorage(addr kr8tiv.Address, pos kr8tiv.Bytes32, value kr8tiv.Bytes32) {
	if value.IsZero() {
		s.put(storageKey{addr, pos}, nil)
		return
	}
	s.put(storageKey{addr, pos}, value.Bytes())
}

// DecodeStorage decodes the record at (addr, pos) via the given decoder.
// An absent record is presented as empty raw.
func (s *State) DecodeStorage(addr kr8tiv.Address, pos kr8tiv.Bytes32, dec func([]byte) error) error {
	raw, err := s.get(storageKey{addr, pos})
	if err != nil {
		return err
	}
	return dec(raw)
}

// EncodeStorage encodes a record via the given encoder and stores it at
// (addr, pos). A nil encoding deletes the record.
func (s *State) EncodeStorage(addr kr8tiv.Address, pos kr8tiv.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return err
	}
	s.put(storageKey{addr, pos}, raw)
	return nil
}

// Commit flattens all journaled writes into the backing store.
// Without a backing store the writes are folded into the in-memory base.
func (s *State) Commit() error {
	var batch kv.Batch
	if s.db != nil {
		batch = storageBucket.ProxyPutter(s.db).NewBatch()
	}
	for _, level := range s.levels {
		for k, v := range level {
			s.base[k] = v
			if batch == nil {
				continue
			}
			if len(v) == 0 {
				if err := batch.Delete(s.rawKey(k)); err != nil {
					return errors.Wrap(err, "commit storage")
				}
			} else {
				if err := batch.Put(s.rawKey(k), v); err != nil {
					return errors.Wrap(err, "commit storage")
				}
			}
		}
	}
	if batch != nil {
		if err := batch.Write(); err != nil {
			return errors.Wrap(err, "write storage batch")
		}
	}
	s.levels = []map[storageKey][]byte{make(map[storageKey][]byte)}
	return nil
}
