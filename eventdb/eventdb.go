// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb persists the structured events every mutating pool
// operation emits, for external observers and indexers.
package eventdb

import (
	"database/sql"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/kr8tiv/staking/kr8tiv"
)

const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	actor BLOB NOT NULL,
	amount TEXT NOT NULL,
	aux TEXT NOT NULL,
	eventTime INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS event_kind ON event(kind);
CREATE INDEX IF NOT EXISTS event_actor ON event(actor);
CREATE INDEX IF NOT EXISTS event_time ON event(eventTime);`

// Kinds of staking events.
const (
	KindStake            = "stake"
	KindInitiateUnstake  = "initiate-unstake"
	KindCompleteUnstake  = "complete-unstake"
	KindClaim            = "claim"
	KindDeposit          = "deposit"
	KindRateChange       = "rate-change"
	KindPause            = "pause"
	KindUnpause          = "unpause"
	KindEmergencyLevel   = "emergency-level"
	KindEmergencyUnstake = "emergency-unstake"
	KindProposal         = "proposal"
	KindApproval         = "approval"
	KindExecution        = "execution"
)

// Event is one emitted notification. Amount carries the operation's main
// quantity, Aux any secondary detail such as the new rate or action tag.
type Event struct {
	Seq       int64
	Kind      string
	Actor     kr8tiv.Address
	Amount    *big.Int
	Aux       string
	Timestamp uint64
}

type OrderType string

const (
	ASC  OrderType = "ASC"
	DESC OrderType = "DESC"
)

// Range filters events by [From, To] on the event timestamp.
type Range struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter narrows a query.
type Filter struct {
	Kind    string         `json:"kind"`
	Actor   *kr8tiv.Address `json:"actor"`
	Order   OrderType      `json:"order"` // default asc
	Range   *Range
	Options *Options
}

// EventDB manages all emitted events.
type EventDB struct {
	path          string
	db            *sql.DB
	sqliteVersion string
}

// New opens an event db.
func New(path string) (*EventDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}
	s, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		sqliteVersion: s,
	}, nil
}

// NewMem creates a memory sqlite db.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Insert stores events in one transaction.
func (db *EventDB) Insert(events ...*Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	for _, event := range events {
		amount := "0"
		if event.Amount != nil {
			amount = event.Amount.String()
		}
		if _, err = tx.Exec("INSERT INTO event(kind, actor, amount, aux, eventTime) VALUES (?, ?, ?, ?, ?);",
			event.Kind,
			event.Actor.Bytes(),
			amount,
			event.Aux,
			event.Timestamp); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Filter returns events matching the filter, all events when nil.
func (db *EventDB) Filter(filter *Filter) ([]*Event, error) {
	if filter == nil {
		return db.query("SELECT * FROM event ORDER BY seq ASC")
	}
	var args []interface{}
	stmt := "SELECT * FROM event WHERE 1"
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		stmt += " AND kind = ? "
	}
	if filter.Actor != nil {
		args = append(args, filter.Actor.Bytes())
		stmt += " AND actor = ? "
	}
	if filter.Range != nil {
		args = append(args, filter.Range.From)
		stmt += " AND eventTime >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND eventTime <= ? "
		}
	}
	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}
	if filter.Options != nil {
		stmt += " limit ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(stmt, args...)
}

func (db *EventDB) query(stmt string, args ...interface{}) ([]*Event, error) {
	rows, err := db.db.Query(stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			seq       int64
			kind      string
			actor     []byte
			amount    string
			aux       string
			eventTime uint64
		)
		if err := rows.Scan(&seq, &kind, &actor, &amount, &aux, &eventTime); err != nil {
			return nil, err
		}
		value, ok := new(big.Int).SetString(amount, 10)
		if !ok {
			value = new(big.Int)
		}
		events = append(events, &Event{
			Seq:       seq,
			Kind:      kind,
			Actor:     kr8tiv.BytesToAddress(actor),
			Amount:    value,
			Aux:       aux,
			Timestamp: eventTime,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Path returns the db's location.
func (db *EventDB) Path() string {
	return db.path
}

// Close closes the sqlite handle.
func (db *EventDB) Close() {
	db.db.Close()
}
