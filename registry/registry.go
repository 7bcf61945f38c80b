// Package registry persists a durable record of every channel the local
// controller has opened. It exists so that crash recovery -- a controller
// that died without calling Close -- has something other than "guess the
// channel name" to work from: hk's reaper and the purge maintenance command
// both walk it to find channels whose owning PID is no longer alive.
/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package registry

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/tidwall/buntdb"
)

// Record is the durable bookkeeping entry for one controller-opened channel.
type Record struct {
	ChannelName string `json:"channel_name"`
	PID         int    `json:"pid"`
	OpenedAt    int64  `json:"opened_at"` // unix nanoseconds
}

type Registry struct {
	db *buntdb.DB
}

// Open opens (creating if necessary) the embedded registry database at path.
func Open(path string) (*Registry, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "registry: failed to open %q", path)
	}
	return &Registry{db: db}, nil
}

// Put records or updates a channel's entry.
func (r *Registry) Put(rec Record) error {
	b, err := jsoniter.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "registry: marshal record")
	}
	return r.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(rec.ChannelName, string(b), nil)
		return err
	})
}

// Delete removes a channel's entry. Deleting an absent entry is not an
// error -- close and purge are both expected to be idempotent.
func (r *Registry) Delete(channelName string) error {
	return r.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(channelName)
		if err != nil && !errors.Is(err, buntdb.ErrNotFound) {
			return err
		}
		return nil
	})
}

// Get looks up one channel's entry.
func (r *Registry) Get(channelName string) (rec Record, found bool, err error) {
	err = r.db.View(func(tx *buntdb.Tx) error {
		val, gerr := tx.Get(channelName)
		if errors.Is(gerr, buntdb.ErrNotFound) {
			return nil
		}
		if gerr != nil {
			return gerr
		}
		found = true
		return jsoniter.Unmarshal([]byte(val), &rec)
	})
	return rec, found, err
}

// List returns every recorded channel, in no particular order.
func (r *Registry) List() ([]Record, error) {
	var recs []Record
	err := r.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(_, val string) bool {
			var rec Record
			if jerr := jsoniter.Unmarshal([]byte(val), &rec); jerr == nil {
				recs = append(recs, rec)
			}
			return true
		})
	})
	return recs, err
}

func (r *Registry) Close() error { return r.db.Close() }
