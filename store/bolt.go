package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang/glog"
	"go.etcd.io/bbolt"

	"github.com/mqy/malicek/chat"
)

var messagesBucket = []byte("messages")

// boltArchive implements IArchive in a local bbolt file: one nested bucket
// per room under `messages`, keyed by the room's sequence.
type boltArchive struct {
	db *bbolt.DB
}

func NewBoltArchive(db *bbolt.DB) (*boltArchive, error) {
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(messagesBucket)
		return err
	}); err != nil {
		return nil, fmt.Errorf("init archive: %w", err)
	}
	return &boltArchive{db: db}, nil
}

func (a *boltArchive) Save(ctx context.Context, room chat.RoomID, received time.Time, msgs []*chat.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	return a.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(messagesBucket).CreateBucketIfNotExists([]byte(room))
		if err != nil {
			return err
		}
		for _, m := range msgs {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			v, err := json.Marshal(&Record{Seq: seq, Room: room, Received: received, Message: m})
			if err != nil {
				return err
			}
			if err := b.Put(seqKey(seq), v); err != nil {
				return err
			}
		}
		return ctx.Err()
	})
}

func (a *boltArchive) Recent(ctx context.Context, room chat.RoomID, limit int) ([]*Record, error) {
	var out []*Record
	err := a.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(messagesBucket).Bucket([]byte(room))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil && len(out) < limit; k, v = c.Prev() {
			var r Record
			if err := json.Unmarshal(v, &r); err != nil {
				glog.Errorf("archive: room %s seq %d: %v", room, keySeq(k), err)
				continue
			}
			out = append(out, &r)
		}
		return nil
	})
	return out, err
}

func (a *boltArchive) DeleteOutdated(ctx context.Context, ttlDays int32) (int32, error) {
	cutoff := GetDayBefore(ttlDays)
	var numDeleted int32

	err := a.db.Update(func(tx *bbolt.Tx) error {
		root := tx.Bucket(messagesBucket)
		var rooms [][]byte
		if err := root.ForEach(func(name, v []byte) error {
			if v == nil {
				rooms = append(rooms, append([]byte(nil), name...))
			}
			return nil
		}); err != nil {
			return err
		}

		for _, name := range rooms {
			b := root.Bucket(name)

			// keys ascend with receive time, stop at the first fresh one
			var stale [][]byte
			c := b.Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				var r Record
				if err := json.Unmarshal(v, &r); err == nil && r.Received.After(cutoff) {
					break
				}
				stale = append(stale, append([]byte(nil), k...))
			}
			for _, k := range stale {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
			numDeleted += int32(len(stale))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return numDeleted, nil
}

func (a *boltArchive) Close() error {
	return nil
}
