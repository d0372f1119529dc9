package store

import (
	"context"
	"time"

	"github.com/mqy/malicek/chat"
)

// Record is one archived message.
type Record struct {
	Seq      uint64        `json:"seq"`
	Room     chat.RoomID   `json:"room"`
	Received time.Time     `json:"received"` // local receive time
	Message  *chat.Message `json:"message"`
}

type IArchive interface {
	// Save appends msgs, oldest first, to the log of room.
	Save(ctx context.Context, room chat.RoomID, received time.Time, msgs []*chat.Message) error

	// Recent gets at most limit records of room, order by seq DESC.
	Recent(ctx context.Context, room chat.RoomID, limit int) ([]*Record, error)

	// DeleteOutdated deletes records received more than ttlDays ago.
	DeleteOutdated(ctx context.Context, ttlDays int32) (int32, error)

	Close() error
}
