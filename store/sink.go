package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/mqy/malicek/chat"
)

const archiveDeleteInterval = time.Hour

type batch struct {
	room     chat.RoomID
	received time.Time
	msgs     []*chat.Message
}

// ArchiveSink saves every delivered message to an archive. The engine side
// only enqueues; Run does the writes.
type ArchiveSink struct {
	chat.NopSink

	archive IArchive
	queue   chan *batch
	ttlDays int32
	wg      sync.WaitGroup
}

// NewArchiveSink creates the sink; ttlDays <= 0 keeps records forever.
func NewArchiveSink(archive IArchive, queueSize int, ttlDays int32) *ArchiveSink {
	return &ArchiveSink{
		archive: archive,
		queue:   make(chan *batch, queueSize),
		ttlDays: ttlDays,
	}
}

func (s *ArchiveSink) Messages(room chat.RoomID, msgs []*chat.Message, opts chat.EmitOptions) {
	select {
	case s.queue <- &batch{room: room, received: time.Now(), msgs: msgs}:
	default:
		glog.Errorf("archive: queue full, dropped %d messages of room %s", len(msgs), room)
	}
}

func (s *ArchiveSink) Run(ctx context.Context, stopDoneNotifyC chan<- struct{}) {
	glog.Info("archive: ready")
	if s.ttlDays > 0 {
		s.wg.Add(1)
		go s.deleteLoop(ctx)
	}

	defer func() {
		s.wg.Wait()
		if err := s.archive.Close(); err != nil {
			glog.Errorf("archive: close: %v", err)
		}
		glog.Info("archive: stopped")
		stopDoneNotifyC <- struct{}{}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case b := <-s.queue:
			s.save(ctx, b)
		}
	}
}

func (s *ArchiveSink) save(ctx context.Context, b *batch) {
	var sleep time.Duration
	for {
		err := s.archive.Save(ctx, b.room, b.received, b.msgs)
		if err == nil {
			glog.V(5).Infof("archive: saved %d messages of room %s", len(b.msgs), b.room)
			return
		}
		if errors.Is(err, context.Canceled) {
			glog.V(5).Info("archive: save was cancelled")
			return
		}
		glog.Errorf("archive: save err: %v", err)
		Backoff(&sleep)
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return
		}
	}
}

// deleteLoop deletes outdated records.
func (s *ArchiveSink) deleteLoop(ctx context.Context) {
	glog.Info("archive: delete loop enter")

	ticker := time.NewTicker(archiveDeleteInterval)
	defer func() {
		ticker.Stop()
		glog.Info("archive: delete loop exit")
		s.wg.Done()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			n, err := s.archive.DeleteOutdated(context.Background(), s.ttlDays)
			if err == nil {
				glog.Infof("archive: deleted %d outdated records, took %s", n, time.Since(start))
			} else {
				glog.Errorf("archive: delete outdated records error: %v ", err)
			}
		}
	}
}
