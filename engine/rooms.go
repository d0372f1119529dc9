package engine

import (
	"context"
	"net/http"

	"github.com/golang/glog"

	"github.com/mqy/malicek/chat"
	"github.com/mqy/malicek/transport"
)

type ListResult int

const (
	ListOK ListResult = iota
	ListTransient
	ListSessionInvalid
)

const roomsPath = "/api/rooms"

// RoomDirectory lists the rooms and reads per room settings.
type RoomDirectory struct {
	tr   transport.IClient
	sink chat.ISink
}

func NewRoomDirectory(tr transport.IClient, sink chat.ISink) *RoomDirectory {
	return &RoomDirectory{tr: tr, sink: sink}
}

// List fetches the room directory and hands it to the sink. Any answer
// other than 200 means the session is gone; timeouts and malformed bodies
// are transient.
func (d *RoomDirectory) List(ctx context.Context) ListResult {
	out := d.tr.Do(ctx, http.MethodGet, roomsPath, nil)
	if out.Kind == transport.Timeout {
		glog.Warningf("rooms: list timed out")
		return ListTransient
	}
	if !out.OK() {
		glog.Warningf("rooms: list failed: %s", out)
		return ListSessionInvalid
	}

	var rooms []*chat.RoomSummary
	if err := out.Decode(&rooms); err != nil {
		glog.Warningf("rooms: %v", err)
		return ListTransient
	}
	list := make([]*chat.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		if r != nil {
			list = append(list, r)
		}
	}
	d.sink.Rooms(list)
	return ListOK
}

// Settings reads the posting color and refresh period of room.
func (d *RoomDirectory) Settings(ctx context.Context, room chat.RoomID) (*chat.RoomSettings, bool) {
	out := d.tr.Do(ctx, http.MethodGet, roomPath(room)+"?query=settings", nil)
	if !out.OK() {
		glog.Warningf("rooms: settings of %s: %s", room, out)
		return nil, false
	}
	var s chat.RoomSettings
	if err := out.Decode(&s); err != nil {
		glog.Warningf("rooms: settings of %s: %v", room, err)
		return nil, false
	}
	return &s, true
}
