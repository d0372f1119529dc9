package ws

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/pborman/uuid"

	"github.com/mqy/malicek/chat"
	"github.com/mqy/malicek/render"
	"github.com/mqy/malicek/store"
)

// Hub serves front-end websocket sessions. It is a chat.ISink: engine
// updates are fanned out to every session, and the latest state, room list,
// roster and notices are replayed to sessions that connect later.
type Hub struct {
	sync.Mutex

	cmd     ICommander
	archive store.IArchive
	hstore  *HandlerStore
	ctx     context.Context
	online  bool

	state   *ServerMsg
	rooms   *ServerMsg
	roster  *ServerMsg
	notices map[chat.NoticeKind]*ServerMsg
}

// NewHub creates a `Hub`. archive may be nil.
func NewHub(cmd ICommander, archive store.IArchive) *Hub {
	return &Hub{
		cmd:     cmd,
		archive: archive,
		ctx:     context.Background(),
		hstore: &HandlerStore{
			handlers: make(map[string]*Handler),
		},
		notices: make(map[chat.NoticeKind]*ServerMsg),
	}
}

// SetCommander binds the command target. It must be called before Run.
func (h *Hub) SetCommander(cmd ICommander) {
	h.cmd = cmd
}

// Run serves until ctx is done, then closes all sessions.
func (h *Hub) Run(ctx context.Context, stopDoneNotifyC chan<- struct{}) {
	h.Lock()
	h.ctx = ctx
	h.online = true
	h.Unlock()

	<-ctx.Done()

	h.Lock()
	h.online = false
	h.Unlock()

	glog.Infof("close connections ...")
	h.hstore.close()
	glog.Infof("close connections done")
	stopDoneNotifyC <- struct{}{}
}

// ServeHTTP handles websocket requests from the peer.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Lock()
	online, ctx := h.online, h.ctx
	h.Unlock()
	if !online {
		http.Error(w, "Hub is not running", http.StatusServiceUnavailable)
		return
	}

	sess := &Session{
		Sid:        strings.ReplaceAll(uuid.New(), "-", ""),
		CreateTime: time.Now().Unix(),
		Ip:         getRemoteIP(r),
	}

	// If the upgrade fails, then Upgrade replies to the client with an HTTP error response.
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.Errorf("ServeHTTP(): upgrader.Upgrade error, ip: %s, err: %s", sess.Ip, err)
		return
	}

	handler := &Handler{
		dataChan: make(chan *SessionData, dataChanSize),
		session:  sess,
		conn:     conn,
		hub:      h,
	}

	conn.SetCloseHandler(func(code int, text string) error {
		glog.Infof("session closed by peer, session: %s, code: %d, text: %s", handler, code, text)
		h.delHandler(sess.Sid)
		return nil
	})

	h.addHandler(handler)

	go handler.recvLoop(ctx)
	go handler.sendLoop()
}

func (h *Hub) addHandler(handler *Handler) {
	// replay under the hub lock so no update slips between replay and add
	h.Lock()
	defer h.Unlock()

	for _, m := range h.snapshotLocked() {
		handler.appendDataChan(&SessionData{ServerMsg: m})
	}
	h.hstore.add(handler)
	glog.V(5).Infof("session added: %s, sessions: %d", handler, h.hstore.count())
}

func (h *Hub) delHandler(sid string) {
	if h.hstore.del(sid) {
		glog.V(5).Infof("session removed: %s", sid)
	}
}

func (h *Hub) snapshotLocked() []*ServerMsg {
	var out []*ServerMsg
	for _, m := range []*ServerMsg{h.state, h.rooms, h.roster} {
		if m != nil {
			out = append(out, m)
		}
	}
	for _, m := range h.notices {
		out = append(out, m)
	}
	return out
}

func (h *Hub) broadcastLocked(m *ServerMsg) {
	for _, handler := range h.hstore.list() {
		handler.appendDataChan(&SessionData{ServerMsg: m})
	}
}

func (h *Hub) State(s chat.State) {
	h.Lock()
	defer h.Unlock()

	m := &ServerMsg{Type: FrameState, State: &s}
	h.state = m
	if s != chat.StateInRoom {
		h.roster = nil
	}
	if s == chat.StateLoggedOut {
		h.rooms = nil
	}
	h.broadcastLocked(m)
}

func (h *Hub) Rooms(rooms []*chat.RoomSummary) {
	views := make([]*RoomView, len(rooms))
	for i, r := range rooms {
		views[i] = &RoomView{RoomSummary: r, CanEnter: r.Available(), Lock: render.LockMessage(r.Allowed)}
	}

	h.Lock()
	defer h.Unlock()
	m := &ServerMsg{Type: FrameRooms, Rooms: views}
	h.rooms = m
	h.broadcastLocked(m)
}

func (h *Hub) Messages(room chat.RoomID, msgs []*chat.Message, opts chat.EmitOptions) {
	m := &ServerMsg{
		Type:     FrameMessages,
		Room:     room,
		Messages: render.DecorateAll(msgs, opts.Nick),
		Scroll:   opts.Scroll,
		Notify:   opts.Notify,
	}

	h.Lock()
	defer h.Unlock()
	h.broadcastLocked(m)
}

func (h *Hub) Roster(room chat.RoomID, users []*chat.User) {
	views := make([]*UserView, len(users))
	for i, u := range users {
		views[i] = &UserView{User: u, Label: render.UserLabel(u)}
	}

	h.Lock()
	defer h.Unlock()
	m := &ServerMsg{Type: FrameRoster, Room: room, Users: views}
	h.roster = m
	h.broadcastLocked(m)
}

func (h *Hub) Notice(n chat.Notice) {
	h.Lock()
	defer h.Unlock()

	m := &ServerMsg{Type: FrameNotice, Room: n.Room, Notice: &n}
	switch {
	case n.Kind != chat.NoticeMail && n.Kind != chat.NoticeFridge:
	case n.Active:
		h.notices[n.Kind] = m
	default:
		delete(h.notices, n.Kind)
	}
	h.broadcastLocked(m)
}

// Sessions is the number of connected front-ends.
func (h *Hub) Sessions() int {
	return h.hstore.count()
}

func getRemoteIP(r *http.Request) string {
	ip := r.Header.Get("X-REAL-IP")
	if ip == "" {
		if ips := r.Header.Get("X-FORWARDED-FOR"); ips != "" {
			slice := strings.Split(ips, ",")
			for _, x := range slice {
				if x != "" {
					ip = x
				}
			}
		}
	}
	if ip == "" {
		ip, _, _ = net.SplitHostPort(r.RemoteAddr)
	}

	return ip
}
