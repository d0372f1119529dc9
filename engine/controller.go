package engine

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/pborman/uuid"

	"github.com/mqy/malicek/auth"
	"github.com/mqy/malicek/chat"
	"github.com/mqy/malicek/session"
	"github.com/mqy/malicek/transport"
)

// Controller drives the client through its lifecycle: login, room list,
// room, leave, logout. The embedded mutex serialises transitions and the
// application of poll results; transitions keep it across their network
// calls.
type Controller struct {
	sync.Mutex

	conf   Config
	tr     transport.IClient
	auth   auth.Client
	nicks  INickStore
	sink   chat.ISink
	sess   *session.Session
	poller *Poller
	rooms  *RoomDirectory
	status *StatusWatcher
	sched  *Scheduler

	state chat.State
	// epoch changes whenever the room context changes; in-flight work
	// captured under an older epoch is dropped.
	epoch      uint64
	baseCtx    context.Context
	roomCancel context.CancelFunc
	pollTask   *Task
	keepAlive  *Task
	interval   time.Duration
	quietUntil time.Time
	started    bool
}

// NewController wires a controller. nicks may be nil.
func NewController(conf Config, tr transport.IClient, authClient auth.Client, nicks INickStore, sink chat.ISink) *Controller {
	if conf.Clock == nil {
		conf.Clock = DefaultConfig().Clock
	}
	c := &Controller{
		conf:    conf,
		tr:      tr,
		auth:    authClient,
		nicks:   nicks,
		sink:    sink,
		sess:    session.New(""),
		sched:   NewScheduler(conf.Clock),
		state:   chat.StateLoggedOut,
		baseCtx: context.Background(),
	}
	c.poller = NewPoller(tr, c.sess, sink)
	c.rooms = NewRoomDirectory(tr, sink)
	c.status = NewStatusWatcher(tr, c.sched, conf.StatusInterval, c.notice)
	return c
}

// Start restores the previous session if the server still accepts it.
func (c *Controller) Start(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	if c.started {
		return fmt.Errorf("start: %w", ErrInvalidState)
	}
	c.started = true
	c.baseCtx = ctx
	c.status.Start(ctx)

	c.setState(chat.StateReconnecting)
	if c.nicks != nil {
		c.sess.Nick = c.nicks.LoadNick()
	}
	if err := c.auth.Probe(ctx); err != nil {
		glog.Infof("controller: no live session: %v", err)
		c.sess.Reset()
		c.setState(chat.StateLoggedOut)
		return nil
	}
	glog.Infof("controller: session of `%s` restored", c.sess.Nick)
	c.enterRoomListLocked(ctx)
	return nil
}

func (c *Controller) Login(ctx context.Context, user, pass string) error {
	c.Lock()
	defer c.Unlock()

	if c.state != chat.StateLoggedOut {
		return fmt.Errorf("login in state %s: %w", c.state, ErrInvalidState)
	}
	c.setState(chat.StateLoggingIn)
	if err := c.auth.Login(ctx, auth.Credentials{User: user, Pass: pass}); err != nil {
		c.setState(chat.StateLoggedOut)
		c.sink.Notice(chat.Notice{Kind: chat.NoticeLoginFailed, Active: true})
		return err
	}

	c.sess.Nick = user
	if c.nicks != nil {
		if err := c.nicks.SaveNick(user); err != nil {
			glog.Errorf("controller: save nick: %v", err)
		}
	}
	c.enterRoomListLocked(ctx)
	return nil
}

// ListRooms refreshes the room directory on demand.
func (c *Controller) ListRooms(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	if c.state != chat.StateRoomList {
		return fmt.Errorf("list rooms in state %s: %w", c.state, ErrInvalidState)
	}
	c.listRoomsLocked(ctx)
	return nil
}

func (c *Controller) Enter(ctx context.Context, room chat.RoomID) error {
	c.Lock()
	defer c.Unlock()

	if room == "" {
		return ErrNoRoom
	}
	if c.state != chat.StateRoomList {
		return fmt.Errorf("enter in state %s: %w", c.state, ErrInvalidState)
	}

	c.epoch++
	epoch := c.epoch
	c.sess.EnterRoom(room)
	var roomCtx context.Context
	roomCtx, c.roomCancel = context.WithCancel(c.baseCtx)
	c.quietUntil = c.conf.Clock.Now().Add(c.conf.QuietPeriod)
	c.setState(chat.StateInRoom)
	glog.Infof("controller: entered room %s", room)

	st, class := c.poller.Fetch(ctx, room)
	if !c.applyLocked(epoch, room, st, class, true) {
		return nil
	}

	c.interval = c.conf.PollInterval
	if s, ok := c.rooms.Settings(ctx, room); ok {
		c.sess.Color = s.Color
		c.interval = refreshInterval(s.Refresh, c.conf.MinPollInterval)
	}

	c.pollTask = c.sched.Every(roomCtx, "poll", c.interval, func(tctx context.Context) {
		c.pollTick(tctx, epoch, room)
	})
	c.keepAlive = c.sched.Every(roomCtx, "keep-alive", c.conf.KeepAlive, func(tctx context.Context) {
		c.keepAliveTick(tctx, epoch, room)
	})
	return nil
}

func (c *Controller) Leave(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	if c.state != chat.StateInRoom {
		return fmt.Errorf("leave in state %s: %w", c.state, ErrInvalidState)
	}
	c.leaveLocked(ctx, true)
	return nil
}

func (c *Controller) Logout(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	c.logoutLocked(ctx, true)
	return nil
}

// Post sends a composer entry to the current room and polls right after.
func (c *Controller) Post(ctx context.Context, entry string) error {
	c.Lock()
	if c.state != chat.StateInRoom {
		state := c.state
		c.Unlock()
		return fmt.Errorf("post in state %s: %w", state, ErrInvalidState)
	}
	room, color, epoch := c.sess.Room, c.sess.Color, c.epoch
	users := c.sess.CopyUsers()
	c.Unlock()

	to, body, err := chat.ParseEntry(entry, users)
	if err != nil {
		return err
	}
	out := c.tr.Do(ctx, http.MethodPost, roomPath(room), chat.NewPost(to, color, body))
	if !out.OK() {
		glog.Warningf("controller: post to room %s: %s", room, out)
	}
	c.pollOnce(ctx, epoch, room, false)
	return nil
}

// PollNow polls the current room outside the schedule.
func (c *Controller) PollNow(ctx context.Context, scroll bool) error {
	c.Lock()
	if c.state != chat.StateInRoom {
		state := c.state
		c.Unlock()
		return fmt.Errorf("poll in state %s: %w", state, ErrInvalidState)
	}
	room, epoch := c.sess.Room, c.epoch
	c.Unlock()

	c.pollOnce(ctx, epoch, room, scroll)
	return nil
}

func (c *Controller) PlayFridge(ctx context.Context) error {
	if out := c.status.PlayFridge(ctx); !out.OK() {
		return fmt.Errorf("fridge: %s", out)
	}
	return nil
}

func (c *Controller) ReadMail() {
	c.status.ReadMail()
}

// Close stops every periodic task and waits for them to exit.
func (c *Controller) Close() {
	c.Lock()
	c.stopRoomLocked()
	c.status.Stop()
	c.Unlock()

	c.sched.Wait()
}

func (c *Controller) State() chat.State {
	c.Lock()
	defer c.Unlock()
	return c.state
}

func (c *Controller) Room() chat.RoomID {
	c.Lock()
	defer c.Unlock()
	return c.sess.Room
}

func (c *Controller) Nick() string {
	c.Lock()
	defer c.Unlock()
	return c.sess.Nick
}

// PollInterval is the period of the running poll task, 0 if none.
func (c *Controller) PollInterval() time.Duration {
	c.Lock()
	defer c.Unlock()
	if c.pollTask == nil {
		return 0
	}
	return c.interval
}

func (c *Controller) pollOnce(ctx context.Context, epoch uint64, room chat.RoomID, scroll bool) {
	st, class := c.poller.Fetch(ctx, room)

	c.Lock()
	defer c.Unlock()
	c.applyLocked(epoch, room, st, class, scroll)
}

func (c *Controller) pollTick(ctx context.Context, epoch uint64, room chat.RoomID) {
	st, class := c.poller.Fetch(ctx, room)
	if ctx.Err() != nil {
		return
	}

	c.Lock()
	defer c.Unlock()
	c.applyLocked(epoch, room, st, class, false)
}

// applyLocked handles one poll result and reports whether we are still in
// the room afterwards.
func (c *Controller) applyLocked(epoch uint64, room chat.RoomID, st *chat.RoomState, class PollClass, scroll bool) bool {
	if epoch != c.epoch || room != c.sess.Room {
		pollsTotal.WithLabelValues("stale").Inc()
		glog.V(5).Infof("controller: dropped stale poll of room %s", room)
		return false
	}
	pollsTotal.WithLabelValues(class.String()).Inc()

	switch class {
	case PollOK:
		c.poller.Apply(room, st, chat.EmitOptions{
			Scroll: scroll,
			Notify: !c.conf.Clock.Now().Before(c.quietUntil),
			Nick:   c.sess.Nick,
		})
	case PollSessionInvalid:
		c.forceLogoutLocked(c.baseCtx)
		return false
	case PollAccessDenied:
		glog.Warningf("controller: access to room %s denied", room)
		c.sink.Notice(chat.Notice{Kind: chat.NoticeAccessDenied, Active: true, Room: room})
		c.leaveLocked(c.baseCtx, true)
		return false
	}
	return true
}

func (c *Controller) keepAliveTick(ctx context.Context, epoch uint64, room chat.RoomID) {
	c.Lock()
	if epoch != c.epoch {
		c.Unlock()
		return
	}
	color := c.sess.Color
	c.Unlock()

	body := fmt.Sprintf("[malíček - keep-alive message - %s]", uuid.New())
	out := c.tr.Do(ctx, http.MethodPost, roomPath(room), chat.NewPost(chat.ToKeepAlive, color, body))
	if out.OK() {
		keepAlivesTotal.WithLabelValues("ok").Inc()
		return
	}
	keepAlivesTotal.WithLabelValues("failed").Inc()
	glog.Warningf("controller: keep-alive in room %s: %s", room, out)
}

func (c *Controller) setState(s chat.State) {
	if c.state == s {
		return
	}
	glog.V(5).Infof("controller: %s -> %s", c.state, s)
	c.state = s
	transitionsTotal.WithLabelValues(s.String()).Inc()
	c.sink.State(s)
}

func (c *Controller) notice(n chat.Notice) {
	c.Lock()
	defer c.Unlock()
	c.sink.Notice(n)
}

func (c *Controller) enterRoomListLocked(ctx context.Context) {
	c.setState(chat.StateRoomList)
	c.listRoomsLocked(ctx)
}

func (c *Controller) listRoomsLocked(ctx context.Context) {
	if c.rooms.List(ctx) == ListSessionInvalid {
		c.forceLogoutLocked(ctx)
	}
}

func (c *Controller) stopRoomLocked() {
	c.pollTask.Stop()
	c.keepAlive.Stop()
	c.pollTask, c.keepAlive = nil, nil
	if c.roomCancel != nil {
		c.roomCancel()
		c.roomCancel = nil
	}
}

// leaveLocked tells the server we left and waits for its answer before the
// room is forgotten locally.
func (c *Controller) leaveLocked(ctx context.Context, toRoomList bool) {
	room := c.sess.Room
	c.stopRoomLocked()
	c.epoch++
	c.sess.ClearUsers()
	c.setState(chat.StateLeaving)

	out := c.tr.Do(ctx, http.MethodPost, roomPath(room), chat.NewLeave())
	if !out.OK() {
		glog.Warningf("controller: leave room %s: %s", room, out)
	}
	c.sess.ClearRoom()
	c.sink.Roster(room, nil)
	glog.Infof("controller: left room %s", room)

	if toRoomList {
		c.enterRoomListLocked(ctx)
	}
}

func (c *Controller) logoutLocked(ctx context.Context, invalidate bool) {
	if c.sess.InRoom() {
		c.leaveLocked(ctx, false)
	}
	c.stopRoomLocked()
	if invalidate {
		if err := c.auth.Logout(ctx); err != nil {
			glog.Warningf("controller: logout: %v", err)
		}
	}
	c.sess.Reset()
	c.setState(chat.StateLoggedOut)
}

func (c *Controller) forceLogoutLocked(ctx context.Context) {
	forcedLogoutsTotal.Inc()
	glog.Warningf("controller: session of `%s` rejected by server, logging out", c.sess.Nick)
	c.logoutLocked(ctx, false)
}
