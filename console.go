package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/glog"

	"github.com/mqy/malicek/chat"
	"github.com/mqy/malicek/render"
	"github.com/mqy/malicek/store"
	"github.com/mqy/malicek/ws"
)

const consoleHistoryLimit = 25

const consoleHelp = `commands:
  /login <user> <pass>   log in
  /logout                log out
  /rooms                 refresh the room list
  /join <room>           enter a room
  /leave                 leave the room
  /pm <nick> <text>      private message
  /poll                  poll the room now
  /fridge                play the fridge game
  /mail                  mark mail as read
  /history [n]           show archived messages of the room
  /help                  this text
anything else is posted to the room`

// consoleSink prints engine updates as plain text lines.
type consoleSink struct {
	sync.Mutex
	w    io.Writer
	room chat.RoomID
}

func newConsoleSink(w io.Writer) *consoleSink {
	return &consoleSink{w: w}
}

func (c *consoleSink) printf(format string, args ...interface{}) {
	c.Lock()
	defer c.Unlock()
	fmt.Fprintf(c.w, format+"\n", args...)
}

func (c *consoleSink) State(s chat.State) {
	c.printf("-- %s", s)
}

func (c *consoleSink) Rooms(rooms []*chat.RoomSummary) {
	c.Lock()
	defer c.Unlock()
	for _, r := range rooms {
		if !r.Available() {
			fmt.Fprintf(c.w, "   %-6s %s (%d) %s\n", "-", r.Name, len(r.Users), render.LockMessage(r.Allowed))
			continue
		}
		fmt.Fprintf(c.w, "   %-6s %s (%d) %s\n", r.ID, r.Name, len(r.Users), render.LockMessage(r.Allowed))
	}
}

func (c *consoleSink) Messages(room chat.RoomID, msgs []*chat.Message, opts chat.EmitOptions) {
	c.Lock()
	defer c.Unlock()
	c.room = room
	for _, m := range msgs {
		v := render.Decorate(m, opts.Nick)
		mark := " "
		if opts.Notify && v.Alarm && !v.Mine {
			mark = "!"
		}
		fmt.Fprintf(c.w, "%s %s\n", mark, render.Text(m))
	}
}

func (c *consoleSink) Roster(room chat.RoomID, users []*chat.User) {
	labels := make([]string, 0, len(users))
	for _, u := range users {
		labels = append(labels, strings.TrimSpace(render.UserLabel(u)))
	}
	if len(labels) > 0 {
		glog.V(5).Infof("console: room %s: %s", room, strings.Join(labels, ", "))
	}
}

func (c *consoleSink) Notice(n chat.Notice) {
	switch n.Kind {
	case chat.NoticeLoginFailed:
		c.printf("-- login failed")
	case chat.NoticeAccessDenied:
		c.printf("-- access to room %s denied", n.Room)
	case chat.NoticeMail:
		if n.Active {
			c.printf("-- new mail")
		}
	case chat.NoticeFridge:
		if n.Active {
			c.printf("-- fridge is open, /fridge to play")
		}
	}
}

func (c *consoleSink) currentRoom() chat.RoomID {
	c.Lock()
	defer c.Unlock()
	return c.room
}

// readCommands runs console commands read line by line from r until EOF or
// ctx is done.
func (c *consoleSink) readCommands(ctx context.Context, r io.Reader, cmd ws.ICommander, archive store.IArchive) {
	scanner := bufio.NewScanner(r)
	for ctx.Err() == nil && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := c.execute(ctx, line, cmd, archive); err != nil {
			c.printf("-- error: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		glog.Errorf("console: read: %v", err)
	}
}

func (c *consoleSink) execute(ctx context.Context, line string, cmd ws.ICommander, archive store.IArchive) error {
	if !strings.HasPrefix(line, "/") {
		return cmd.Post(ctx, line)
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/login":
		if len(fields) != 3 {
			return fmt.Errorf("usage: /login <user> <pass>")
		}
		return cmd.Login(ctx, fields[1], fields[2])
	case "/logout":
		return cmd.Logout(ctx)
	case "/rooms":
		return cmd.ListRooms(ctx)
	case "/join":
		if len(fields) != 2 {
			return fmt.Errorf("usage: /join <room>")
		}
		return cmd.Enter(ctx, chat.RoomID(fields[1]))
	case "/leave":
		return cmd.Leave(ctx)
	case "/pm":
		parts := strings.SplitN(line, " ", 3)
		if len(parts) != 3 || parts[1] == "" {
			return fmt.Errorf("usage: /pm <nick> <text>")
		}
		entry := chat.ToggleRecipient(chat.ToggleRecipient(parts[2], parts[1]), parts[1])
		return cmd.Post(ctx, entry)
	case "/poll":
		return cmd.PollNow(ctx, true)
	case "/fridge":
		return cmd.PlayFridge(ctx)
	case "/mail":
		cmd.ReadMail()
		return nil
	case "/history":
		return c.history(ctx, fields[1:], archive)
	case "/help":
		c.printf("%s", consoleHelp)
		return nil
	default:
		return fmt.Errorf("unknown command `%s`, /help for help", fields[0])
	}
}

func (c *consoleSink) history(ctx context.Context, args []string, archive store.IArchive) error {
	if archive == nil {
		return fmt.Errorf("archive is disabled")
	}
	room := c.currentRoom()
	if room == "" {
		return fmt.Errorf("no room yet")
	}

	limit := consoleHistoryLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("usage: /history [n]")
		}
		limit = n
	}

	recs, err := archive.Recent(ctx, room, limit)
	if err != nil {
		return err
	}

	c.Lock()
	defer c.Unlock()
	for i := len(recs) - 1; i >= 0; i-- {
		fmt.Fprintf(c.w, "  %s\n", render.Text(recs[i].Message))
	}
	return nil
}
