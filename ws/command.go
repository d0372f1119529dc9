package ws

import (
	"context"
	"errors"

	"github.com/golang/glog"

	"github.com/mqy/malicek/chat"
	"github.com/mqy/malicek/engine"
)

const (
	MinHistoryLimit = 25
	MaxHistoryLimit = 100

	ErrorCodeInvalidArguments   = 3
	ErrorCodeFailedPrecondition = 9
	ErrorCodeUnimplemented      = 12
	ErrorCodeInternal           = 13
)

func isKnownCmd(c Cmd) bool {
	switch c {
	case CmdLogin, CmdRooms, CmdEnter, CmdLeave, CmdLogout, CmdPost, CmdPoll, CmdFridge, CmdMail, CmdHistory, CmdRecipient:
		return true
	}
	return false
}

// dispatch runs one command. It returns the direct reply, if any; state
// changes reach the session through the sink methods.
func (h *Hub) dispatch(ctx context.Context, req *ClientMsg) *ServerMsg {
	var err error
	switch req.Cmd {
	case CmdLogin:
		err = h.cmd.Login(ctx, req.User, req.Pass)
	case CmdRooms:
		err = h.cmd.ListRooms(ctx)
	case CmdEnter:
		if req.Room == "" {
			return errorMsg(newInvalidArgumentError(req, "room: required"))
		}
		err = h.cmd.Enter(ctx, req.Room)
	case CmdLeave:
		err = h.cmd.Leave(ctx)
	case CmdLogout:
		err = h.cmd.Logout(ctx)
	case CmdPost:
		err = h.cmd.Post(ctx, req.Text)
	case CmdPoll:
		err = h.cmd.PollNow(ctx, req.Scroll)
	case CmdFridge:
		err = h.cmd.PlayFridge(ctx)
	case CmdMail:
		h.cmd.ReadMail()
	case CmdHistory:
		return h.history(ctx, req)
	case CmdRecipient:
		if req.Nick == "" {
			return errorMsg(newInvalidArgumentError(req, "nick: required"))
		}
		return &ServerMsg{Type: FrameEntry, Entry: chat.ToggleRecipient(req.Text, req.Nick)}
	}

	if err != nil {
		glog.Warningf("command `%s` failed: %v", req.Cmd, err)
		return errorMsg(commandError(req, err))
	}
	return nil
}

func (h *Hub) history(ctx context.Context, req *ClientMsg) *ServerMsg {
	if h.archive == nil {
		return errorMsg(&Error{Code: ErrorCodeUnimplemented, Params: []string{"archive is disabled"}, Req: req})
	}
	if req.Room == "" {
		return errorMsg(newInvalidArgumentError(req, "room: required"))
	}

	limit := req.Limit
	if limit < MinHistoryLimit {
		limit = MinHistoryLimit
	} else if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	recs, err := h.archive.Recent(ctx, req.Room, limit)
	if err != nil {
		glog.Errorf("history of room %s: %v", req.Room, err)
		e := newInternalError(req, err.Error())
		interceptError(e)
		return errorMsg(e)
	}
	return &ServerMsg{Type: FrameHistory, Room: req.Room, Records: recs}
}

func commandError(req *ClientMsg, err error) *Error {
	switch {
	case errors.Is(err, engine.ErrInvalidState):
		return &Error{Code: ErrorCodeFailedPrecondition, Params: []string{err.Error()}, Req: redact(req)}
	case errors.Is(err, chat.ErrUnknownRecipient), errors.Is(err, engine.ErrNoRoom):
		return newInvalidArgumentError(redact(req), err.Error())
	default:
		return newInternalError(redact(req), err.Error())
	}
}

// redact drops the password before a request is echoed back.
func redact(req *ClientMsg) *ClientMsg {
	out := *req
	out.Pass = ""
	return &out
}

func errorMsg(e *Error) *ServerMsg {
	return &ServerMsg{Type: FrameError, Error: e}
}

func newInvalidArgumentError(req *ClientMsg, errs ...string) *Error {
	return &Error{
		Code:   ErrorCodeInvalidArguments,
		Params: errs,
		Req:    req,
	}
}

func newInternalError(req *ClientMsg, err string) *Error {
	return &Error{
		Code:   ErrorCodeInternal,
		Params: []string{err},
		Req:    req,
	}
}

func interceptError(err *Error) {
	if err.Code == ErrorCodeInternal {
		err.Params = []string{"temp storage error"}
	}
}
