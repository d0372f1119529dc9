package engine

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/mqy/malicek/chat"
	"github.com/mqy/malicek/transport"
)

const (
	statusPath = "/api/status"
	fridgePath = "/api/games/lednicka"
)

// StatusWatcher polls the mail and fridge game flags. A flag, once raised,
// is not polled again until the user acts on it.
type StatusWatcher struct {
	sync.Mutex

	tr       transport.IClient
	sched    *Scheduler
	interval time.Duration
	emit     func(chat.Notice)

	mail   bool
	fridge bool
	task   *Task
}

func NewStatusWatcher(tr transport.IClient, sched *Scheduler, interval time.Duration, emit func(chat.Notice)) *StatusWatcher {
	return &StatusWatcher{tr: tr, sched: sched, interval: interval, emit: emit}
}

func (w *StatusWatcher) Start(ctx context.Context) {
	w.Lock()
	defer w.Unlock()
	if w.task == nil {
		w.task = w.sched.Every(ctx, "status", w.interval, w.Check)
	}
}

func (w *StatusWatcher) Stop() {
	w.Lock()
	defer w.Unlock()
	w.task.Stop()
	w.task = nil
}

// Check runs one round of flag polls.
func (w *StatusWatcher) Check(ctx context.Context) {
	w.Lock()
	mail, fridge := w.mail, w.fridge
	w.Unlock()

	if !mail {
		var v struct {
			Mail bool `json:"mail"`
		}
		if w.get(ctx, statusPath, &v) && v.Mail {
			w.raise(chat.NoticeMail, &w.mail)
		}
	}
	if !fridge {
		var v struct {
			Active bool `json:"active"`
		}
		if w.get(ctx, fridgePath, &v) && v.Active {
			w.raise(chat.NoticeFridge, &w.fridge)
		}
	}
}

func (w *StatusWatcher) get(ctx context.Context, path string, v interface{}) bool {
	out := w.tr.Do(ctx, http.MethodGet, path, nil)
	if !out.OK() {
		glog.V(5).Infof("status: %s: %s", path, out)
		return false
	}
	if err := out.Decode(v); err != nil {
		glog.V(5).Infof("status: %s: %v", path, err)
		return false
	}
	return true
}

func (w *StatusWatcher) raise(kind chat.NoticeKind, flag *bool) {
	w.Lock()
	already := *flag
	*flag = true
	w.Unlock()
	if !already {
		w.emit(chat.Notice{Kind: kind, Active: true})
	}
}

func (w *StatusWatcher) clear(kind chat.NoticeKind, flag *bool) {
	w.Lock()
	was := *flag
	*flag = false
	w.Unlock()
	if was {
		w.emit(chat.Notice{Kind: kind, Active: false})
	}
}

// PlayFridge takes the fridge turn. The flag is cleared whatever the
// server answers.
func (w *StatusWatcher) PlayFridge(ctx context.Context) transport.Outcome {
	out := w.tr.Do(ctx, http.MethodPost, fridgePath, nil)
	if !out.OK() {
		glog.Warningf("status: fridge: %s", out)
	}
	w.clear(chat.NoticeFridge, &w.fridge)
	return out
}

// ReadMail acknowledges the mail notice.
func (w *StatusWatcher) ReadMail() {
	w.clear(chat.NoticeMail, &w.mail)
}

func (w *StatusWatcher) Flags() (mail, fridge bool) {
	w.Lock()
	defer w.Unlock()
	return w.mail, w.fridge
}
