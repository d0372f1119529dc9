package store

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/golang/glog"
	"go.etcd.io/bbolt"
	"golang.org/x/net/publicsuffix"
)

const nickCookie = "nick"

var cookiesBucket = []byte("cookies")

// Jar is a cookie jar for one chat server whose cookies survive restarts.
// It also keeps the local nick in the `nick` cookie.
type Jar struct {
	sync.Mutex

	db    *bbolt.DB
	base  *url.URL
	inner *cookiejar.Jar
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func NewJar(db *bbolt.DB, base *url.URL) (*Jar, error) {
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	j := &Jar{db: db, base: base, inner: inner}
	if err := j.load(); err != nil {
		return nil, fmt.Errorf("load cookies: %w", err)
	}
	return j, nil
}

func (j *Jar) key() []byte {
	return []byte(j.base.Scheme + "://" + j.base.Host)
}

func (j *Jar) load() error {
	var stored []storedCookie
	if err := j.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(cookiesBucket)
		if err != nil {
			return err
		}
		if v := b.Get(j.key()); v != nil {
			return json.Unmarshal(v, &stored)
		}
		return nil
	}); err != nil {
		return err
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	j.inner.SetCookies(j.base, cookies)
	glog.V(5).Infof("jar: restored %d cookies of %s", len(cookies), j.key())
	return nil
}

func (j *Jar) persist() error {
	var stored []storedCookie
	for _, c := range j.inner.Cookies(j.base) {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}
	v, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return j.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(cookiesBucket).Put(j.key(), v)
	})
}

func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.Lock()
	defer j.Unlock()

	j.inner.SetCookies(u, cookies)
	if err := j.persist(); err != nil {
		glog.Errorf("jar: persist cookies: %v", err)
	}
}

func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.Lock()
	defer j.Unlock()
	return j.inner.Cookies(u)
}

// LoadNick returns the nick remembered from the last login.
func (j *Jar) LoadNick() string {
	for _, c := range j.Cookies(j.base) {
		if c.Name != nickCookie {
			continue
		}
		if nick, err := url.QueryUnescape(c.Value); err == nil {
			return nick
		}
		return c.Value
	}
	return ""
}

func (j *Jar) SaveNick(nick string) error {
	j.Lock()
	defer j.Unlock()

	j.inner.SetCookies(j.base, []*http.Cookie{{
		Name:    nickCookie,
		Value:   url.QueryEscape(nick),
		Path:    "/",
		Expires: time.Now().AddDate(1, 0, 0),
	}})
	return j.persist()
}
