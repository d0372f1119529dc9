package store

import (
	"net/http"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func TestJarPersistsCookies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "malicek.db")
	base, err := url.Parse("https://chat.example.cz")
	require.NoError(t, err)

	db, err := bbolt.Open(path, 0600, nil)
	require.NoError(t, err)
	j, err := NewJar(db, base)
	require.NoError(t, err)
	assert.Empty(t, j.LoadNick())

	api, _ := url.Parse("https://chat.example.cz/api/login")
	j.SetCookies(api, []*http.Cookie{{Name: "sid", Value: "abc", Path: "/"}})
	require.NoError(t, j.SaveNick("Žofka Nová"))
	assert.Equal(t, "Žofka Nová", j.LoadNick())
	require.NoError(t, db.Close())

	db, err = bbolt.Open(path, 0600, nil)
	require.NoError(t, err)
	defer db.Close()
	j, err = NewJar(db, base)
	require.NoError(t, err)

	assert.Equal(t, "Žofka Nová", j.LoadNick())
	names := map[string]string{}
	for _, c := range j.Cookies(api) {
		names[c.Name] = c.Value
	}
	assert.Equal(t, "abc", names["sid"])

	other, _ := url.Parse("https://other.example.cz/")
	assert.Empty(t, j.Cookies(other))
}
