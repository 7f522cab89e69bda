package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTrip checks the Document contract shared by all backends.
func roundTrip(t *testing.T, doc Document) {
	t.Helper()
	ctx := context.Background()

	_, err := doc.Read(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, doc.Write(ctx, []byte(`{"income": 1.00}`)))
	require.NoError(t, doc.Write(ctx, []byte(`{"income": 2.00}`)))

	data, err := doc.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"income": 2.00}`, string(data))
}

func TestJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "budget_data.json")

	roundTrip(t, NewJSONFile(path))

	// the temp file used for the atomic write is gone
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestJSONFileBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget_data.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	f := NewJSONFile(path)
	target, err := f.Backup(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(target, path+".bak-"))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "not json", string(data))
}

func TestMemory(t *testing.T) {
	roundTrip(t, NewMemory())
}

func TestMemoryFailWrites(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Write(context.Background(), []byte("old")))

	m.FailWrites = os.ErrPermission
	assert.ErrorIs(t, m.Write(context.Background(), []byte("new")), os.ErrPermission)

	data, err := m.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.db")

	db, err := NewSQLite(path)
	require.NoError(t, err)
	roundTrip(t, db)
	require.NoError(t, db.Close())

	// migrations are idempotent and data survives a reopen
	db, err = NewSQLite(path)
	require.NoError(t, err)
	defer db.Close()

	data, err := db.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"income": 2.00}`, string(data))

	target, err := db.Backup(context.Background())
	require.NoError(t, err)
	names, err := db.Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{defaultDocument, target}, names)
}

func TestEncrypted(t *testing.T) {
	inner := NewMemory()
	enc, err := NewEncrypted(inner, strings.Repeat("k", 32), strings.Repeat("s", 32))
	require.NoError(t, err)

	roundTrip(t, enc)

	raw, err := inner.Read(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "income")

	other, err := NewEncrypted(inner, strings.Repeat("x", 32), strings.Repeat("y", 32))
	require.NoError(t, err)
	_, err = other.Read(context.Background())
	assert.Error(t, err)
}

func TestEncryptedBackupNeedsSupport(t *testing.T) {
	enc, err := NewEncrypted(NewMemory(), strings.Repeat("k", 32), strings.Repeat("s", 32))
	require.NoError(t, err)
	_, err = enc.Backup(context.Background())
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	doc, err := Open("jsonfile:" + filepath.Join(dir, "a.json"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.json"), doc.(*JSONFile).Path())

	doc, err = Open(filepath.Join(dir, "b.json"))
	require.NoError(t, err)
	assert.IsType(t, &JSONFile{}, doc)

	doc, err = Open("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPath(), doc.(*JSONFile).Path())

	doc, err = Open("memory:")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, doc)

	doc, err = Open("sqlite:" + filepath.Join(dir, "c.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, doc)
	doc.Close()

	_, err = Open("sqlite:")
	assert.Error(t, err)

	_, err = Open("es8:http://localhost:9200")
	assert.Error(t, err)
}

func TestOpenRedisUnreachable(t *testing.T) {
	_, err := Open("redis:127.0.0.1:1")
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	assert.Equal(t, filepath.Join(home, "x.json"), expandHome("~/x.json"))
	assert.Equal(t, "/tmp/x.json", expandHome("/tmp/x.json"))
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	doc, err := NewRedis(mr.Addr())
	require.NoError(t, err)
	defer doc.Close()

	roundTrip(t, doc)

	stored, err := mr.Get(redisKey)
	require.NoError(t, err)
	assert.Equal(t, `{"income": 2.00}`, stored)
}

func TestRedisBackup(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set(redisKey, "not json"))

	doc, err := Open("redis:redis://" + mr.Addr())
	require.NoError(t, err)
	defer doc.Close()

	target, err := doc.(Backuper).Backup(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(target, redisKey+":bak-"))

	copied, err := mr.Get(target)
	require.NoError(t, err)
	assert.Equal(t, "not json", copied)

	// the original is still there
	data, err := doc.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "not json", string(data))
}
