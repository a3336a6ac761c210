package daemon

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/berrythewa/clipman/internal/clipboard"
	"github.com/berrythewa/clipman/internal/config"
	"github.com/berrythewa/clipman/internal/ipc"
	"github.com/berrythewa/clipman/internal/storage"
	"github.com/berrythewa/clipman/internal/types"
)

// fakeClipboard holds one text payload.
type fakeClipboard struct {
	mu     sync.Mutex
	text   string
	writes []types.ClipboardContent
}

func (f *fakeClipboard) Name() string { return "fake" }

func (f *fakeClipboard) ReadCurrent(context.Context) (*clipboard.RawPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &clipboard.RawPayload{}
	p.Add(clipboard.MIMEText, []byte(f.text))
	return p, nil
}

func (f *fakeClipboard) Write(_ context.Context, c types.ClipboardContent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, c)
	f.text = c.Text()
	return nil
}

func (f *fakeClipboard) set(s string) {
	f.mu.Lock()
	f.text = s
	f.mu.Unlock()
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir, err := os.MkdirTemp("", "cmd")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	cfg := config.DefaultConfig()
	cfg.SystemPaths = config.ConfigPaths{
		BaseDir:      dir,
		ActiveDir:    filepath.Join(dir, "active"),
		ActiveConfig: filepath.Join(dir, "active", "config.yaml"),
		DataDir:      dir,
		HistoryFile:  filepath.Join(dir, "history.jsonl"),
		DBFile:       filepath.Join(dir, "clipman.db"),
		SQLiteFile:   filepath.Join(dir, "clipman.sqlite"),
		LogDir:       filepath.Join(dir, "logs"),
		LockFile:     filepath.Join(dir, "clipman.lock"),
		SocketPath:   filepath.Join(dir, "s.sock"),
	}
	cfg.History.Capacity = 3
	cfg.Monitor.PollInterval = time.Second
	return cfg
}

func newTestDaemon(t *testing.T, cfg *config.Config) (*Daemon, *fakeClipboard, *clock.Mock) {
	t.Helper()
	clip := &fakeClipboard{}
	mc := clock.NewMock()
	mc.Set(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	d, err := New(cfg, zaptest.NewLogger(t), Options{Clipboard: clip, Clock: mc})
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d, clip, mc
}

func call(t *testing.T, d *Daemon, cmd string, args any) *ipc.Response {
	t.Helper()
	req, err := ipc.NewRequest(cmd, args)
	require.NoError(t, err)
	return d.Handle(context.Background(), req)
}

func entries(t *testing.T, resp *ipc.Response) []ipc.HistoryEntry {
	t.Helper()
	require.Equal(t, ipc.StatusOK, resp.Status, resp.Message)
	var out []ipc.HistoryEntry
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	return out
}

func texts(es []ipc.HistoryEntry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Text
	}
	return out
}

func TestHandle_HistoryFilters(t *testing.T) {
	d, _, _ := newTestDaemon(t, testConfig(t))

	d.store.InsertOrTouch(types.NewText("alpha"))
	d.store.InsertOrTouch(types.NewFiles([]string{"/tmp/Alpha.txt"}))
	id, _ := d.store.InsertOrTouch(types.NewText("beta"))
	d.store.Pin(id)

	all := entries(t, call(t, d, ipc.CmdHistory, nil))
	assert.Len(t, all, 3)
	assert.Equal(t, "beta", all[0].Text)

	limited := entries(t, call(t, d, ipc.CmdHistory, ipc.HistoryArgs{Limit: 1}))
	assert.Len(t, limited, 1)

	byQuery := entries(t, call(t, d, ipc.CmdHistory, ipc.HistoryArgs{Query: "ALPHA"}))
	assert.Len(t, byQuery, 2)

	textOnly := entries(t, call(t, d, ipc.CmdHistory, ipc.HistoryArgs{Query: "alpha", Kind: types.KindText}))
	assert.Equal(t, []string{"alpha"}, texts(textOnly))

	pinned := entries(t, call(t, d, ipc.CmdHistory, ipc.HistoryArgs{Pinned: true}))
	assert.Equal(t, []string{"beta"}, texts(pinned))

	byRegex := entries(t, call(t, d, ipc.CmdHistory, ipc.HistoryArgs{Regex: "^b"}))
	assert.Equal(t, []string{"beta"}, texts(byRegex))

	resp := call(t, d, ipc.CmdHistory, ipc.HistoryArgs{Kind: "html"})
	assert.Equal(t, ipc.StatusError, resp.Status)
	resp = call(t, d, ipc.CmdHistory, ipc.HistoryArgs{Regex: "("})
	assert.Equal(t, ipc.StatusError, resp.Status)
}

func TestHandle_PinUnpinDelete(t *testing.T) {
	d, _, _ := newTestDaemon(t, testConfig(t))

	id, _ := d.store.InsertOrTouch(types.NewText("keep me"))

	assert.Equal(t, ipc.StatusOK, call(t, d, ipc.CmdPin, ipc.IDArgs{ID: uint64(id)}).Status)
	it, _ := d.store.Get(id)
	assert.True(t, it.Pinned)

	assert.Equal(t, ipc.StatusOK, call(t, d, ipc.CmdUnpin, ipc.IDArgs{ID: uint64(id)}).Status)
	it, _ = d.store.Get(id)
	assert.False(t, it.Pinned)

	assert.Equal(t, ipc.StatusOK, call(t, d, ipc.CmdDelete, ipc.IDArgs{ID: uint64(id)}).Status)
	assert.Equal(t, 0, d.store.Len())

	for _, cmd := range []string{ipc.CmdPin, ipc.CmdUnpin, ipc.CmdDelete, ipc.CmdCopy} {
		assert.Equal(t, ipc.StatusNotFound, call(t, d, cmd, ipc.IDArgs{ID: 99}).Status, cmd)
	}

	resp := d.Handle(context.Background(), &ipc.Request{Command: ipc.CmdPin, Args: json.RawMessage(`"x"`)})
	assert.Equal(t, ipc.StatusError, resp.Status)
	assert.Equal(t, ipc.StatusError, call(t, d, "bogus", nil).Status)
}

func TestHandle_ClearKeepsPinned(t *testing.T) {
	d, _, _ := newTestDaemon(t, testConfig(t))

	d.store.InsertOrTouch(types.NewText("a"))
	id, _ := d.store.InsertOrTouch(types.NewText("b"))
	d.store.InsertOrTouch(types.NewText("c"))
	d.store.Pin(id)

	resp := call(t, d, ipc.CmdClear, nil)
	require.Equal(t, ipc.StatusOK, resp.Status)
	var res ipc.ClearResult
	require.NoError(t, json.Unmarshal(resp.Data, &res))
	assert.Equal(t, 2, res.Removed)
	assert.Equal(t, []string{"b"}, texts(entries(t, call(t, d, ipc.CmdHistory, nil))))
}

func TestHandle_CopyIsNotRecordedAgain(t *testing.T) {
	d, clip, mc := newTestDaemon(t, testConfig(t))
	ctx := context.Background()

	clip.set("first")
	require.True(t, d.monitor.Poll(ctx))
	mc.Add(time.Second)
	clip.set("second")
	require.True(t, d.monitor.Poll(ctx))

	first := entries(t, call(t, d, ipc.CmdHistory, nil))[1]
	require.Equal(t, "first", first.Text)

	mc.Add(time.Second)
	require.Equal(t, ipc.StatusOK, call(t, d, ipc.CmdCopy, ipc.IDArgs{ID: first.ID}).Status)
	require.Len(t, clip.writes, 1)
	assert.Equal(t, "first", clip.writes[0].Text())

	// The copied entry is now on the clipboard; polling must not touch it.
	assert.False(t, d.monitor.Poll(ctx))
	list := entries(t, call(t, d, ipc.CmdHistory, nil))
	assert.Equal(t, []string{"first", "second"}, texts(list))
	assert.Equal(t, first.ID, list[0].ID)
}

func TestHandle_StatusAndFlush(t *testing.T) {
	cfg := testConfig(t)
	d, _, _ := newTestDaemon(t, cfg)

	d.store.InsertOrTouch(types.NewText("persist me"))

	resp := call(t, d, ipc.CmdStatus, nil)
	require.Equal(t, ipc.StatusOK, resp.Status)
	var st ipc.StatusInfo
	require.NoError(t, json.Unmarshal(resp.Data, &st))
	assert.Equal(t, os.Getpid(), st.PID)
	assert.Equal(t, "fake", st.Clipboard)
	assert.Equal(t, "file", st.StorageBackend)
	assert.Equal(t, cfg.SystemPaths.HistoryFile, st.StoragePath)
	assert.Equal(t, 1, st.Entries)
	assert.Equal(t, 3, st.Capacity)

	require.Equal(t, ipc.StatusOK, call(t, d, ipc.CmdFlush, nil).Status)
	items, err := d.backend.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "persist me", items[0].Content.Text())
}

func TestNew_InvalidExcludePattern(t *testing.T) {
	cfg := testConfig(t)
	cfg.Monitor.ExcludePatterns = []string{"("}
	_, err := New(cfg, zaptest.NewLogger(t), Options{Clipboard: &fakeClipboard{}})
	assert.Error(t, err)
	_, err = os.Stat(cfg.SystemPaths.LockFile)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_RestoresServesAndSavesOnShutdown(t *testing.T) {
	cfg := testConfig(t)

	// Seed a previous session.
	seed, err := storage.NewFileBackend(cfg.SystemPaths.HistoryFile, storage.Options{})
	require.NoError(t, err)
	old := types.NewText("from last session")
	require.NoError(t, seed.Save(context.Background(), []types.ClipboardItem{{
		ID: 10, Content: old, Hash: old.Hash(),
		CreatedAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), LastSeenAt: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Pinned: true,
	}}))

	d, clip, _ := newTestDaemon(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	client := ipc.NewClient(cfg.SocketPath())
	require.Eventually(t, func() bool {
		_, err := client.Status(context.Background())
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	// A second instance must refuse to start.
	_, err = New(cfg, zaptest.NewLogger(t), Options{Clipboard: &fakeClipboard{}})
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	list, err := client.History(context.Background(), ipc.HistoryArgs{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, uint64(10), list[0].ID)
	assert.True(t, list[0].Pinned)

	clip.set("new text")
	require.True(t, d.monitor.Poll(context.Background()))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}

	_, err = os.Stat(cfg.SystemPaths.LockFile)
	assert.True(t, os.IsNotExist(err))

	reloaded, err := seed.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, reloaded, 2)
	assert.Equal(t, "new text", reloaded[0].Content.Text())
	assert.Equal(t, types.ItemID(11), reloaded[0].ID)
}
