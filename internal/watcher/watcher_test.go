package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingInvalidator struct {
	mutex sync.Mutex
	names []string
}

func (r *recordingInvalidator) Invalidate(name string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.names = append(r.names, name)
}

func (r *recordingInvalidator) seen() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]string(nil), r.names...)
}

func TestWatcherInvalidatesOnWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(file, []byte("<p>one</p>"), 0o644))

	target := &recordingInvalidator{}
	tw, err := New(dir, target, nil)
	require.NoError(t, err)
	defer tw.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tw.Start(ctx)

	require.NoError(t, os.WriteFile(file, []byte("<p>two</p>"), 0o644))

	require.Eventually(t, func() bool {
		return len(target.seen()) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, target.seen(), "index.html")
}

func TestWatcherIgnoresNonTemplates(t *testing.T) {
	dir := t.TempDir()
	target := &recordingInvalidator{}
	tw, err := New(dir, target, nil)
	require.NoError(t, err)
	defer tw.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tw.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Empty(t, target.seen())
}

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "page.dew")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0o644))

	target := &recordingInvalidator{}
	tw, err := New(dir, target, nil)
	require.NoError(t, err)
	defer tw.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tw.Start(ctx)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(file, []byte("burst"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return len(target.seen()) > 0
	}, 2*time.Second, 10*time.Millisecond)

	// The burst collapses to a single invalidation for the file.
	time.Sleep(300 * time.Millisecond)
	count := 0
	for _, n := range target.seen() {
		if n == "page.dew" {
			count++
		}
	}
	assert.LessOrEqual(t, count, 2)
}

func TestIsTemplate(t *testing.T) {
	assert.True(t, isTemplate("a/b/index.html"))
	assert.True(t, isTemplate("view.DEW"))
	assert.False(t, isTemplate("style.css"))
	assert.False(t, isTemplate("app.js"))
}

func TestWatcherMissingRoot(t *testing.T) {
	_, err := New("/nonexistent/template/dir", &recordingInvalidator{}, nil)
	assert.Error(t, err)
}
