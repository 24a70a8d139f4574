package media

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/voxestate/internal/config"
)

var (
	nameRe = regexp.MustCompile(`^output_\d{8}_\d{6}_[0-9a-f]{8}\.(wav|mp3)$`)
	urlRe  = regexp.MustCompile(`^/static/audio/.+\.(wav|mp3)$`)
)

func newTestAllocator(t *testing.T) *Allocator {
	t.Helper()
	return New(config.MediaConfig{
		Dir:    filepath.Join(t.TempDir(), "static", "audio"),
		Mount:  "/static/audio",
		Prefix: "output",
	})
}

func TestAllocate_Format(t *testing.T) {
	a := newTestAllocator(t)
	a.now = func() time.Time { return time.Date(2026, 5, 4, 9, 8, 7, 0, time.UTC) }
	a.token = func() string { return "deadbeef" }

	assert.Equal(t, "output_20260504_090807_deadbeef.wav", a.Allocate("wav"))
	assert.Equal(t, "output_20260504_090807_deadbeef.mp3", a.Allocate(".mp3"))
}

func TestAllocate_UniqueWithinSameSecond(t *testing.T) {
	a := newTestAllocator(t)
	fixed := time.Now()
	a.now = func() time.Time { return fixed }

	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		name := a.Allocate("wav")
		require.Regexp(t, nameRe, name)
		_, dup := seen[name]
		require.False(t, dup, "duplicate name %s", name)
		seen[name] = struct{}{}
	}
}

func TestAllocate_Concurrent(t *testing.T) {
	a := newTestAllocator(t)

	const workers, perWorker = 8, 50
	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		seen = make(map[string]struct{})
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				name := a.Allocate("mp3")
				mu.Lock()
				seen[name] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*perWorker)
}

func TestPublicURL(t *testing.T) {
	a := newTestAllocator(t)
	name := a.Allocate("wav")

	fromName := a.PublicURL(name)
	fromPath := a.PublicURL(a.Path(name))

	assert.Regexp(t, urlRe, fromName)
	assert.Equal(t, fromName, fromPath)
	assert.Equal(t, "/static/audio/"+name, fromName)
	assert.Equal(t, "/static/audio/x.mp3", a.PublicURL(`C:\out\x.mp3`))
}

func TestPublicURL_MountNormalised(t *testing.T) {
	a := New(config.MediaConfig{Dir: t.TempDir(), Mount: "media/"})
	assert.Equal(t, "/media/a.wav", a.PublicURL("a.wav"))

	root := New(config.MediaConfig{Dir: t.TempDir(), Mount: "/"})
	assert.Equal(t, "/a.wav", root.PublicURL("a.wav"))
}

func TestEnsureDir_Idempotent(t *testing.T) {
	a := newTestAllocator(t)

	require.NoError(t, a.EnsureDir())
	require.NoError(t, a.EnsureDir())

	info, err := os.Stat(a.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestEnsureDir_Failure(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	a := New(config.MediaConfig{Dir: filepath.Join(blocker, "audio"), Mount: "/static/audio"})
	assert.Error(t, a.EnsureDir())
}
