// Package media allocates output files for synthesized audio and maps them
// to the public static mount.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nadzzz/voxestate/internal/config"
)

// Allocator hands out unique audio filenames inside a single output directory.
type Allocator struct {
	dir    string
	mount  string
	prefix string

	mu      sync.Mutex
	created bool

	now   func() time.Time
	token func() string
}

// New creates an Allocator from the media configuration.
func New(cfg config.MediaConfig) *Allocator {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "output"
	}
	return &Allocator{
		dir:    cfg.Dir,
		mount:  "/" + strings.Trim(cfg.Mount, "/"),
		prefix: prefix,
		now:    time.Now,
		token:  randomToken,
	}
}

// randomToken returns 8 hex characters (32 random bits) from a v4 UUID.
func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Dir returns the output directory.
func (a *Allocator) Dir() string { return a.dir }

// Mount returns the public URL prefix the directory is served under.
func (a *Allocator) Mount() string { return a.mount }

// EnsureDir creates the output directory if needed. Safe to call repeatedly;
// once the directory has been created successfully it is not checked again.
func (a *Allocator) EnsureDir() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.created {
		return nil
	}
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("creating media dir %s: %w", a.dir, err)
	}
	a.created = true
	return nil
}

// Allocate returns a fresh filename "<prefix>_<YYYYmmdd_HHMMSS>_<8hex>.<ext>".
// ext may be given with or without the leading dot. The file is not created.
func (a *Allocator) Allocate(ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	return fmt.Sprintf("%s_%s_%s.%s", a.prefix, a.now().Format("20060102_150405"), a.token(), ext)
}

// Path returns the storage path for name inside the output directory.
func (a *Allocator) Path(name string) string {
	return filepath.Join(a.dir, baseName(name))
}

// PublicURL maps a filename or storage path to its static-mount URL.
// Only the base name is used, so the result is the same for either input.
func (a *Allocator) PublicURL(name string) string {
	if a.mount == "/" {
		return "/" + baseName(name)
	}
	return a.mount + "/" + baseName(name)
}

// baseName strips any directory part, accepting both slash styles.
func baseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		return name[i+1:]
	}
	return name
}
