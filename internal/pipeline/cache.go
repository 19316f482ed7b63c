package pipeline

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"sennaar/internal/cir"
	"sennaar/internal/diag"
)

// bump when cachePayload or the registry document changes shape
const cacheSchemaVersion uint16 = 1

// Digest is a SHA-256 value.
type Digest [32]byte

// String returns the lowercase hex form.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// HashFile returns the digest of the file at path.
func HashFile(path string) (Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Digest{}, err
	}
	return sha256.Sum256(data), nil
}

// UnitKey identifies a header build: H(schema || options || args || path || content).
func UnitKey(header string, content []byte, args []string, opts UnitOptions) Digest {
	h := sha256.New()
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], cacheSchemaVersion)
	_, _ = h.Write(buf[:])
	_, _ = fmt.Fprintf(h, "skip-system=%t\x00on-error=%s\x00", opts.SkipSystemHeaders, opts.OnMappingError)
	for _, a := range args {
		_, _ = h.Write([]byte(a))
		_, _ = h.Write([]byte{0})
	}
	_, _ = h.Write([]byte(header))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(content)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// cachePayload is one cached unit. Deps are the files that contributed
// declarations; an entry is stale once any of them changes.
type cachePayload struct {
	Schema    uint16
	Header    string
	Deps      []string
	DepHashes []Digest
	Registry  []byte
	Warnings  []cachedDiag
}

type cachedDiag struct {
	Code   uint16
	File   string
	Line   uint32
	Column uint32
	Msg    string
}

func toCached(ds []diag.Diagnostic) []cachedDiag {
	out := make([]cachedDiag, 0, len(ds))
	for _, d := range ds {
		if d.Severity != diag.SevWarning {
			continue
		}
		out = append(out, cachedDiag{Code: uint16(d.Code), File: d.Loc.File, Line: d.Loc.Line, Column: d.Loc.Column, Msg: d.Message})
	}
	return out
}

func (c cachedDiag) diagnostic() diag.Diagnostic {
	return diag.NewWarning(diag.Code(c.Code), cir.Location{File: c.File, Line: c.Line, Column: c.Column}, c.Msg)
}

// fresh reports whether every dependency still has its recorded digest.
func (p *cachePayload) fresh() bool {
	if p.Schema != cacheSchemaVersion || len(p.Deps) != len(p.DepHashes) {
		return false
	}
	for i, dep := range p.Deps {
		d, err := HashFile(dep)
		if err != nil || d != p.DepHashes[i] {
			return false
		}
	}
	return true
}

// DiskCache stores unit registries by UnitKey. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache opens the cache under $XDG_CACHE_HOME/app (or ~/.cache/app).
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache opens a cache rooted at dir, creating it if needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "units", key.String()+".mp")
}

func (c *DiskCache) put(key Digest, payload *cachePayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

func (c *DiskCache) get(key Digest, out *cachePayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll removes every cached unit.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	units := filepath.Join(c.dir, "units")
	old := units + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(units, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
