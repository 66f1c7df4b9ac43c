package cookies

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	permJar    = 0600
	permJarDir = 0700
)

var _ Store = (*FileJar)(nil)

// FileJar persists entries to a TOML file so they survive restarts. The file is
// re-read whenever its modification time changes and written on every mutation.
type FileJar struct {
	FilePath string

	mu         sync.Mutex
	data       schema
	modifiedAt time.Time
	settings   jarSettings
}

func NewFileJar(path string, opts ...JarOption) (*FileJar, error) {
	if path == "" {
		return nil, errors.New("[NewFileJar] path is required")
	}
	j := &FileJar{
		FilePath: path,
		data:     schema{Cookies: make(map[string]*cookieRecord)},
		settings: newJarSettings(opts),
	}
	if err := j.refresh(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *FileJar) Lookup(name string) (Entry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.refresh(); err != nil {
		j.settings.logger.Warn().
			Err(err).
			Str("file", j.FilePath).
			Msg("using cached cookies")
	}
	rec, ok := j.data.Cookies[name]
	if !ok {
		return Entry{}, false
	}
	e := rec.toEntry(name)
	if e.Expired(j.settings.nowTime()) {
		return Entry{}, false
	}
	return e, true
}

func (j *FileJar) Put(name, value string, opts Options) error {
	e, err := newEntry(name, value, opts, j.settings.nowTime())
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.refresh(); err != nil {
		return err
	}
	rec := &cookieRecord{}
	rec.fromEntry(e)
	j.data.Cookies[name] = rec
	return j.save()
}

func (j *FileJar) Delete(name string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.refresh(); err != nil {
		return err
	}
	if _, ok := j.data.Cookies[name]; !ok {
		return nil
	}
	delete(j.data.Cookies, name)
	return j.save()
}

// Names lists live entry names in sorted order.
func (j *FileJar) Names() []string {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.settings.nowTime()
	names := make([]string, 0, len(j.data.Cookies))
	for name, rec := range j.data.Cookies {
		if !rec.toEntry(name).Expired(now) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// cookieRecord is the on-disk and in-redis form of an Entry.
type cookieRecord struct {
	Value    string `toml:"value" json:"value"`
	Expires  string `toml:"expires,omitempty" json:"expires,omitempty"`
	Domain   string `toml:"domain,omitempty" json:"domain,omitempty"`
	Path     string `toml:"path,omitempty" json:"path,omitempty"`
	Secure   bool   `toml:"secure,omitempty" json:"secure,omitempty"`
	SameSite string `toml:"sameSite,omitempty" json:"sameSite,omitempty"`
}

func (r *cookieRecord) toEntry(name string) Entry {
	e := Entry{
		Name:     name,
		Value:    r.Value,
		Domain:   r.Domain,
		Path:     r.Path,
		Secure:   r.Secure,
		SameSite: ParseSameSite(r.SameSite),
	}
	if r.Expires != "" {
		if t, err := time.Parse(time.RFC3339Nano, r.Expires); err == nil {
			e.Expires = t
		}
	}
	return e
}

func (r *cookieRecord) fromEntry(e Entry) {
	r.Value = e.Value
	r.Expires = ""
	if !e.Expires.IsZero() {
		r.Expires = e.Expires.UTC().Format(time.RFC3339Nano)
	}
	r.Domain = e.Domain
	r.Path = e.Path
	r.Secure = e.Secure
	r.SameSite = sameSiteName(e.SameSite)
}

func sameSiteName(s http.SameSite) string {
	switch s {
	case http.SameSiteStrictMode:
		return "strict"
	case http.SameSiteNoneMode:
		return "none"
	default:
		return "lax"
	}
}

type schema struct {
	Cookies map[string]*cookieRecord `toml:"cookies"`
}

// refresh reloads the file when it changed on disk. A missing file is an empty jar.
func (j *FileJar) refresh() error {
	info, err := os.Stat(j.FilePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read file timestamp: %w", err)
	}
	if info.ModTime().Equal(j.modifiedAt) {
		return nil
	}

	data := schema{}
	if _, err := toml.DecodeFile(j.FilePath, &data); err != nil {
		return fmt.Errorf("failed to load cookie jar: %w", err)
	}
	if data.Cookies == nil {
		data.Cookies = make(map[string]*cookieRecord)
	}
	j.data = data
	j.modifiedAt = info.ModTime()
	return nil
}

// save writes live entries back to disk, dropping expired ones.
func (j *FileJar) save() error {
	now := j.settings.nowTime()
	for name, rec := range j.data.Cookies {
		if rec.toEntry(name).Expired(now) {
			delete(j.data.Cookies, name)
		}
	}

	if err := os.MkdirAll(filepath.Dir(j.FilePath), permJarDir); err != nil {
		return fmt.Errorf("failed to create cookie jar folder: %w", err)
	}
	file, err := os.OpenFile(j.FilePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, permJar)
	if err != nil {
		return fmt.Errorf("failed to save cookie jar: %w", err)
	}
	defer file.Close()

	enc := toml.NewEncoder(file)
	enc.Indent = ""
	if err := enc.Encode(j.data); err != nil {
		return fmt.Errorf("failed to encode cookie jar: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to flush cookie jar: %w", err)
	}

	if info, err := os.Stat(j.FilePath); err == nil {
		j.modifiedAt = info.ModTime()
	}
	return nil
}
