package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// Preference keys.
const (
	PrefWebhookURL = "webhook_url"
	PrefClass      = "class"
)

var prefKey = regexp.MustCompile(`^[a-z0-9_]+$`)

// ErrPrefNotFound is returned by Get for keys that were never set.
var ErrPrefNotFound = errors.New("store: preference not set")

// Prefs is a small key/value store for values the user sets at runtime,
// such as the webhook address or the last selected class. Each key is a
// file under BasePath.
type Prefs struct {
	d        *diskv.Diskv
	basePath string
}

// OpenPrefs opens (and creates) the preference directory.
func OpenPrefs(basePath string) (*Prefs, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, errors.New("store: preference path unknown")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &Prefs{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      64 * 1024,
	}), basePath: basePath}, nil
}

// BasePath is the preference directory.
func (p *Prefs) BasePath() string { return p.basePath }

// Get returns the value stored under key.
func (p *Prefs) Get(key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	if !p.d.Has(key) {
		return "", ErrPrefNotFound
	}
	val, err := p.d.Read(key)
	if err != nil {
		return "", fmt.Errorf("store: read %s: %w", key, err)
	}
	return strings.TrimSpace(string(val)), nil
}

// Lookup is Get without the error for unset keys.
func (p *Prefs) Lookup(key string) (string, bool) {
	v, err := p.Get(key)
	if err != nil {
		return "", false
	}
	return v, true
}

// Set stores value under key. An empty value erases the key.
func (p *Prefs) Set(key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return p.Delete(key)
	}
	if err := p.d.Write(key, []byte(value)); err != nil {
		return fmt.Errorf("store: write %s: %w", key, err)
	}
	return nil
}

// Delete erases key. Erasing a missing key is not an error.
func (p *Prefs) Delete(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if !p.d.Has(key) {
		return nil
	}
	if err := p.d.Erase(key); err != nil {
		return fmt.Errorf("store: erase %s: %w", key, err)
	}
	return nil
}

// All returns every stored preference.
func (p *Prefs) All(ctx context.Context) map[string]string {
	out := make(map[string]string)
	for key := range p.d.Keys(ctx.Done()) {
		if v, ok := p.Lookup(key); ok {
			out[key] = v
		}
	}
	return out
}

// Keys returns the stored keys in order.
func (p *Prefs) Keys(ctx context.Context) []string {
	var keys []string
	for key := range p.d.Keys(ctx.Done()) {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func checkKey(key string) error {
	if !prefKey.MatchString(key) {
		return fmt.Errorf("store: invalid preference key %q", key)
	}
	return nil
}

func keyToPathTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{Path: []string{}, FileName: key}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return pathKey.FileName
}
