package wasmres

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wippyai/xresource/errors"
	"github.com/wippyai/xresource/guid"
)

// Resolver maps a module identity to a file path.
type Resolver interface {
	Resolve(id guid.Full, typeName string) (string, error)
}

// DirResolver lays modules out as <Root>/<type name>/<instance hex><Ext>.
type DirResolver struct {
	Root string
	Ext  string
}

// Resolve implements Resolver.
func (d DirResolver) Resolve(id guid.Full, typeName string) (string, error) {
	if !id.Valid() {
		return "", errors.InvalidInput(errors.PhaseLoad, "invalid module identity "+id.String())
	}
	return filepath.Join(d.Root, typeName, id.Instance.String()+d.Ext), nil
}

// MapResolver is an explicit catalog of module paths.
type MapResolver struct {
	paths map[guid.Full]string
}

// NewMapResolver creates an empty catalog.
func NewMapResolver() *MapResolver {
	return &MapResolver{paths: make(map[guid.Full]string)}
}

// Add records path for id, replacing any previous entry.
func (r *MapResolver) Add(id guid.Full, path string) {
	r.paths[id] = path
}

// Len returns the number of catalogued modules.
func (r *MapResolver) Len() int { return len(r.paths) }

// Resolve implements Resolver.
func (r *MapResolver) Resolve(id guid.Full, _ string) (string, error) {
	if p, ok := r.paths[id]; ok {
		return p, nil
	}
	return "", errors.NotFound(errors.PhaseLoad, "module", id.String())
}

// Chain tries each resolver in order and returns the first path that exists.
type Chain []Resolver

// Resolve implements Resolver.
func (c Chain) Resolve(id guid.Full, typeName string) (string, error) {
	var lastErr error
	for _, r := range c {
		p, err := r.Resolve(id, typeName)
		if err != nil {
			lastErr = err
			continue
		}
		if _, err := os.Stat(p); err != nil {
			lastErr = err
			continue
		}
		return p, nil
	}
	if lastErr == nil {
		lastErr = errors.NotFound(errors.PhaseLoad, "module", id.String())
	}
	return "", lastErr
}

// Identity returns the identity a module file is catalogued under: its file
// name without extension, hashed into an instance id.
func Identity(name string) guid.Full {
	return guid.Full{Instance: guid.InstanceFromString(name), Type: TypeID}
}

// ScanDir catalogues every file in dir whose name ends in ext. The returned
// identities are sorted by file name.
func ScanDir(dir, ext string) (*MapResolver, []guid.Full, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	r := NewMapResolver()
	ids := make([]guid.Full, 0, len(names))
	for _, name := range names {
		id := Identity(strings.TrimSuffix(name, ext))
		r.Add(id, filepath.Join(dir, name))
		ids = append(ids, id)
	}
	return r, ids, nil
}
