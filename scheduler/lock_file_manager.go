package scheduler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/ZacxDev/stepsim/fs"
	"github.com/pkg/errors"
)

const DefaultLockFile = "stepsim.lock"

// LockFileEntry is a cached result for one graph and option set.
type LockFileEntry struct {
	Order   string `json:"order"`
	Elapsed int    `json:"elapsed"`
}

type LockFileManager interface {
	LoadLockFile() error
	SaveFreshLockFile() error
	GetCachedEntry(string) (LockFileEntry, bool)
	AddFreshEntry(string, LockFileEntry)

	// Getters
	LockFile() map[string]LockFileEntry
	FreshLockFile() map[string]LockFileEntry
	Path() string
}

type lockFileManager struct {
	lockFile      map[string]LockFileEntry
	freshLockFile map[string]LockFileEntry
	fs            fs.FileSystem
	path          string
	mu            sync.Mutex
}

func NewLockFileManager(fs fs.FileSystem, path string) LockFileManager {
	if path == "" {
		path = DefaultLockFile
	}
	return &lockFileManager{
		lockFile:      make(map[string]LockFileEntry),
		freshLockFile: make(map[string]LockFileEntry),
		fs:            fs,
		path:          path,
	}
}

func (lm *lockFileManager) LoadLockFile() error {
	data, err := lm.fs.ReadFile(lm.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // It's okay if the lock file doesn't exist yet
		}
		return errors.Wrapf(err, "failed to read %s", lm.path)
	}

	lm.mu.Lock()
	defer lm.mu.Unlock()
	if err := json.Unmarshal(data, &lm.lockFile); err != nil {
		return errors.Wrapf(err, "failed to decode %s", lm.path)
	}
	return nil
}

// SaveFreshLockFile writes the entries produced by this run, merged over the
// ones that were loaded.
func (lm *lockFileManager) SaveFreshLockFile() error {
	lm.mu.Lock()
	merged := make(map[string]LockFileEntry, len(lm.lockFile)+len(lm.freshLockFile))
	for k, v := range lm.lockFile {
		merged[k] = v
	}
	for k, v := range lm.freshLockFile {
		merged[k] = v
	}
	lm.mu.Unlock()

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.Wrapf(lm.fs.WriteFile(lm.path, data, 0644), "failed to write %s", lm.path)
}

func (lm *lockFileManager) GetCachedEntry(key string) (LockFileEntry, bool) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	entry, ok := lm.lockFile[key]
	return entry, ok
}

func (lm *lockFileManager) AddFreshEntry(key string, entry LockFileEntry) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.freshLockFile[key] = entry
}

func (lm *lockFileManager) LockFile() map[string]LockFileEntry {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.lockFile
}

func (lm *lockFileManager) FreshLockFile() map[string]LockFileEntry {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.freshLockFile
}

func (lm *lockFileManager) Path() string {
	return lm.path
}

// ResultKey fingerprints everything that determines a result: the edges in
// order, the worker count, the overhead and the cost of every step.
func ResultKey(g *Graph, opts Options) string {
	h := sha256.New()

	for _, e := range g.edges {
		fmt.Fprintf(h, "%s>%s\n", e.Before, e.After)
	}
	for _, id := range g.IDs() {
		cost := 0
		if opts.Cost != nil {
			cost = opts.Cost(id)
		}
		fmt.Fprintf(h, "%s=%d\n", id, cost)
	}
	fmt.Fprintf(h, "workers=%d overhead=%d", opts.Workers, opts.Overhead)

	return hex.EncodeToString(h.Sum(nil))
}
