// Package store serves completion data from a local YAML workspace file,
// for offline editing and tests.
//
// A workspace file looks like:
//
//	schema:
//	  - name: ORDERS
//	    type: Table
//	questions:
//	  - id: 1
//	    name: Orders
//	    columns:
//	      - name: TOTAL
//	        base_type: type/Float
//	snippets:
//	  - name: active users
//	    content: last_seen > now() - interval '30 days'
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/rlch/nqls"
	"github.com/rlch/nqls/completion"
)

// ReloadDelay coalesces bursts of file events into one reload.
const ReloadDelay = 100 * time.Millisecond

type workspaceFile struct {
	Schema    []nqls.SchemaEntry `yaml:"schema"`
	Questions []*nqls.Question   `yaml:"questions"`
	Snippets  []nqls.Snippet     `yaml:"snippets"`
}

// Workspace implements nqls.SchemaProvider, nqls.QuestionStore and
// nqls.SnippetLister over a YAML file.
type Workspace struct {
	path   string
	logger *zap.Logger

	mu        sync.RWMutex
	schema    []nqls.SchemaEntry
	questions map[int]*nqls.Question
	snippets  []nqls.Snippet
}

// Open loads the workspace at path.
func Open(path string, logger *zap.Logger) (*Workspace, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &Workspace{path: path, logger: logger}

	if err := w.Reload(); err != nil {
		return nil, err
	}

	return w, nil
}

// Path returns the workspace file path.
func (w *Workspace) Path() string {
	return w.path
}

// Reload re-reads the file. On error the previous contents are kept.
func (w *Workspace) Reload() error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("read workspace: %w", err)
	}

	var file workspaceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse workspace %s: %w", w.path, err)
	}

	questions := make(map[int]*nqls.Question, len(file.Questions))

	for _, q := range file.Questions {
		if q == nil {
			continue
		}

		if _, dup := questions[q.ID]; dup {
			return fmt.Errorf("parse workspace %s: duplicate question id %d", w.path, q.ID)
		}

		questions[q.ID] = q
	}

	w.mu.Lock()
	w.schema = file.Schema
	w.questions = questions
	w.snippets = file.Snippets
	w.mu.Unlock()

	return nil
}

// Lookup implements nqls.SchemaProvider with a case-insensitive prefix match.
func (w *Workspace) Lookup(ctx context.Context, prefix string) ([]nqls.SchemaEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lower := strings.ToLower(prefix)

	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []nqls.SchemaEntry

	for _, entry := range w.schema {
		if strings.HasPrefix(strings.ToLower(entry.Name), lower) {
			out = append(out, entry)
		}
	}

	return out, nil
}

// FetchQuestion implements nqls.QuestionStore.
func (w *Workspace) FetchQuestion(_ context.Context, id int) (*nqls.Question, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	q, ok := w.questions[id]

	return q, ok
}

// Snippets implements nqls.SnippetLister.
func (w *Workspace) Snippets() []nqls.Snippet {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.snippets
}

// Watch reloads the workspace whenever its file changes, until ctx is done.
// The parent directory is watched so editors that replace the file on save
// are followed. onReload, if set, is called after every reload attempt.
func (w *Workspace) Watch(ctx context.Context, onReload func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()

		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	reload := completion.NewDebouncer(ReloadDelay, func() {
		err := w.Reload()
		if err != nil {
			w.logger.Warn("Workspace reload failed", zap.String("path", w.path), zap.Error(err))
		} else {
			w.logger.Info("Workspace reloaded", zap.String("path", w.path))
		}

		if onReload != nil {
			onReload(err)
		}
	})

	go func() {
		defer watcher.Close()
		defer reload.Stop()

		target := filepath.Clean(w.path)

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if filepath.Clean(event.Name) != target {
					continue
				}

				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					w.logger.Debug("Workspace changed", zap.String("op", event.Op.String()))
					reload.Trigger()
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}

				w.logger.Warn("Workspace watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}
