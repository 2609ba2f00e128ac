package archives

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Xcraft-Inc/wimlib-imagex/internal/logging"
	"github.com/Xcraft-Inc/wimlib-imagex/internal/websocket"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Index keeps an in-memory view of the WIM archives under the image
// location, refreshed through fsnotify so list requests never touch the
// filesystem.
type Index struct {
	mu            sync.RWMutex
	archives      map[string]Archive
	imageLocation string
	watcher       *fsnotify.Watcher
	hub           *websocket.Hub
	logger        *logging.Logger
	ctx           context.Context
	cancel        context.CancelFunc
}

func NewIndex(imageLocation string, hub *websocket.Hub, logger *logging.Logger) *Index {
	ctx, cancel := context.WithCancel(context.Background())
	return &Index{
		archives:      make(map[string]Archive),
		imageLocation: imageLocation,
		hub:           hub,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
	}
}

func (idx *Index) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	idx.watcher = watcher

	if err := idx.rescan(); err != nil {
		idx.logger.Warn("initial archive scan failed", zap.Error(err))
	}

	if err := idx.watcher.Add(idx.imageLocation); err != nil {
		return fmt.Errorf("failed to watch image location %s: %w", idx.imageLocation, err)
	}

	go idx.watchLoop()

	idx.logger.Info("archive index started",
		zap.String("image_location", idx.imageLocation),
		zap.Int("archives", idx.count()))
	return nil
}

func (idx *Index) Stop() {
	idx.cancel()
	if idx.watcher != nil {
		_ = idx.watcher.Close()
	}
}

// List returns the indexed archives sorted by name.
func (idx *Index) List() []Archive {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]Archive, 0, len(idx.archives))
	for _, a := range idx.archives {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (idx *Index) count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.archives)
}

func (idx *Index) rescan() error {
	entries, err := os.ReadDir(idx.imageLocation)
	if err != nil {
		return fmt.Errorf("failed to read image location: %w", err)
	}

	fresh := make(map[string]Archive)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".wim") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		fresh[entry.Name()] = Archive{
			Name:      entry.Name(),
			SizeBytes: info.Size(),
			ModTime:   info.ModTime(),
		}
	}

	idx.mu.Lock()
	idx.archives = fresh
	idx.mu.Unlock()
	return nil
}

func (idx *Index) watchLoop() {
	for {
		select {
		case <-idx.ctx.Done():
			return
		case event, ok := <-idx.watcher.Events:
			if !ok {
				return
			}
			idx.handleEvent(event)
		case err, ok := <-idx.watcher.Errors:
			if !ok {
				return
			}
			idx.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (idx *Index) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, ".wim") {
		return
	}

	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		idx.mu.Lock()
		_, existed := idx.archives[name]
		delete(idx.archives, name)
		idx.mu.Unlock()

		if existed {
			idx.logger.Debug("archive removed", zap.String("archive", name))
			idx.hub.BroadcastArchiveChange(websocket.ArchiveChangeEvent{
				Archive: name,
				Change:  "removed",
			})
		}

	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		// Captures write the archive incrementally; debounce briefly so the
		// broadcast size is the settled one.
		go func() {
			select {
			case <-idx.ctx.Done():
				return
			case <-time.After(200 * time.Millisecond):
			}
			idx.refreshArchive(name, event.Name)
		}()
	}
}

func (idx *Index) refreshArchive(name, path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}

	archive := Archive{
		Name:      name,
		SizeBytes: info.Size(),
		ModTime:   info.ModTime(),
	}

	idx.mu.Lock()
	_, existed := idx.archives[name]
	idx.archives[name] = archive
	idx.mu.Unlock()

	change := "created"
	if existed {
		change = "updated"
	}

	idx.logger.Debug("archive indexed",
		zap.String("archive", name),
		zap.String("change", change),
		zap.Int64("size_bytes", archive.SizeBytes))

	idx.hub.BroadcastArchiveChange(websocket.ArchiveChangeEvent{
		Archive:   name,
		Change:    change,
		SizeBytes: archive.SizeBytes,
	})
}
