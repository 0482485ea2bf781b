// Package watcher owns the inbound CSV directory: it sweeps pre-existing
// files at startup, subscribes to filesystem events, serializes each
// discovered file through the CSV processor exactly once per process
// lifetime, and archives processed files.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/siliconops/ingestoor/pkg/config"
	"github.com/siliconops/ingestoor/pkg/fsutil"
	"github.com/siliconops/ingestoor/pkg/ingest"
	"github.com/sirupsen/logrus"
)

// queueSize bounds the number of discovered files awaiting processing.
const queueSize = 256

// Status reports the watcher's current state.
type Status struct {
	Watching       bool   `json:"watching"`
	Directory      string `json:"directory"`
	ProcessedFiles int    `json:"processed_files"`
}

// Watcher watches the inbound directory and feeds files through the CSV
// processor.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
	Status() Status
}

// Compile-time interface check.
var _ Watcher = (*watcher)(nil)

type watcher struct {
	log       logrus.FieldLogger
	cfg       *config.IngestConfig
	processor *ingest.CSVProcessor

	fsw   *fsnotify.Watcher
	queue chan string
	done  chan struct{}
	wg    sync.WaitGroup

	mu        sync.Mutex
	watching  bool
	claimed   map[string]struct{}
	processed int
}

// NewWatcher creates a watcher over the configured inbound directory.
func NewWatcher(
	log logrus.FieldLogger,
	cfg *config.IngestConfig,
	processor *ingest.CSVProcessor,
) Watcher {
	return &watcher{
		log:       log.WithField("component", "watcher"),
		cfg:       cfg,
		processor: processor,
		queue:     make(chan string, queueSize),
		done:      make(chan struct{}),
		claimed:   make(map[string]struct{}),
	}
}

// Start ensures the watched directory exists, queues pre-existing files,
// and subscribes to filesystem events. Processing runs on a single
// worker goroutine so two files discovered close together never
// interleave their database writes.
func (w *watcher) Start(ctx context.Context) error {
	if err := fsutil.EnsureDir(w.cfg.WatchDir); err != nil {
		return err
	}

	if err := fsutil.EnsureDir(w.archiveDir()); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	if err := fsw.Add(w.cfg.WatchDir); err != nil {
		fsw.Close()

		return fmt.Errorf("watching %q: %w", w.cfg.WatchDir, err)
	}

	w.fsw = fsw

	// Cold-start sweep: queue whatever is already sitting in the
	// directory. The claim map is empty on restart, so duplicate
	// protection for re-swept files rests on the natural-key checks.
	files, err := fsutil.ListCSVFiles(w.cfg.WatchDir)
	if err != nil {
		fsw.Close()

		return err
	}

	for _, file := range files {
		w.enqueue(filepath.Join(w.cfg.WatchDir, file))
	}

	if len(files) > 0 {
		w.log.WithField("count", len(files)).Info("Queued pre-existing CSV files")
	}

	w.wg.Add(2)
	go w.eventLoop()
	go w.workLoop(ctx)

	w.mu.Lock()
	w.watching = true
	w.mu.Unlock()

	w.log.WithField("dir", w.cfg.WatchDir).Info("Watching for CSV files")

	return nil
}

// Stop releases the filesystem subscription and waits for in-flight
// processing to finish.
func (w *watcher) Stop() error {
	close(w.done)

	if w.fsw != nil {
		if err := w.fsw.Close(); err != nil {
			w.log.WithError(err).Warn("Failed to close fsnotify watcher")
		}
	}

	w.wg.Wait()

	w.mu.Lock()
	w.watching = false
	w.mu.Unlock()

	w.log.Info("Watcher stopped")

	return nil
}

// Status returns the watcher's current state.
func (w *watcher) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()

	return Status{
		Watching:       w.watching,
		Directory:      w.cfg.WatchDir,
		ProcessedFiles: w.processed,
	}
}

func (w *watcher) archiveDir() string {
	return filepath.Join(w.cfg.WatchDir, w.cfg.ArchiveSubdir)
}

// eventLoop dispatches filesystem events until the watcher closes.
func (w *watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			switch {
			case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
				w.enqueue(event.Name)
			case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
				w.release(event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}

			w.log.WithError(err).Error("Filesystem watch error")
		case <-w.done:
			return
		}
	}
}

// enqueue claims a path and queues it for processing. The claim is taken
// synchronously, before any settle delay, so duplicate create+write
// events for the same path cannot race it onto the queue twice.
func (w *watcher) enqueue(path string) {
	if !w.wantsFile(path) {
		return
	}

	w.mu.Lock()
	if _, ok := w.claimed[path]; ok {
		w.mu.Unlock()

		return
	}

	w.claimed[path] = struct{}{}
	w.mu.Unlock()

	select {
	case w.queue <- path:
	default:
		// Queue full; drop the claim so a later event can retry.
		w.release(path)
		w.log.WithField("file", filepath.Base(path)).
			Warn("Processing queue full, file deferred")
	}
}

// release drops the claim on a path.
func (w *watcher) release(path string) {
	w.mu.Lock()
	delete(w.claimed, path)
	w.mu.Unlock()
}

// wantsFile filters out paths the watcher must ignore: dotfiles,
// non-CSVs, anything already archived or inside the archive subdirectory.
func (w *watcher) wantsFile(path string) bool {
	name := filepath.Base(path)

	if strings.HasPrefix(name, ".") {
		return false
	}

	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		return false
	}

	if strings.Contains(name, fsutil.ArchiveMarker) {
		return false
	}

	if strings.HasPrefix(path, w.archiveDir()+string(filepath.Separator)) {
		return false
	}

	return true
}

// workLoop processes queued files one at a time, in arrival order.
func (w *watcher) workLoop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case path := <-w.queue:
			w.handleFile(ctx, path)
		case <-w.done:
			return
		}
	}
}

// handleFile waits for the file to settle, runs it through the CSV
// processor, and archives it. The watcher does not inspect the summary:
// quarantine decisions belong to the processor, and a file that yielded a
// summary is done regardless of its per-row counts.
func (w *watcher) handleFile(ctx context.Context, path string) {
	log := w.log.WithField("file", filepath.Base(path))

	// Settle delay: the event may fire while the file is still being
	// written.
	select {
	case <-time.After(w.cfg.SettleDuration()):
	case <-w.done:
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		// Moved or deleted while settling.
		w.release(path)

		return
	}

	if info.Size() == 0 {
		log.Info("File is empty, waiting for content")
		w.release(path)

		return
	}

	summary, err := w.processor.ProcessFile(ctx, path)
	if err != nil && summary == nil {
		// Parse-fatal: leave the file in place and drop the claim so a
		// rewrite of the file can retry.
		log.WithError(err).Error("Failed to process file")
		w.release(path)

		return
	}

	if err != nil && errors.Is(err, ingest.ErrNothingInserted) {
		log.WithError(err).Warn("File produced no inserts")
	}

	w.mu.Lock()
	w.processed++
	w.mu.Unlock()

	w.archive(path)
}

// archive moves a processed file into the archive subdirectory under a
// collision-resistant timestamped name. A file the processor already
// quarantined is gone by now; that is not an error.
func (w *watcher) archive(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}

	name := fsutil.ArchiveName(filepath.Base(path), time.Now())
	dst := filepath.Join(w.archiveDir(), name)

	if err := fsutil.MoveFile(path, dst); err != nil {
		w.log.WithError(err).WithField("file", filepath.Base(path)).
			Error("Failed to archive file")

		return
	}

	w.log.WithFields(logrus.Fields{
		"file":     filepath.Base(path),
		"archived": name,
	}).Info("File archived")
}
