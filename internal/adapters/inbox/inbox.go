// Package inbox watches a directory for transcript files and hands each settled
// file to a handler, then files it under processed/ or failed/
package inbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"tasksync/internal/platform/config"
	perr "tasksync/internal/platform/errors"
	"tasksync/internal/platform/logger"

	"github.com/fsnotify/fsnotify"
)

// Subdirectories files are moved to after handling
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

const defaultDebounce = 500 * time.Millisecond

// Handler processes one file. A nil error files it under processed/
type Handler func(ctx context.Context, path string) error

// Options configures an Inbox
type Options struct {
	Dir string
	// Debounce is how long a file must stay unchanged before it is handled
	Debounce time.Duration
}

// FromConfig reads INBOX_DIR and INBOX_DEBOUNCE
func FromConfig(c config.Conf) Options {
	c = c.Prefix("INBOX_")
	return Options{
		Dir:      c.MayString("DIR", "./inbox"),
		Debounce: c.MayDuration("DEBOUNCE", defaultDebounce),
	}
}

// Inbox is a watched directory. Files are handled one at a time in arrival order
type Inbox struct {
	dir      string
	debounce time.Duration
	handle   Handler
	fsw      *fsnotify.Watcher
	log      logger.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	queued map[string]bool
	work   chan string
}

// New creates the directory layout and starts watching dir
func New(o Options, h Handler) (*Inbox, error) {
	if o.Dir == "" {
		return nil, perr.InvalidArgf("inbox: directory is required")
	}
	if o.Debounce <= 0 {
		o.Debounce = defaultDebounce
	}
	for _, d := range []string{o.Dir, filepath.Join(o.Dir, ProcessedDir), filepath.Join(o.Dir, FailedDir)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "inbox: create %s", d)
		}
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "inbox: watcher")
	}
	if err := fsw.Add(o.Dir); err != nil {
		_ = fsw.Close()
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "inbox: watch %s", o.Dir)
	}
	return &Inbox{
		dir:      o.Dir,
		debounce: o.Debounce,
		handle:   h,
		fsw:      fsw,
		log:      *logger.Named("inbox"),
		timers:   map[string]*time.Timer{},
		queued:   map[string]bool{},
		work:     make(chan string, 64),
	}, nil
}

// Pending lists transcript files already in the directory, oldest first
func (in *Inbox) Pending() ([]string, error) {
	ents, err := os.ReadDir(in.dir)
	if err != nil {
		return nil, err
	}
	type f struct {
		path string
		mod  time.Time
	}
	var fs []f
	for _, e := range ents {
		if e.IsDir() || !Accepts(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		fs = append(fs, f{filepath.Join(in.dir, e.Name()), info.ModTime()})
	}
	sort.SliceStable(fs, func(i, j int) bool { return fs[i].mod.Before(fs[j].mod) })
	out := make([]string, len(fs))
	for i := range fs {
		out[i] = fs[i].path
	}
	return out, nil
}

// Run handles files already present, then watches until ctx is done
func (in *Inbox) Run(ctx context.Context) error {
	defer in.fsw.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		in.worker(ctx)
	}()

	existing, err := in.Pending()
	if err != nil {
		in.log.Warn().Err(err).Msg("inbox: initial scan failed")
	}
	for _, p := range existing {
		in.enqueue(ctx, p)
	}
	in.log.Info().Str("dir", in.dir).Int("pending", len(existing)).Msg("inbox watching")

	for {
		select {
		case <-ctx.Done():
			in.stopTimers()
			wg.Wait()
			return nil
		case ev, ok := <-in.fsw.Events:
			if !ok {
				wg.Wait()
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !Accepts(ev.Name) {
				continue
			}
			if filepath.Dir(ev.Name) != filepath.Clean(in.dir) {
				continue
			}
			in.settle(ctx, ev.Name)
		case err, ok := <-in.fsw.Errors:
			if !ok {
				wg.Wait()
				return nil
			}
			in.log.Warn().Err(err).Msg("inbox: watcher error")
		}
	}
}

// settle restarts the file's quiet period
func (in *Inbox) settle(ctx context.Context, path string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	if t, ok := in.timers[path]; ok {
		t.Stop()
	}
	in.timers[path] = time.AfterFunc(in.debounce, func() {
		in.mu.Lock()
		delete(in.timers, path)
		in.mu.Unlock()
		in.enqueue(ctx, path)
	})
}

func (in *Inbox) enqueue(ctx context.Context, path string) {
	in.mu.Lock()
	if in.queued[path] {
		in.mu.Unlock()
		return
	}
	in.queued[path] = true
	in.mu.Unlock()

	select {
	case in.work <- path:
	case <-ctx.Done():
	}
}

func (in *Inbox) stopTimers() {
	in.mu.Lock()
	defer in.mu.Unlock()
	for p, t := range in.timers {
		t.Stop()
		delete(in.timers, p)
	}
}

func (in *Inbox) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-in.work:
			in.mu.Lock()
			delete(in.queued, path)
			in.mu.Unlock()
			in.process(ctx, path)
		}
	}
}

func (in *Inbox) process(ctx context.Context, path string) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return
	}
	log := in.log.With().Str("file", filepath.Base(path)).Logger()
	start := time.Now()

	herr := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = perr.PanicErrf("%v", r)
			}
		}()
		return in.handle(ctx, path)
	}()
	if herr != nil && ctx.Err() != nil {
		// shutting down: leave the file for the next start
		log.Info().Msg("inbox: canceled, file left in place")
		return
	}

	sub := ProcessedDir
	if herr != nil {
		sub = FailedDir
		log.Error().Err(herr).Msg("inbox: file failed")
	} else {
		log.Info().Dur("elapsed", time.Since(start)).Msg("inbox: file processed")
	}

	dest, err := move(path, filepath.Join(in.dir, sub))
	if err != nil {
		log.Error().Err(err).Msg("inbox: move failed")
		return
	}
	if herr != nil {
		_ = os.WriteFile(dest+".error.txt", []byte(herr.Error()+"\n"), 0o644)
	}
}

// move renames path into dir, suffixing a timestamp when the name is taken
func move(path, dir string) (string, error) {
	dest := filepath.Join(dir, filepath.Base(path))
	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(dest)
		dest = fmt.Sprintf("%s.%s%s", dest[:len(dest)-len(ext)], time.Now().UTC().Format("20060102T150405.000"), ext)
	}
	return dest, os.Rename(path, dest)
}
