package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sitework/leveler/internal/lock"
	"github.com/sitework/leveler/internal/model"
)

// reloadDebounce coalesces bursts of fsnotify events from editors that
// write files in several steps.
const reloadDebounce = 500 * time.Millisecond

// Server is the file-backed store daemon. It loads the entity YAML files
// from a data directory into a Memory store, serves snapshot and update
// requests over the frame protocol, persists task updates atomically, and
// watches the directory so hand-edited files are hot-reloaded.
type Server struct {
	dataDir  string
	mem      *Memory
	listener *Listener
	flock    *lock.FileLock
	watcher  *fsnotify.Watcher
	logger   *log.Logger

	debounceMu    sync.Mutex
	debounceTimer *time.Timer

	// suppressReload is held while we persist our own writes so the
	// watcher does not reload state we just saved.
	suppressMu      sync.Mutex
	suppressedUntil time.Time

	wg   sync.WaitGroup
	ctx  context.Context
	stop context.CancelFunc
}

func NewServer(dataDir, socketPath string, logger *log.Logger) (*Server, error) {
	data, err := LoadDataDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("load data dir: %w", err)
	}

	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		dataDir:  dataDir,
		mem:      NewMemory(data),
		listener: NewListener(socketPath, logger),
		flock:    lock.NewFileLock(filepath.Join(dataDir, "store.lock")),
		logger:   logger,
		ctx:      ctx,
		stop:     cancel,
	}

	s.listener.Handle(CommandGetSnapshot, s.handleGetSnapshot)
	s.listener.Handle(CommandUpdateTask, s.handleUpdateTask)
	s.listener.Handle(CommandPing, func(req *Request) *Response {
		return SuccessResponse(map[string]any{"generation": s.mem.Generation()})
	})

	return s, nil
}

func (s *Server) Start() error {
	if err := s.flock.TryLock(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		_ = s.flock.Unlock()
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.dataDir); err != nil {
		_ = watcher.Close()
		_ = s.flock.Unlock()
		return fmt.Errorf("watch %s: %w", s.dataDir, err)
	}
	s.watcher = watcher

	s.wg.Add(1)
	go s.watchLoop()

	if err := s.listener.Start(); err != nil {
		s.stop()
		_ = watcher.Close()
		s.wg.Wait()
		_ = s.flock.Unlock()
		return err
	}

	s.logger.Printf("%s INFO store: serving data_dir=%s generation=%d",
		time.Now().Format(time.RFC3339), s.dataDir, s.mem.Generation())
	return nil
}

func (s *Server) Stop() error {
	s.stop()
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	err := s.listener.Stop()
	s.wg.Wait()
	if lerr := s.flock.Unlock(); lerr != nil && err == nil {
		err = lerr
	}
	return err
}

// Memory exposes the backing store for in-process callers and tests.
func (s *Server) Memory() *Memory {
	return s.mem
}

func (s *Server) handleGetSnapshot(req *Request) *Response {
	data, err := s.mem.FetchSnapshot(context.Background())
	if err != nil {
		return ErrorResponse(ErrCodeInternal, err.Error())
	}
	return SuccessResponse(data)
}

func (s *Server) handleUpdateTask(req *Request) *Response {
	var upd TaskUpdate
	if err := json.Unmarshal(req.Params, &upd); err != nil {
		return ErrorResponse(ErrCodeValidation, fmt.Sprintf("decode update params: %v", err))
	}

	task, err := s.mem.UpdateTask(context.Background(), upd)
	if err != nil {
		return ErrorResponse(codeForError(err), err.Error())
	}

	if err := s.persistTasks(); err != nil {
		// The in-memory update already happened; surface the persistence
		// failure so the operator knows the files lag the served state.
		s.logger.Printf("%s ERROR store: persist tasks after update task=%s error=%v",
			time.Now().Format(time.RFC3339), upd.TaskID, err)
		return ErrorResponse(ErrCodeInternal, fmt.Sprintf("update applied but not persisted: %v", err))
	}

	s.logger.Printf("%s INFO store: task_updated task=%s version=%d generation=%d",
		time.Now().Format(time.RFC3339), task.ID, task.Version, s.mem.Generation())
	return SuccessResponse(task)
}

func (s *Server) persistTasks() error {
	data, err := s.mem.FetchSnapshot(context.Background())
	if err != nil {
		return err
	}

	s.suppressMu.Lock()
	s.suppressedUntil = time.Now().Add(2 * reloadDebounce)
	s.suppressMu.Unlock()

	return SaveTasks(s.dataDir, data.Tasks)
}

func (s *Server) watchLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !s.isEntityFileEvent(event) {
				continue
			}
			s.scheduleReload()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Printf("%s WARN store: watcher error=%v", time.Now().Format(time.RFC3339), err)
		}
	}
}

func (s *Server) isEntityFileEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".leveler-tmp-") || strings.HasSuffix(name, ".bak") || name == "store.lock" {
		return false
	}
	switch name {
	case ResourcesFile, TasksFile, WorkPackagesFile, ProjectsFile:
	default:
		return false
	}

	s.suppressMu.Lock()
	suppressed := time.Now().Before(s.suppressedUntil)
	s.suppressMu.Unlock()
	return !suppressed
}

func (s *Server) scheduleReload() {
	s.debounceMu.Lock()
	defer s.debounceMu.Unlock()

	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(reloadDebounce, s.reload)
}

func (s *Server) reload() {
	data, err := LoadDataDir(s.dataDir)
	if err != nil {
		s.logger.Printf("%s WARN store: reload failed, keeping served state error=%v",
			time.Now().Format(time.RFC3339), err)
		return
	}
	if cur, ferr := s.mem.FetchSnapshot(context.Background()); ferr == nil {
		if verr := validateStatusChanges(cur.Tasks, data.Tasks); verr != nil {
			s.logger.Printf("%s WARN store: reload rejected, keeping served state error=%v",
				time.Now().Format(time.RFC3339), verr)
			return
		}
	}
	s.mem.Replace(data)
	s.logger.Printf("%s INFO store: reloaded data_dir=%s generation=%d tasks=%d resources=%d",
		time.Now().Format(time.RFC3339), s.dataDir, s.mem.Generation(), len(data.Tasks), len(data.Resources))
}

// validateStatusChanges rejects hand-edits that move an already-served
// task through an illegal status transition, such as reviving a cancelled
// task. Tasks new to the file carry any valid status.
func validateStatusChanges(current, next []model.Task) error {
	byID := make(map[string]model.TaskStatus, len(current))
	for _, t := range current {
		byID[t.ID] = t.Status
	}
	for _, t := range next {
		old, ok := byID[t.ID]
		if !ok || old == t.Status {
			continue
		}
		if err := model.ValidateTaskTransition(old, t.Status); err != nil {
			return fmt.Errorf("task %s: %w", t.ID, err)
		}
	}
	return nil
}
