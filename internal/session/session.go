// Package session ties a project on disk to one live world, its edit
// buffers, and the preview loop. All compile and render work runs on
// the background runner against world snapshots, so editing never
// blocks on the compiler.
package session

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/lilBchii/tide/internal/compile"
	"github.com/lilBchii/tide/internal/config"
	"github.com/lilBchii/tide/internal/errors"
	"github.com/lilBchii/tide/internal/fileid"
	"github.com/lilBchii/tide/internal/logging"
	"github.com/lilBchii/tide/internal/preview"
	"github.com/lilBchii/tide/internal/project"
	"github.com/lilBchii/tide/internal/scheduler"
	"github.com/lilBchii/tide/internal/world"
)

// Background task names dispatched by the session.
const (
	TaskCompile = "compile"
	TaskRender  = "render"
)

// buffer is the unsaved edit state of one open file.
type buffer struct {
	text  string
	dirty bool
}

// Session owns exactly one world and the preview state derived from it.
type Session struct {
	pipeline *compile.Pipeline
	renderer *preview.Renderer
	runner   *scheduler.Runner
	catalog  *world.Catalog
	env      *config.Env
	logger   logging.Logger

	mu      sync.Mutex
	root    string
	world   *world.World
	buffers map[fileid.VirtualID]*buffer
	current fileid.VirtualID
}

// New creates a session. The world stays empty until Open.
func New(pipeline *compile.Pipeline, renderer *preview.Renderer, runner *scheduler.Runner, catalog *world.Catalog, env *config.Env, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.Default()
	}
	return &Session{
		pipeline: pipeline,
		renderer: renderer,
		runner:   runner,
		catalog:  catalog,
		env:      env,
		logger:   logger.WithComponent("session"),
		buffers:  make(map[fileid.VirtualID]*buffer),
	}
}

// Open loads the project at root into a fresh world. mainOverride, when
// non-empty, names the project-relative main file; otherwise the
// recorded recent entry, a root-level main.typ, and finally the first
// source in id order are tried. The project is remembered as recent.
func (s *Session) Open(ctx context.Context, root, mainOverride string) error {
	files, err := project.LoadRepo(root, s.logger)
	if err != nil {
		return err
	}

	main, err := s.pickMain(root, mainOverride, files)
	if err != nil {
		return err
	}

	w := world.New(main, s.catalog)
	project.Populate(w, files)

	s.mu.Lock()
	s.root = root
	s.world = w
	s.buffers = make(map[fileid.VirtualID]*buffer)
	s.current = main
	s.mu.Unlock()

	if err := project.Remember(s.env.RecentCache(), project.Recent{
		Root: root,
		Main: strings.TrimPrefix(string(main), "/"),
	}); err != nil {
		s.logger.Warn(ctx, err, "cannot record recent project", "root", root)
	}
	s.logger.Info(ctx, "project opened", "root", root, "main", string(main), "files", len(files))
	return nil
}

// relativeID turns a project-relative path into a VirtualID, keeping
// any directory components.
func relativeID(rel string) fileid.VirtualID {
	return fileid.VirtualID(path.Clean("/" + filepath.ToSlash(rel)))
}

func (s *Session) pickMain(root, override string, files []*project.ImportedFile) (fileid.VirtualID, error) {
	if override != "" {
		return relativeID(override), nil
	}
	if recents, err := project.LoadRecent(s.env.RecentCache()); err == nil {
		for _, recent := range recents {
			if recent.Root == root && recent.Main != "" {
				return relativeID(recent.Main), nil
			}
		}
	}

	var sources []fileid.VirtualID
	for _, file := range files {
		if file.Kind == world.EntryKindSource {
			if file.ID == "/main.typ" {
				return file.ID, nil
			}
			sources = append(sources, file.ID)
		}
	}
	if len(sources) == 0 {
		return "", errors.NewNotFoundError("project has no source files").
			WithContext("root", root)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
	return sources[0], nil
}

// Root returns the project root of the open project.
func (s *Session) Root() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root
}

// World returns the live world. Callers must not retain it across Open.
func (s *Session) World() *world.World {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world
}

// Renderer exposes the preview renderer.
func (s *Session) Renderer() *preview.Renderer {
	return s.renderer
}

// Current returns the file the editor points at.
func (s *Session) Current() fileid.VirtualID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetCurrent moves the editor pointer to id.
func (s *Session) SetCurrent(id fileid.VirtualID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.world == nil || !s.world.Contains(id) {
		return errors.NewNotFoundError("file is not part of the project").
			WithContext("id", string(id))
	}
	s.current = id
	return nil
}

// SetMain repoints the project main file. The id is not validated
// here; a dangling main surfaces as NotFound at the next compile.
func (s *Session) SetMain(id fileid.VirtualID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.world == nil {
		return errors.NewInternalError("no project open", nil)
	}
	s.world.SetMain(id)
	return nil
}

// Edit stores unsaved text for id and marks the buffer dirty.
func (s *Session) Edit(id fileid.VirtualID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.world == nil || !s.world.Contains(id) {
		return errors.NewNotFoundError("file is not part of the project").
			WithContext("id", string(id))
	}
	s.buffers[id] = &buffer{text: text, dirty: true}
	return nil
}

// FlushBuffer pushes the dirty buffer of id into the world. Clean and
// missing buffers are no-ops.
func (s *Session) FlushBuffer(id fileid.VirtualID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked(id)
}

// FlushAll pushes every dirty buffer into the world.
func (s *Session) FlushAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.buffers {
		s.flushLocked(id)
	}
}

func (s *Session) flushLocked(id fileid.VirtualID) {
	buf, ok := s.buffers[id]
	if !ok || !buf.dirty || s.world == nil {
		return
	}
	s.world.ReplaceText(id, buf.text)
	buf.dirty = false
}

// SaveCurrent flushes the current buffer and writes the file to disk.
func (s *Session) SaveCurrent(ctx context.Context) error {
	s.mu.Lock()
	id := s.current
	s.flushLocked(id)
	root := s.root
	w := s.world
	s.mu.Unlock()

	if w == nil {
		return errors.NewInternalError("no project open", nil)
	}
	text, err := w.Source(id)
	if err != nil {
		return err
	}
	if err := project.SaveFile(root, id, text); err != nil {
		return err
	}
	s.logger.Debug(ctx, "file saved", "id", string(id))
	return nil
}

// Upload imports the external file at path into the project root. The
// upload is rejected without touching disk or the world when the target
// name already exists in the project.
func (s *Session) Upload(ctx context.Context, path string) (fileid.VirtualID, error) {
	s.mu.Lock()
	root := s.root
	w := s.world
	s.mu.Unlock()
	if w == nil {
		return "", errors.NewInternalError("no project open", nil)
	}

	name := filepath.Base(path)
	if !project.Accepted(name) {
		return "", errors.NewIOError("unsupported file type", nil).
			WithContext("path", path)
	}
	id := fileid.FromName(name)
	if w.Contains(id) {
		return "", errors.NewIOError("a file with this name already exists", nil).
			WithContext("id", string(id))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewIOError("cannot read upload source", err).
			WithContext("path", path)
	}

	if id.IsSource() {
		if err := project.SaveFile(root, id, string(data)); err != nil {
			return "", err
		}
		w.InsertSource(id, string(data))
	} else {
		if err := project.WriteAsset(root, id, data); err != nil {
			return "", err
		}
		w.InsertAsset(id, data)
	}
	s.logger.Info(ctx, "file uploaded", "id", string(id))
	return id, nil
}

// CreateFile adds an empty source file named name to the project.
func (s *Session) CreateFile(ctx context.Context, name string) (fileid.VirtualID, error) {
	s.mu.Lock()
	root := s.root
	w := s.world
	s.mu.Unlock()
	if w == nil {
		return "", errors.NewInternalError("no project open", nil)
	}

	id := fileid.FromName(name)
	if !id.IsSource() {
		id = fileid.FromName(name + fileid.SourceExtension)
	}
	if w.Contains(id) {
		return "", errors.NewIOError("a file with this name already exists", nil).
			WithContext("id", string(id))
	}
	if err := project.SaveFile(root, id, ""); err != nil {
		return "", err
	}
	w.InsertSource(id, "")
	s.logger.Info(ctx, "file created", "id", string(id))
	return id, nil
}

// DeleteFile removes id from disk first, then from the world and the
// edit buffers. A failed disk delete leaves the world untouched.
func (s *Session) DeleteFile(ctx context.Context, id fileid.VirtualID) error {
	s.mu.Lock()
	root := s.root
	w := s.world
	s.mu.Unlock()
	if w == nil {
		return errors.NewInternalError("no project open", nil)
	}

	if err := project.DeleteFile(root, id); err != nil {
		return err
	}

	s.mu.Lock()
	w.Remove(id)
	delete(s.buffers, id)
	if s.current == id {
		s.current = w.Main()
	}
	s.mu.Unlock()

	s.logger.Info(ctx, "file deleted", "id", string(id))
	return nil
}

// ForcePreview flushes every buffer and schedules a full compile
// followed by a render of the visible range.
func (s *Session) ForcePreview(ctx context.Context) error {
	s.FlushAll()
	s.renderer.ForceReload()
	return s.dispatchCompile(ctx)
}

// Scroll updates the viewport offset and re-renders when the movement
// crosses the scroll threshold.
func (s *Session) Scroll(ctx context.Context, offset float32) {
	if s.renderer.Scroll(offset) {
		s.dispatchRender(ctx)
	}
}

// SetZoom updates the zoom scalar and re-renders when it changed.
func (s *Session) SetZoom(ctx context.Context, zoom float32) {
	if s.renderer.SetZoom(zoom) {
		s.dispatchRender(ctx)
	}
}

// SetViewportHeight updates the visible window height.
func (s *Session) SetViewportHeight(ctx context.Context, height float32) {
	if s.renderer.SetViewportHeight(height) {
		s.dispatchRender(ctx)
	}
}

func (s *Session) dispatchCompile(ctx context.Context) error {
	s.mu.Lock()
	w := s.world
	s.mu.Unlock()
	if w == nil {
		return errors.NewInternalError("no project open", nil)
	}

	snapshot := w.Snapshot()
	id := s.runner.Go(ctx, TaskCompile, func(ctx context.Context) (interface{}, error) {
		result := s.pipeline.Compile(ctx, snapshot)
		return result, result.Err
	})
	if id == "" {
		return errors.NewInternalError("background runner is closed", nil)
	}
	return nil
}

func (s *Session) dispatchRender(ctx context.Context) {
	pass, ok := s.renderer.Begin()
	if !ok {
		return
	}
	s.runner.Go(ctx, TaskRender, func(ctx context.Context) (interface{}, error) {
		return s.renderer.Execute(ctx, pass), nil
	})
}

// HandleCompletion folds one finished background task back into the
// session. Compile failures keep the previous preview. Returns true
// when the completion changed preview state.
func (s *Session) HandleCompletion(ctx context.Context, completion scheduler.Completion) bool {
	switch completion.Name {
	case TaskCompile:
		if completion.Err != nil {
			s.logger.Warn(ctx, completion.Err, "compile failed, preview unchanged")
			return false
		}
		result, ok := completion.Value.(compile.Result)
		if !ok || result.Document == nil {
			return false
		}
		s.renderer.SetDocument(result.Document)
		s.dispatchRender(ctx)
		return true

	case TaskRender:
		result, ok := completion.Value.(*preview.Result)
		if !ok || result == nil {
			return false
		}
		applied := s.renderer.Apply(result)
		// A trigger that arrived mid-render leaves the renderer
		// pending; pick it up immediately.
		if s.renderer.State() == preview.StateReloadPending {
			s.dispatchRender(ctx)
		}
		return applied

	default:
		s.logger.Debug(ctx, "unhandled completion", "task", completion.Name)
		return false
	}
}

// Run drains runner completions until ctx is cancelled.
func (s *Session) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case completion, ok := <-s.runner.Completions():
			if !ok {
				return
			}
			s.HandleCompletion(ctx, completion)
		}
	}
}
