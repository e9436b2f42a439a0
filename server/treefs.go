// Package server serves a materialized filesystem.FileSystem read-only over FUSE.
package server

import (
	"errors"
	"sync"
	"time"

	"github.com/brettbedarf/treefs/config"
	"github.com/brettbedarf/treefs/filesystem"
	"github.com/brettbedarf/treefs/internal/util"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// ErrMounted is returned by Serve when the filesystem is already mounted
var ErrMounted = errors.New("already mounted")

// TreeFs pairs an in-memory filesystem with the FUSE server exposing it
type TreeFs struct {
	*filesystem.FileSystem
	cfg *config.Config

	mu     sync.Mutex
	server *fuse.Server
}

// New creates a TreeFs with an empty filesystem given your config.
func New(cfg *config.Config) *TreeFs {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	return NewWithFS(filesystem.NewFS(cfg), cfg)
}

// NewWithFS serves an existing filesystem, usually one a tree was created on
func NewWithFS(fsys *filesystem.FileSystem, cfg *config.Config) *TreeFs {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	return &TreeFs{FileSystem: fsys, cfg: cfg}
}

// Serve mounts the filesystem at mountPoint and returns once the kernel has
// the mount. Requests are served in the background until Unmount.
func (t *TreeFs) Serve(mountPoint string) error {
	logger := util.GetLogger("Server.Serve")

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.server != nil {
		return ErrMounted
	}

	opts := t.cfg.MountOptions
	attrTimeout := seconds(t.cfg.AttrTimeout)
	entryTimeout := seconds(t.cfg.EntryTimeout)
	root := &treeNode{node: t.Root(), attrTimeout: attrTimeout, entryTimeout: entryTimeout}

	srv, err := fs.Mount(mountPoint, root, &fs.Options{
		AttrTimeout:  &attrTimeout,
		EntryTimeout: &entryTimeout,
		MountOptions: fuse.MountOptions{
			Name:   opts.Name,
			FsName: opts.FsName,
			Debug:  opts.Debug || t.cfg.LogLvl == util.TraceLevel,
			Logger: util.NewLogLogger("FuseServer", util.TraceLevel),
		},
	})
	if err != nil {
		return err
	}
	t.server = srv
	logger.Info().Str("mountPoint", mountPoint).Msg("Mounted")
	return nil
}

// ServeAsync runs Serve in the background. The channel receives Serve's
// result and is then closed.
func (t *TreeFs) ServeAsync(mountPoint string) <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- t.Serve(mountPoint)
		close(done)
	}()

	return done
}

// Wait blocks until the filesystem is unmounted
func (t *TreeFs) Wait() {
	t.mu.Lock()
	srv := t.server
	t.mu.Unlock()
	if srv != nil {
		srv.Wait()
	}
}

// Unmount cleanly unmounts the filesystem.
func (t *TreeFs) Unmount() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.server == nil {
		return nil
	}
	if err := t.server.Unmount(); err != nil {
		return err
	}
	t.server = nil
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
