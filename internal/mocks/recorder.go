package mocks

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/brettbedarf/treefs"
)

// ErrInjected is returned for paths registered with [Recorder.Fail] without an explicit error
var ErrInjected = errors.New("injected failure")

// Recorder is an in-memory treefs.TempBackend that records every successful
// call in order and fails on demand for chosen paths. Failed calls are not
// recorded.
type Recorder struct {
	mu   sync.Mutex
	ops  []treefs.Op
	fail map[string]error
	temp []*RecordedTempDir
}

func NewRecorder() *Recorder {
	return &Recorder{fail: make(map[string]error)}
}

// Fail makes every later CreateDir/WriteFile on path return err (or ErrInjected if nil)
func (r *Recorder) Fail(path string, err error) {
	if err == nil {
		err = ErrInjected
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail[path] = err
}

func (r *Recorder) CreateDir(path string) error {
	return r.record(treefs.Op{Kind: treefs.OpCreateDir, Path: path})
}

func (r *Recorder) WriteFile(path string, data []byte) error {
	return r.record(treefs.Op{Kind: treefs.OpWriteFile, Path: path, Data: append([]byte{}, data...)})
}

func (r *Recorder) record(op treefs.Op) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.fail[op.Path]; ok {
		return err
	}
	r.ops = append(r.ops, op)
	return nil
}

// Ops returns a copy of the recorded operations
func (r *Recorder) Ops() []treefs.Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]treefs.Op(nil), r.ops...)
}

// Allocate hands out "tmp/<n>" roots; it fails if "tmp" was registered with Fail
func (r *Recorder) Allocate() (treefs.TempDir, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.fail["tmp"]; ok {
		return nil, err
	}
	dir := &RecordedTempDir{path: "tmp/" + strconv.Itoa(len(r.temp))}
	r.temp = append(r.temp, dir)
	return dir, nil
}

// TempDirs returns every handle handed out by Allocate
func (r *Recorder) TempDirs() []*RecordedTempDir {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*RecordedTempDir(nil), r.temp...)
}

// RecordedTempDir tracks whether its owner closed it
type RecordedTempDir struct {
	path   string
	closed atomic.Int32
}

func (d *RecordedTempDir) Path() string { return d.path }

func (d *RecordedTempDir) Close() error {
	d.closed.Add(1)
	return nil
}

// Closed reports how many times Close was called
func (d *RecordedTempDir) Closed() int { return int(d.closed.Load()) }

var _ treefs.TempBackend = (*Recorder)(nil)

// Op helpers for building expected sequences in tests

func Dir(path string) treefs.Op {
	return treefs.Op{Kind: treefs.OpCreateDir, Path: path}
}

func File(path, content string) treefs.Op {
	return treefs.Op{Kind: treefs.OpWriteFile, Path: path, Data: []byte(content)}
}
