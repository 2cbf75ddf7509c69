/*
   Copyright 2026 The Flagforge Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package auditlog

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"flagforge.dev/eventpipe/apis/sink/policy"
)

// FileOptions configures a rotating audit-log file.
type FileOptions struct {
	// Path is the path to the active audit-log file.
	Path string

	// Policy describes when and how rotation should happen.
	Policy policy.Rotation

	// FileMode controls permissions for created files. Zero means 0640.
	FileMode os.FileMode
}

// RotatingFile is a Writer that appends to an on-disk file and rotates it
// based on size, age and backup-count limits, optionally compressing
// rotated backups with gzip.
//
// Rotation naming scheme:
//   - Active file: Path.
//   - Rotated files: Path+".YYYYMMDD-HHMMSS" (UTC time), gzipped when
//     Policy.Compress is set.
type RotatingFile struct {
	mu      sync.Mutex
	path    string
	opt     FileOptions
	file    *os.File
	size    int64
	created time.Time
	closed  bool
}

var _ Writer = (*RotatingFile)(nil)

var (
	// ErrClosed indicates the writer has been closed.
	ErrClosed = errors.New("auditlog: closed")
	// ErrNoPath indicates an empty file path was provided.
	ErrNoPath = errors.New("auditlog: empty path")
)

// NewRotatingFile opens (or creates) the active audit-log file and
// initializes rotation state from its current size and mod time.
func NewRotatingFile(opt FileOptions) (*RotatingFile, error) {
	if opt.Path == "" {
		return nil, ErrNoPath
	}
	opt.Policy = normalizeRotationPolicy(opt.Policy)
	if opt.FileMode == 0 {
		opt.FileMode = 0o640
	}

	f := &RotatingFile{path: opt.Path, opt: opt}
	if err := f.openCurrent(); err != nil {
		return nil, err
	}
	return f, nil
}

// Write appends entry to the active file, rotating first if needed.
func (f *RotatingFile) Write(ctx context.Context, entry []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}
	if f.file == nil {
		if err := f.openCurrent(); err != nil {
			return err
		}
	}
	if f.shouldRotate(time.Now(), len(entry)) {
		if err := f.rotateLocked(); err != nil {
			return err
		}
	}

	n, err := f.file.Write(entry)
	f.size += int64(n)
	return err
}

// Flush calls file.Sync on the underlying file.
func (f *RotatingFile) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	if f.file == nil {
		return nil
	}
	return f.file.Sync()
}

// Close closes the active file. Idempotent.
func (f *RotatingFile) Close(ctx context.Context) error {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	if f.file != nil {
		err := f.file.Close()
		f.file = nil
		return err
	}
	return nil
}

func (f *RotatingFile) openCurrent() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	fh, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, f.opt.FileMode)
	if err != nil {
		return err
	}
	info, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return err
	}
	f.file = fh
	f.size = info.Size()
	f.created = info.ModTime()
	return nil
}

func (f *RotatingFile) shouldRotate(now time.Time, incomingBytes int) bool {
	p := f.opt.Policy
	if p.MaxSizeMB > 0 {
		maxSize := int64(p.MaxSizeMB) * 1024 * 1024
		if f.size+int64(incomingBytes) > maxSize {
			return true
		}
	}
	if p.MaxAgeDays > 0 {
		maxAge := time.Duration(p.MaxAgeDays) * 24 * time.Hour
		if now.Sub(f.created) >= maxAge {
			return true
		}
	}
	return false
}

func (f *RotatingFile) rotateLocked() error {
	if f.file != nil {
		_ = f.file.Close()
		f.file = nil
	}

	if _, err := os.Stat(f.path); err == nil {
		backup := rotatedFilename(f.path, time.Now())
		if err := os.Rename(f.path, backup); err != nil {
			return err
		}
		if f.opt.Policy.Compress {
			_ = compressFile(backup)
		}
		if f.opt.Policy.MaxBackups > 0 {
			_ = pruneBackups(f.path, f.opt.Policy.MaxBackups)
		}
	}

	return f.openCurrent()
}

func normalizeRotationPolicy(p policy.Rotation) policy.Rotation {
	if p.MaxSizeMB < 0 {
		p.MaxSizeMB = 0
	}
	if p.MaxAgeDays < 0 {
		p.MaxAgeDays = 0
	}
	if p.MaxBackups < 0 {
		p.MaxBackups = 0
	}
	return p
}

func rotatedFilename(basePath string, t time.Time) string {
	dir := filepath.Dir(basePath)
	name := filepath.Base(basePath)
	ts := t.UTC().Format("20060102-150405")
	return filepath.Join(dir, name+"."+ts)
}

func pruneBackups(basePath string, maxBackups int) error {
	if maxBackups <= 0 {
		return nil
	}

	dir := filepath.Dir(basePath)
	base := filepath.Base(basePath)
	prefix := base + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	type backup struct {
		path    string
		modTime time.Time
	}

	var backups []backup
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backup{path: filepath.Join(dir, name), modTime: info.ModTime()})
	}

	if len(backups) <= maxBackups {
		return nil
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].modTime.Before(backups[j].modTime)
	})

	for _, b := range backups[:len(backups)-maxBackups] {
		_ = os.Remove(b.path)
	}
	return nil
}

func compressFile(srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dstPath := srcPath + ".gz"
	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return err
	}
	defer dst.Close()

	gw := gzip.NewWriter(dst)
	if _, err := io.Copy(gw, src); err != nil {
		_ = gw.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		return err
	}
	return os.Remove(srcPath)
}
