package fstree

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	derrors "github.com/matzehuels/dirmap/pkg/errors"
)

// ScanOptions configures [Scan].
type ScanOptions struct {
	// Exclude holds exclusion patterns (see [Matcher]).
	Exclude []string

	// Logger receives debug output about skipped entries. Nil discards.
	Logger *log.Logger

	// OnDir, if set, is called before each directory is read.
	OnDir func(path string)
}

// Snapshot is the result of scanning a directory.
type Snapshot struct {
	ID        uuid.UUID
	RootPath  string
	ScannedAt time.Time
	Duration  time.Duration
	Root      *Node

	Files   int
	Dirs    int
	Skipped int

	// Errors holds per-entry failures (unreadable directories, vanished
	// files). The affected entries are left out of the tree.
	Errors []error
}

// NewSnapshot wraps an already built tree, e.g. one read from JSON.
func NewSnapshot(root *Node) *Snapshot {
	s := Summarize(root)
	rootPath := ""
	if root != nil {
		rootPath = root.Path
	}
	return &Snapshot{
		ID:        uuid.New(),
		RootPath:  rootPath,
		ScannedAt: time.Now(),
		Root:      root,
		Files:     s.Files,
		Dirs:      s.Dirs,
	}
}

// Scan walks the directory at root and returns its size tree.
//
// Real directories are descended into, regular files contribute their size,
// and everything else (symlinks, devices, sockets, pipes) is skipped. Failures
// below the root are collected in Snapshot.Errors; only an unreadable or
// non-directory root and context cancellation make Scan fail.
func Scan(ctx context.Context, root string, opts ScanOptions) (*Snapshot, error) {
	if err := derrors.ValidatePath(root); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidPath, err, "resolve %s", root)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, derrors.WrapFS(err, "stat %s", abs)
	}
	if !info.IsDir() {
		return nil, derrors.New(derrors.ErrCodeInvalidPath, "%s is not a directory", abs)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	s := &scanner{
		ctx:     ctx,
		base:    abs,
		matcher: NewMatcher(opts.Exclude),
		logger:  logger,
		onDir:   opts.OnDir,
		snap: &Snapshot{
			ID:        uuid.New(),
			RootPath:  abs,
			ScannedAt: time.Now(),
		},
	}

	start := time.Now()
	rootNode := &Node{Name: filepath.Base(abs), Path: abs, IsDir: true}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, derrors.WrapFS(err, "read %s", abs)
	}
	if err := s.fill(rootNode, entries); err != nil {
		return nil, err
	}

	s.snap.Root = rootNode
	s.snap.Dirs++
	s.snap.Duration = time.Since(start)
	return s.snap, nil
}

type scanner struct {
	ctx     context.Context
	base    string
	matcher *Matcher
	logger  *log.Logger
	onDir   func(string)
	snap    *Snapshot
}

// fill builds dir's children from entries, recursing into subdirectories.
func (s *scanner) fill(dir *Node, entries []fs.DirEntry) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	if s.onDir != nil {
		s.onDir(dir.Path)
	}

	children := make([]*Node, 0, len(entries))
	for _, e := range entries {
		p := filepath.Join(dir.Path, e.Name())
		rel, _ := filepath.Rel(s.base, p)
		if s.matcher.Match(rel, e.IsDir()) {
			s.logger.Debug("excluded", "path", p)
			s.snap.Skipped++
			continue
		}

		switch t := e.Type(); {
		case t.IsDir():
			child := &Node{Name: e.Name(), Path: p, IsDir: true}
			sub, err := os.ReadDir(p)
			if err != nil {
				s.snap.Errors = append(s.snap.Errors, derrors.WrapFS(err, "read %s", p))
				continue
			}
			if err := s.fill(child, sub); err != nil {
				return err
			}
			s.snap.Dirs++
			children = append(children, child)

		case t.IsRegular():
			info, err := e.Info()
			if err != nil {
				s.snap.Errors = append(s.snap.Errors, derrors.WrapFS(err, "stat %s", p))
				continue
			}
			s.snap.Files++
			children = append(children, &Node{Name: e.Name(), Path: p, Size: info.Size()})

		default:
			s.logger.Debug("unused entry", "path", p, "mode", fmt.Sprint(t))
			s.snap.Skipped++
		}
	}

	dir.adopt(children)
	return nil
}
