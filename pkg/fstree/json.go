package fstree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	derrors "github.com/matzehuels/dirmap/pkg/errors"
)

type snapshotJSON struct {
	ID        string    `json:"id,omitempty"`
	RootPath  string    `json:"root_path,omitempty"`
	ScannedAt time.Time `json:"scanned_at,omitzero"`
	Files     int       `json:"files"`
	Dirs      int       `json:"dirs"`
	Skipped   int       `json:"skipped,omitempty"`
	Errors    int       `json:"errors,omitempty"`
	Root      *nodeJSON `json:"root"`
}

type nodeJSON struct {
	Name     string      `json:"name"`
	Size     int64       `json:"size"`
	Dir      bool        `json:"dir,omitempty"`
	Children []*nodeJSON `json:"children,omitempty"`
}

// WriteJSON encodes a snapshot as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(s *Snapshot, w io.Writer) error {
	out := snapshotJSON{
		RootPath:  s.RootPath,
		ScannedAt: s.ScannedAt,
		Files:     s.Files,
		Dirs:      s.Dirs,
		Skipped:   s.Skipped,
		Errors:    len(s.Errors),
		Root:      toJSON(s.Root),
	}
	if s.ID != uuid.Nil {
		out.ID = s.ID.String()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the JSON encoding of s.
func Marshal(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toJSON(n *Node) *nodeJSON {
	if n == nil {
		return nil
	}
	out := &nodeJSON{Name: n.Name, Size: n.Size, Dir: n.IsDir}
	if len(n.Children) > 0 {
		out.Children = make([]*nodeJSON, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = toJSON(c)
		}
	}
	return out
}

// ReadJSON decodes a snapshot written by [WriteJSON].
//
// Sizes and child order are taken as written; the decoded tree is then run
// through [Validate], so a document whose directory sizes do not add up, or
// whose children are not ordered largest first, is rejected with an
// INVALID_TREE error instead of being silently repaired.
//
// A missing or malformed id is replaced by a fresh one.
func ReadJSON(r io.Reader) (*Snapshot, error) {
	var data snapshotJSON
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "decode tree")
	}
	if data.Root == nil {
		return nil, derrors.New(derrors.ErrCodeInvalidTree, "document has no root")
	}

	rootPath := data.RootPath
	if rootPath == "" {
		rootPath = data.Root.Name
	}
	root := fromJSON(data.Root, nil, rootPath)
	if err := Validate(root); err != nil {
		return nil, err
	}

	s := &Snapshot{
		RootPath:  rootPath,
		ScannedAt: data.ScannedAt,
		Root:      root,
		Files:     data.Files,
		Dirs:      data.Dirs,
		Skipped:   data.Skipped,
	}
	if id, err := uuid.Parse(data.ID); err == nil {
		s.ID = id
	} else {
		s.ID = uuid.New()
	}
	return s, nil
}

func fromJSON(j *nodeJSON, parent *Node, p string) *Node {
	n := &Node{Name: j.Name, Path: p, Size: j.Size, IsDir: j.Dir, parent: parent}
	if len(j.Children) > 0 {
		n.Children = make([]*Node, 0, len(j.Children))
		for _, c := range j.Children {
			if c == nil {
				continue
			}
			n.Children = append(n.Children, fromJSON(c, n, filepath.Join(p, c.Name)))
		}
	}
	return n
}

// ImportJSON reads a snapshot from the JSON file at path.
func ImportJSON(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, derrors.WrapFS(err, "open %s", path)
	}
	defer f.Close()

	s, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ExportJSON writes s to the file at path, creating or truncating it.
func ExportJSON(s *Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return derrors.WrapFS(err, "create %s", path)
	}
	if err := WriteJSON(s, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
