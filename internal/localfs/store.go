// Package localfs maps content objects onto a local directory tree: it
// walks a tree into File and Folder values and materialises decoded ones.
package localfs

import (
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/danmuck/wbxml/internal/protocol/content"
)

// Store is a directory tree scoped to root. Object names are relative
// slash-separated paths under it.
type Store struct {
	root string
	log  zerolog.Logger
}

// New resolves root to an absolute path and creates it if needed.
func New(root string, logger zerolog.Logger) (*Store, error) {
	resolved := strings.TrimSpace(root)
	if resolved == "" {
		return nil, fmt.Errorf("localfs: missing root")
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("localfs: create root: %w", err)
	}
	return &Store{root: abs, log: logger.With().Str("root", abs).Logger()}, nil
}

func (s *Store) Root() string { return s.root }

// Open opens the file stored under name for reading.
func (s *Store) Open(name string) (*os.File, error) {
	p, err := s.resolvePath(name)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

// Walk lists the tree in lexical order, parents before children. The root
// itself is not listed.
func (s *Store) Walk() ([]content.Item, error) {
	var items []content.Item
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == s.root {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			folder, err := content.NewFolder(name)
			if err != nil {
				return err
			}
			describe(&folder.Object, info)
			items = append(items, folder)
		case info.Mode().IsRegular():
			file, err := content.NewFile(name, info.Size())
			if err != nil {
				return err
			}
			describe(&file.Object, info)
			if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
				file.SetContentType(ct)
			}
			items = append(items, file)
		default:
			s.log.Debug().Str("path", name).Str("mode", info.Mode().String()).Msg("skipping non-regular entry")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("localfs: walk: %w", err)
	}
	return items, nil
}

func describe(o *content.Object, info fs.FileInfo) {
	o.SetModified(content.UTCTime(info.ModTime()))
	mode := info.Mode().Perm()
	o.SetAttributes(content.Attributes{
		Hidden:     strings.HasPrefix(info.Name(), "."),
		Readable:   mode&0o400 != 0,
		Writable:   mode&0o200 != 0,
		Executable: !info.IsDir() && mode&0o100 != 0,
	})
}

func (s *Store) resolvePath(name string) (string, error) {
	rel := strings.TrimSpace(name)
	if rel == "" {
		return "", fmt.Errorf("localfs: missing path")
	}
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("localfs: absolute path not allowed: %q", name)
	}
	p := filepath.Clean(filepath.Join(s.root, filepath.FromSlash(rel)))
	if p == s.root || !isWithin(p, s.root) {
		return "", fmt.Errorf("localfs: path escapes root: %q", name)
	}
	return p, nil
}

func isWithin(path string, root string) bool {
	p := filepath.Clean(path)
	r := filepath.Clean(root)
	if p == r {
		return true
	}
	return strings.HasPrefix(p, r+string(os.PathSeparator))
}
