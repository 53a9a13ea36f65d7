// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/olegiv/blogicum/internal/util"
)

// MediaURLPrefix is where the local backend's files are served.
const MediaURLPrefix = "/media/"

// Local stores files below a directory on disk.
type Local struct {
	root      string
	urlPrefix string
}

// NewLocal creates the root directory if needed.
func NewLocal(root, urlPrefix string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating media directory: %w", err)
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &Local{root: root, urlPrefix: urlPrefix}, nil
}

// Root returns the directory files are written to.
func (l *Local) Root() string {
	return l.root
}

// Save writes data under key.
func (l *Local) Save(_ context.Context, key string, data []byte, _ string) error {
	full, err := util.SafeJoinPath(l.root, key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	// write to a temp file first so readers never see a partial image
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (l *Local) Delete(_ context.Context, key string) error {
	full, err := util.SafeJoinPath(l.root, key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// List returns the regular files below prefix with their modification
// times.
func (l *Local) List(_ context.Context, prefix string) ([]Object, error) {
	dir, err := util.SafeJoinPath(l.root, prefix)
	if err != nil {
		return nil, err
	}

	var objects []Object
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		objects = append(objects, Object{Key: filepath.ToSlash(rel), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", prefix, err)
	}
	return objects, nil
}

// URL returns the public URL of key.
func (l *Local) URL(key string) string {
	return l.urlPrefix + path.Clean(key)
}

var _ Storage = (*Local)(nil)
