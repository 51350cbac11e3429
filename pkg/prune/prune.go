// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package prune removes directories left empty by single-file moves,
// bottom-up, bounded by a root it never crosses.
package prune

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/syncmv/pkg/log"
)

// 📋 Request scopes one prune invocation. RootBoundary is never deleted or
// inspected above; Scope is the subtree to clean and must sit at or below
// the boundary.
type Request struct {
	RootBoundary string
	Scope        string
}

// 🧹 Pruner deletes empty directories. It is stateless: every invocation
// carries its full scope in the request.
type Pruner struct {
	runLog *log.Logger
}

// 🏭 New creates a pruner. runLog may be nil.
func New(runLog *log.Logger) *Pruner {
	return &Pruner{runLog: runLog}
}

// 🎯 Prune removes empty directories inside the request scope, then walks
// upward from the scope deleting empty ancestors until it hits a non-empty
// or missing directory, or the root boundary. Every step is best-effort: a
// failed deletion is logged and skipped, never propagated.
func (p *Pruner) Prune(req Request) error {
	root := filepath.Clean(req.RootBoundary)
	scope := filepath.Clean(req.Scope)

	if scope != root && !within(root, scope) {
		return errors.Errorf("scope %s is outside root boundary %s", scope, root)
	}

	// Scope may already be gone: a previous prune or a concurrent writer
	// could have removed it
	if _, err := os.Stat(scope); err != nil {
		return nil
	}

	p.pruneSubtree(root, scope)
	p.pruneAncestors(root, filepath.Dir(scope))
	return nil
}

// 🌳 pruneSubtree deletes empty directories under scope, deepest first,
// then scope itself when it emptied and sits strictly inside the boundary
func (p *Pruner) pruneSubtree(root, scope string) {
	dirs, err := collectDirs(scope)
	if err != nil {
		p.warnf("enumerating directories under %s: %v", scope, err)
	}

	// True segment-count depth, not lexicographic order: a path sorting
	// late can still be shallow
	sort.SliceStable(dirs, func(i, j int) bool {
		return depth(dirs[i]) > depth(dirs[j])
	})

	for _, dir := range dirs {
		p.removeIfEmpty(root, dir)
	}
	p.removeIfEmpty(root, scope)
}

// ⬆️ pruneAncestors walks upward from dir, deleting empty directories,
// stopping at the first missing or non-empty one and unconditionally at the
// root boundary
func (p *Pruner) pruneAncestors(root, dir string) {
	for within(root, dir) {
		if _, err := os.Stat(dir); err != nil {
			return
		}
		empty, err := isEmpty(dir)
		if err != nil {
			p.warnf("checking %s: %v", dir, err)
			return
		}
		if !empty {
			return
		}
		if err := os.Remove(dir); err != nil {
			p.warnf("removing %s: %v", dir, err)
			return
		}
		dir = filepath.Dir(dir)
	}
}

// 🗑️ removeIfEmpty re-checks emptiness at deletion time and deletes the
// directory when it is still empty and strictly inside the boundary
func (p *Pruner) removeIfEmpty(root, dir string) {
	if !within(root, dir) {
		return
	}
	empty, err := isEmpty(dir)
	if err != nil {
		// Vanished or unreadable: skip, later steps still run
		if !os.IsNotExist(err) {
			p.warnf("checking %s: %v", dir, err)
		}
		return
	}
	if !empty {
		return
	}
	// A concurrent writer may add content between the check and the
	// remove; os.Remove then fails on the non-empty directory and the
	// failure is skipped
	if err := os.Remove(dir); err != nil {
		p.warnf("removing %s: %v", dir, err)
	}
}

// 📜 collectDirs lists every directory strictly under scope
func collectDirs(scope string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(scope, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, the rest of the walk continues
			return nil
		}
		if d.IsDir() && path != scope {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// 🔍 isEmpty reports whether dir holds no entries. Entry count is
// byte-agnostic, so names with arbitrary Unicode never misclassify a
// non-empty directory.
func isEmpty(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

// 📏 depth counts path segments
func depth(path string) int {
	return len(strings.Split(filepath.Clean(path), string(filepath.Separator)))
}

// 🚧 within reports whether path sits strictly below root
func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// 📝 warnf logs a best-effort failure
func (p *Pruner) warnf(format string, args ...interface{}) {
	if p.runLog != nil {
		p.runLog.Warnf(format, args...)
	}
}
