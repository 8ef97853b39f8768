// Package lsp implements the document/workspace indexing spec §4.11
// describes: per-document cached text and AST, a workspace-wide symbol
// index built by scanning the project root (skipping target/, .git/,
// node_modules/, dist/), hover/references resolution, semantic-token
// classification that survives text interpolation, and idempotent
// formatting. Grounded on the original compiler's internal/repl defensive
// recover()-around-evaluation idiom (applied here to parsing instead)
// and the madstone-tech-loko pack entry's fsnotify-based workspace
// watching.
package lsp

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/sunholo/aivi/internal/ast"
	"github.com/sunholo/aivi/internal/diag"
	"github.com/sunholo/aivi/internal/lexer"
	"github.com/sunholo/aivi/internal/parser"
)

var skipDirs = map[string]bool{
	"target": true, ".git": true, "node_modules": true, "dist": true,
}

// Document is one open or indexed source file's cached state.
type Document struct {
	Path   string
	Text   string
	Tokens []lexer.Token
	Module *ast.Module
	Diags  []diag.Diagnostic
}

// WorkspaceIndex holds every indexed document under a project root,
// keyed by absolute path.
type WorkspaceIndex struct {
	Root string
	Docs map[string]*Document
}

// NewWorkspaceIndex scans root for `.aivi` files and parses each into a
// Document, recovering from any parser panic so one malformed file never
// takes down the whole index (spec §4.11, §7 "the LSP in particular
// catches semantic-pass panics and produces no diagnostics rather than
// crashing").
func NewWorkspaceIndex(root string) *WorkspaceIndex {
	idx := &WorkspaceIndex{Root: root, Docs: map[string]*Document{}}
	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".aivi") {
			idx.indexFile(path)
		}
		return nil
	})
	return idx
}

func (w *WorkspaceIndex) indexFile(path string) {
	defer func() { recover() }()
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	w.Update(path, string(data))
}

// Update re-parses path's text and refreshes its cached Document,
// recovering from parser panics (never crash the LSP on bad input).
func (w *WorkspaceIndex) Update(path, text string) {
	defer func() {
		if recover() != nil {
			w.Docs[path] = &Document{Path: path, Text: text}
		}
	}()
	tokens, _ := lexer.Lex(text)
	mod, diags := parser.Parse(text, path)
	w.Docs[path] = &Document{Path: path, Text: text, Tokens: tokens, Module: mod, Diags: diags}
}

// Watch starts an fsnotify watcher over root, re-indexing any `.aivi`
// file on write/create and dropping removed files from the index. The
// returned stop func closes the underlying watcher.
func (w *WorkspaceIndex) Watch() (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	filepath.WalkDir(w.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			watcher.Add(path)
		}
		return nil
	})

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(event.Name, ".aivi") {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					w.indexFile(event.Name)
				}
				if event.Op&fsnotify.Remove != 0 {
					delete(w.Docs, event.Name)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
