// Package report renders finished documents into publishable formats.
//
// Renderers are compiled in and registered by name; there is no runtime
// plugin loading. Built-in formats are markdown, latex, rst and typst.
//
//	r, err := report.Lookup("markdown")
//	if err != nil {
//	    return err
//	}
//	err = r.Render(w, result.Documents)
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/robinvdvleuten/billtext/ast"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Renderer writes documents in one output format.
type Renderer interface {
	// Name is the registry key, such as "markdown".
	Name() string
	// Extension is the conventional file extension including the dot.
	Extension() string
	Render(w io.Writer, docs []*ast.Document) error
}

// UnknownFormatError is returned by Lookup for unregistered names.
type UnknownFormatError struct {
	Name string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown report format %q (available: %v)", e.Name, Names())
}

var (
	mu        sync.RWMutex
	renderers = make(map[string]Renderer)
)

// Register makes a renderer available by its name. It panics if the name is
// empty or already taken.
func Register(r Renderer) {
	mu.Lock()
	defer mu.Unlock()

	name := r.Name()
	if name == "" {
		panic("report: Register with empty name")
	}
	if _, dup := renderers[name]; dup {
		panic("report: Register called twice for " + name)
	}
	renderers[name] = r
}

// Lookup returns the renderer registered under name.
func Lookup(name string) (Renderer, error) {
	mu.RLock()
	r, ok := renderers[name]
	mu.RUnlock()

	if !ok {
		return nil, &UnknownFormatError{Name: name}
	}
	return r, nil
}

// Names returns the registered format names in sorted order.
func Names() []string {
	mu.RLock()
	names := maps.Keys(renderers)
	mu.RUnlock()

	slices.Sort(names)
	return names
}

// Render looks up name and renders docs with it.
func Render(w io.Writer, name string, docs []*ast.Document) error {
	r, err := Lookup(name)
	if err != nil {
		return err
	}
	return r.Render(w, docs)
}

func init() {
	Register(markdown{})
	Register(latex{})
	Register(rst{})
	Register(typst{})
}
