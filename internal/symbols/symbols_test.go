package symbols

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"github.com/stretchr/testify/require"

	"repoknowledge/internal/model"
)

func parse(t *testing.T, lang *sitter.Language, src string) *sitter.Tree {
	t.Helper()
	p := sitter.NewParser()
	p.SetLanguage(lang)
	tree, err := p.ParseCtx(context.Background(), nil, []byte(src))
	require.NoError(t, err)
	return tree
}

func TestGoExtractor(t *testing.T) {
	src := `package demo

// Greet says hello.
func Greet(name string) string {
	return "hi " + name
}

type Widget struct {
	Name string
}

func (w *Widget) Label() string {
	return w.Name
}

func helper() {}
`
	tree := parse(t, golang.GetLanguage(), src)
	out := goExtractor{}.Extract([]byte(src), tree)

	byName := map[string]model.Symbol{}
	for _, s := range out.Symbols {
		byName[s.Name] = s
	}

	greet, ok := byName["Greet"]
	require.True(t, ok)
	require.Equal(t, model.KindFunction, greet.Kind)
	require.True(t, greet.Exported)
	require.Equal(t, "Greet says hello.", greet.Docstring)

	widget, ok := byName["Widget"]
	require.True(t, ok)
	require.Equal(t, model.KindClass, widget.Kind)
	require.True(t, widget.Exported)

	label, ok := byName["Label"]
	require.True(t, ok)
	require.Equal(t, model.KindMethod, label.Kind)
	require.Equal(t, "Widget", label.ParentName)

	h, ok := byName["helper"]
	require.True(t, ok)
	require.False(t, h.Exported)
}

func TestPythonExtractor(t *testing.T) {
	src := `import os
from collections import OrderedDict

class Greeter:
    """Greets people."""

    def hello(self, name):
        return "hi " + name

def _private():
    pass
`
	tree := parse(t, python.GetLanguage(), src)
	out := pythonExtractor{}.Extract([]byte(src), tree)

	byName := map[string]model.Symbol{}
	for _, s := range out.Symbols {
		byName[s.Name] = s
	}

	greeter, ok := byName["Greeter"]
	require.True(t, ok)
	require.Equal(t, model.KindClass, greeter.Kind)
	require.Equal(t, "Greets people.", greeter.Docstring)
	require.True(t, greeter.Exported)

	hello, ok := byName["hello"]
	require.True(t, ok)
	require.Equal(t, model.KindMethod, hello.Kind)
	require.Equal(t, "Greeter", hello.ParentName)

	priv, ok := byName["_private"]
	require.True(t, ok)
	require.False(t, priv.Exported)

	require.Len(t, out.Imports, 2)
}

func TestTypeScriptExtractor(t *testing.T) {
	src := `export interface Shape {
  area(): number;
}

export function area(s: Shape): number {
  return s.area();
}

const double = (n: number) => n * 2;

export class Circle implements Shape {
  radius: number;
  area(): number {
    return this.radius * this.radius * 3.14;
  }
}
`
	tree := parse(t, typescript.GetLanguage(), src)
	out := jsExtractor{typescript: true}.Extract([]byte(src), tree)

	// Keep the first symbol of each name: "area" is both the top-level
	// function and, later in the source, Circle's method.
	byName := map[string]model.Symbol{}
	for _, s := range out.Symbols {
		if _, seen := byName[s.Name]; !seen {
			byName[s.Name] = s
		}
	}

	shape, ok := byName["Shape"]
	require.True(t, ok)
	require.Equal(t, model.KindInterface, shape.Kind)
	require.True(t, shape.Exported)

	areaFn, ok := byName["area"]
	require.True(t, ok)
	require.Equal(t, model.KindFunction, areaFn.Kind)
	require.True(t, areaFn.Exported)

	double, ok := byName["double"]
	require.True(t, ok)
	require.Equal(t, model.KindFunction, double.Kind)
	require.False(t, double.Exported)

	circle, ok := byName["Circle"]
	require.True(t, ok)
	require.Equal(t, model.KindClass, circle.Kind)
	require.True(t, circle.Exported)
}
