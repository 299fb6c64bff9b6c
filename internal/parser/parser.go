// Package parser wraps tree-sitter behind the minimal contract §6 of the
// spec names: initialize a grammar registry once, look up a language
// handle by tag, and parse source into a tree. Grammar loading is kept
// pluggable — a caller can swap in a GrammarRegistry covering a different
// or partial language set without touching SymbolExtractor or Chunker.
package parser

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// GrammarRegistry maps a language tag (as produced by langdetect.Detect) to
// a tree-sitter grammar handle.
type GrammarRegistry struct {
	mu       sync.RWMutex
	grammars map[string]*sitter.Language
}

// NewGrammarRegistry returns a registry with no grammars wired.
func NewGrammarRegistry() *GrammarRegistry {
	return &GrammarRegistry{grammars: make(map[string]*sitter.Language)}
}

// DefaultGrammarRegistry wires the pack's bundled tree-sitter grammars for
// every language in the "code" subset (§4.1): typescript, tsx, javascript,
// python, rust, go, java.
func DefaultGrammarRegistry() *GrammarRegistry {
	r := NewGrammarRegistry()
	r.Register("go", golang.GetLanguage())
	r.Register("java", java.GetLanguage())
	r.Register("javascript", javascript.GetLanguage())
	r.Register("python", python.GetLanguage())
	r.Register("rust", rust.GetLanguage())
	r.Register("tsx", tsx.GetLanguage())
	r.Register("typescript", typescript.GetLanguage())
	return r
}

// Register wires a grammar handle for a language tag.
func (g *GrammarRegistry) Register(language string, grammar *sitter.Language) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.grammars[language] = grammar
}

// GetLanguage returns the grammar handle for language, or nil if no
// grammar is registered — this is the GrammarUnavailable path.
func (g *GrammarRegistry) GetLanguage(language string) *sitter.Language {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.grammars[language]
}

// Parser parses source bytes into a tree-sitter AST for a registered
// language. It returns a nil tree (and no error) when the grammar is
// unavailable, and returns the error when the parse itself fails; in both
// cases callers skip symbol extraction for that file and it remains
// text-searchable.
type Parser struct {
	registry *GrammarRegistry
}

// New creates a Parser backed by registry.
func New(registry *GrammarRegistry) *Parser {
	return &Parser{registry: registry}
}

// GetLanguage exposes the underlying grammar lookup.
func (p *Parser) GetLanguage(language string) *sitter.Language {
	return p.registry.GetLanguage(language)
}

// Parse parses src as language and returns the resulting tree, or nil if
// the grammar is unavailable. A genuine parse error from tree-sitter is
// returned so the caller can log it (ParseFailure); tree-sitter itself
// rarely errors (it produces an ERROR node tree instead), but ParseCtx can
// fail on a cancelled context.
func (p *Parser) Parse(ctx context.Context, src []byte, language string) (*sitter.Tree, error) {
	lang := p.registry.GetLanguage(language)
	if lang == nil {
		return nil, nil
	}
	sp := sitter.NewParser()
	sp.SetLanguage(lang)
	tree, err := sp.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return tree, nil
}
