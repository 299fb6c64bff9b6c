// Package symbols walks a tree-sitter AST and produces the symbols and
// import declarations of §4.2: a family of independent per-language
// strategies behind one Extractor interface, registered by language tag in
// a Registry.
package symbols

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"repoknowledge/internal/model"
)

// maxSignatureLen bounds the signature string extracted for a symbol.
const maxSignatureLen = 200

// Extractor produces symbols and imports from a parsed AST for one
// language.
type Extractor interface {
	Extract(src []byte, tree *sitter.Tree) model.ExtractedFile
}

// Registry maps a language tag to its Extractor. Adding a language is one
// new strategy file plus one registry entry.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry returns a registry with every built-in language strategy
// wired.
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[string]Extractor)}
	r.Register("go", goExtractor{})
	r.Register("java", javaExtractor{})
	r.Register("javascript", jsExtractor{typescript: false})
	r.Register("typescript", jsExtractor{typescript: true})
	r.Register("tsx", jsExtractor{typescript: true})
	r.Register("python", pythonExtractor{})
	r.Register("rust", rustExtractor{})
	return r
}

// Register wires an Extractor for a language tag.
func (r *Registry) Register(language string, e Extractor) {
	r.extractors[language] = e
}

// Get returns the Extractor for language, and whether one is registered.
func (r *Registry) Get(language string) (Extractor, bool) {
	e, ok := r.extractors[language]
	return e, ok
}

// --- shared AST helpers ---

func text(src []byte, n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(src)
}

func pointRange(n *sitter.Node) (startLine, startCol, endLine, endCol int) {
	sp, ep := n.StartPoint(), n.EndPoint()
	return int(sp.Row) + 1, int(sp.Column) + 1, int(ep.Row) + 1, int(ep.Column) + 1
}

// signature truncates the node's text at the first body opener ('{', "=>",
// or a newline for type-alias-like single-line forms), bounded to
// maxSignatureLen.
func signature(src []byte, n *sitter.Node) string {
	full := text(src, n)
	cut := len(full)
	if i := strings.Index(full, "{"); i >= 0 && i < cut {
		cut = i
	}
	if i := strings.Index(full, "=>"); i >= 0 && i < cut {
		cut = i
	}
	if i := strings.Index(full, "\n"); i >= 0 && i < cut {
		cut = i
	}
	sig := strings.TrimRight(full[:cut], " \t\r\n")
	if len(sig) > maxSignatureLen {
		sig = sig[:maxSignatureLen]
	}
	return sig
}

// docComment returns the immediately preceding comment node's text with
// comment markers stripped, or "" if the previous sibling is not a
// comment.
func docComment(src []byte, n *sitter.Node, commentType string) string {
	prev := n.PrevSibling()
	if prev == nil || prev.Type() != commentType {
		return ""
	}
	return stripCommentMarkers(text(src, prev))
}

func stripCommentMarkers(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "/**"):
		s = strings.TrimSuffix(s[3:], "*/")
	case strings.HasPrefix(s, "/*"):
		s = strings.TrimSuffix(s[2:], "*/")
	case strings.HasPrefix(s, "///"):
		s = s[3:]
	case strings.HasPrefix(s, "//"):
		s = s[2:]
	case strings.HasPrefix(s, "#"):
		s = s[1:]
	}
	return strings.TrimSpace(s)
}

// namedChildren returns every named child of n.
func namedChildren(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, n.NamedChild(i))
	}
	return out
}

// descendantsByType walks n's subtree (excluding n itself) collecting
// every node whose Type() matches one of types. It keeps descending into
// matches; it does not descend into nodes whose Type() is in stopAt (such a
// node is still collected if it also matches types).
func descendantsByType(n *sitter.Node, stopAt map[string]bool, types map[string]bool, out *[]*sitter.Node) {
	for _, c := range namedChildren(n) {
		if types[c.Type()] {
			*out = append(*out, c)
		}
		if stopAt[c.Type()] {
			continue
		}
		descendantsByType(c, stopAt, types, out)
	}
}
