package symbols

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"repoknowledge/internal/model"
)

// javaExtractor walks a Java AST (a domain-stack addition named by
// SPEC_FULL.md since Java is a first-class "code" language in the
// extension table): class declarations (→ class), interface declarations
// (→ interface), enum declarations (→ enum); method declarations inside a
// type body as methods with parent = the enclosing type name; field
// declarations as properties with parent = the enclosing type; import
// declarations as imports. Exported iff a `public` modifier is present.
type javaExtractor struct{}

func (javaExtractor) Extract(src []byte, tree *sitter.Tree) model.ExtractedFile {
	var out model.ExtractedFile
	root := tree.RootNode()

	for _, child := range namedChildren(root) {
		switch child.Type() {
		case "class_declaration":
			out.Symbols = append(out.Symbols, javaType(src, child, model.KindClass)...)
		case "interface_declaration":
			out.Symbols = append(out.Symbols, javaType(src, child, model.KindInterface)...)
		case "enum_declaration":
			out.Symbols = append(out.Symbols, javaType(src, child, model.KindEnum)...)
		case "import_declaration":
			out.Imports = append(out.Imports, javaImport(src, child))
		}
	}
	return out
}

func javaHasModifier(src []byte, n *sitter.Node, modifier string) bool {
	mods := n.ChildByFieldName("modifiers")
	if mods == nil {
		return false
	}
	return strings.Contains(text(src, mods), modifier)
}

func javaType(src []byte, n *sitter.Node, kind model.SymbolKind) []model.Symbol {
	nameNode := n.ChildByFieldName("name")
	name := text(src, nameNode)
	startLine, startCol, endLine, endCol := pointRange(n)
	out := []model.Symbol{{
		Name:      name,
		Kind:      kind,
		Signature: signature(src, n),
		StartLine: startLine, StartCol: startCol, EndLine: endLine, EndCol: endCol,
		Docstring: docComment(src, n, "block_comment"),
		Exported:  javaHasModifier(src, n, "public"),
		Body:      text(src, n),
	}}

	body := n.ChildByFieldName("body")
	if body == nil {
		return out
	}
	for _, member := range namedChildren(body) {
		switch member.Type() {
		case "method_declaration", "constructor_declaration":
			out = append(out, javaMember(src, member, name, model.KindMethod))
		case "field_declaration":
			out = append(out, javaField(src, member, name)...)
		}
	}
	return out
}

func javaMember(src []byte, n *sitter.Node, parent string, kind model.SymbolKind) model.Symbol {
	nameNode := n.ChildByFieldName("name")
	name := text(src, nameNode)
	startLine, startCol, endLine, endCol := pointRange(n)
	return model.Symbol{
		Name:      name,
		Kind:      kind,
		Signature: signature(src, n),
		StartLine: startLine, StartCol: startCol, EndLine: endLine, EndCol: endCol,
		ParentName: parent,
		Docstring:  docComment(src, n, "block_comment"),
		Exported:   javaHasModifier(src, n, "public"),
		Body:       text(src, n),
	}
}

func javaField(src []byte, n *sitter.Node, parent string) []model.Symbol {
	var out []model.Symbol
	startLine, startCol, endLine, endCol := pointRange(n)
	exported := javaHasModifier(src, n, "public")
	doc := docComment(src, n, "block_comment")
	body := text(src, n)
	for _, declarator := range namedChildren(n) {
		if declarator.Type() != "variable_declarator" {
			continue
		}
		nameNode := declarator.ChildByFieldName("name")
		name := text(src, nameNode)
		out = append(out, model.Symbol{
			Name:      name,
			Kind:      model.KindProperty,
			Signature: signature(src, n),
			StartLine: startLine, StartCol: startCol, EndLine: endLine, EndCol: endCol,
			ParentName: parent,
			Docstring:  doc,
			Exported:   exported,
			Body:       body,
		})
	}
	return out
}

func javaImport(src []byte, n *sitter.Node) model.Import {
	raw := strings.TrimSuffix(strings.TrimPrefix(text(src, n), "import "), ";")
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "static "))
	name := raw
	if i := strings.LastIndex(raw, "."); i >= 0 {
		name = raw[i+1:]
	}
	return model.Import{Source: raw, Names: []string{name}}
}
