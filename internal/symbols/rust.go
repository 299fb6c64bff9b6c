package symbols

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"repoknowledge/internal/model"
)

// rustExtractor walks a Rust AST: function items; struct items (→ class),
// enum items (→ enum), trait items (→ interface); impl blocks attribute
// their inner functions as methods with parent = the impl target type;
// use declarations as imports. Exported iff a `pub` visibility modifier is
// present.
type rustExtractor struct{}

func (rustExtractor) Extract(src []byte, tree *sitter.Tree) model.ExtractedFile {
	var out model.ExtractedFile
	root := tree.RootNode()

	for _, child := range namedChildren(root) {
		switch child.Type() {
		case "function_item":
			out.Symbols = append(out.Symbols, rustItem(src, child, "", model.KindFunction))
		case "struct_item":
			out.Symbols = append(out.Symbols, rustItem(src, child, "", model.KindClass))
		case "enum_item":
			out.Symbols = append(out.Symbols, rustItem(src, child, "", model.KindEnum))
		case "trait_item":
			out.Symbols = append(out.Symbols, rustItem(src, child, "", model.KindInterface))
		case "impl_item":
			out.Symbols = append(out.Symbols, rustImpl(src, child)...)
		case "use_declaration":
			out.Imports = append(out.Imports, rustUse(src, child))
		}
	}
	return out
}

func rustExported(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "visibility_modifier" {
			return true
		}
	}
	return false
}

func rustItem(src []byte, n *sitter.Node, parent string, kind model.SymbolKind) model.Symbol {
	nameNode := n.ChildByFieldName("name")
	name := text(src, nameNode)
	startLine, startCol, endLine, endCol := pointRange(n)
	return model.Symbol{
		Name:      name,
		Kind:      kind,
		Signature: signature(src, n),
		StartLine: startLine, StartCol: startCol, EndLine: endLine, EndCol: endCol,
		ParentName: parent,
		Docstring:  docComment(src, n, "line_comment"),
		Exported:   rustExported(n),
		Body:       text(src, n),
	}
}

func rustImpl(src []byte, n *sitter.Node) []model.Symbol {
	typeNode := n.ChildByFieldName("type")
	parent := strings.TrimSpace(text(src, typeNode))
	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var out []model.Symbol
	for _, member := range namedChildren(body) {
		if member.Type() == "function_item" {
			out = append(out, rustItem(src, member, parent, model.KindMethod))
		}
	}
	return out
}

func rustUse(src []byte, n *sitter.Node) model.Import {
	raw := strings.TrimSuffix(strings.TrimPrefix(text(src, n), "use "), ";")
	raw = strings.TrimSpace(raw)
	name := raw
	if i := strings.LastIndex(raw, "::"); i >= 0 {
		name = raw[i+2:]
	}
	name = strings.Trim(name, "{}")
	names := strings.Split(name, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	return model.Import{Source: raw, Names: names}
}
