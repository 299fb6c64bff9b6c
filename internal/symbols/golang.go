package symbols

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"repoknowledge/internal/model"
)

// goExtractor walks a Go AST: function declarations; method declarations
// (parent = receiver type name, pointer/parens stripped); type
// declarations specialized by underlying type (struct → class, interface →
// interface, else → type); import specs. A symbol is exported iff its
// first character is uppercase.
type goExtractor struct{}

func (goExtractor) Extract(src []byte, tree *sitter.Tree) model.ExtractedFile {
	var out model.ExtractedFile
	root := tree.RootNode()

	for _, child := range namedChildren(root) {
		switch child.Type() {
		case "function_declaration":
			out.Symbols = append(out.Symbols, goFunction(src, child))
		case "method_declaration":
			out.Symbols = append(out.Symbols, goMethod(src, child))
		case "type_declaration":
			out.Symbols = append(out.Symbols, goTypeDecl(src, child)...)
		case "import_declaration":
			out.Imports = append(out.Imports, goImports(src, child)...)
		}
	}
	return out
}

func goExported(name string) bool {
	if name == "" {
		return false
	}
	r := name[0]
	return r >= 'A' && r <= 'Z'
}

func goFunction(src []byte, n *sitter.Node) model.Symbol {
	nameNode := n.ChildByFieldName("name")
	name := text(src, nameNode)
	startLine, startCol, endLine, endCol := pointRange(n)
	return model.Symbol{
		Name:      name,
		Kind:      model.KindFunction,
		Signature: signature(src, n),
		StartLine: startLine, StartCol: startCol, EndLine: endLine, EndCol: endCol,
		Docstring: docComment(src, n, "comment"),
		Exported:  goExported(name),
		Body:      text(src, n),
	}
}

func goMethod(src []byte, n *sitter.Node) model.Symbol {
	nameNode := n.ChildByFieldName("name")
	name := text(src, nameNode)
	parent := goReceiverTypeName(src, n.ChildByFieldName("receiver"))
	startLine, startCol, endLine, endCol := pointRange(n)
	return model.Symbol{
		Name:      name,
		Kind:      model.KindMethod,
		Signature: signature(src, n),
		StartLine: startLine, StartCol: startCol, EndLine: endLine, EndCol: endCol,
		ParentName: parent,
		Docstring:  docComment(src, n, "comment"),
		Exported:   goExported(name),
		Body:       text(src, n),
	}
}

// goReceiverTypeName extracts the receiver type name from a
// parameter_list, stripping pointer "*" and surrounding parens.
func goReceiverTypeName(src []byte, receiver *sitter.Node) string {
	if receiver == nil {
		return ""
	}
	raw := text(src, receiver)
	raw = strings.Trim(raw, "()")
	raw = strings.TrimSpace(raw)
	// "r *Foo" or "r Foo" -> take the last field, strip '*' and generics.
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	typ := fields[len(fields)-1]
	typ = strings.TrimPrefix(typ, "*")
	if i := strings.Index(typ, "["); i >= 0 {
		typ = typ[:i]
	}
	return typ
}

func goTypeDecl(src []byte, n *sitter.Node) []model.Symbol {
	var out []model.Symbol
	for _, spec := range namedChildren(n) {
		if spec.Type() != "type_spec" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		name := text(src, nameNode)
		underlying := spec.ChildByFieldName("type")
		kind := model.KindType
		if underlying != nil {
			switch underlying.Type() {
			case "struct_type":
				kind = model.KindClass
			case "interface_type":
				kind = model.KindInterface
			}
		}
		startLine, startCol, endLine, endCol := pointRange(spec)
		out = append(out, model.Symbol{
			Name:      name,
			Kind:      kind,
			Signature: signature(src, spec),
			StartLine: startLine, StartCol: startCol, EndLine: endLine, EndCol: endCol,
			Docstring: docComment(src, n, "comment"),
			Exported:  goExported(name),
			Body:      text(src, n),
		})
	}
	return out
}

func goImports(src []byte, n *sitter.Node) []model.Import {
	var out []model.Import
	specs := namedChildren(n)
	// import ( ... ) wraps specs in an import_spec_list.
	if len(specs) == 1 && specs[0].Type() == "import_spec_list" {
		specs = namedChildren(specs[0])
	}
	for _, spec := range specs {
		if spec.Type() != "import_spec" {
			continue
		}
		pathNode := spec.ChildByFieldName("path")
		raw := strings.Trim(text(src, pathNode), "\"")
		name := raw
		if i := strings.LastIndex(raw, "/"); i >= 0 {
			name = raw[i+1:]
		}
		if nameNode := spec.ChildByFieldName("name"); nameNode != nil {
			name = text(src, nameNode)
		}
		out = append(out, model.Import{Source: raw, Names: []string{name}})
	}
	return out
}
