package symbols

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"repoknowledge/internal/model"
)

// pythonExtractor walks a Python AST: function definitions (method if
// nested in a class); class definitions and their contained function
// definitions as methods; import/from-import statements. Exported iff the
// name does not start with an underscore. Docstring is the string
// expression that is the first statement of the body.
type pythonExtractor struct{}

func (pythonExtractor) Extract(src []byte, tree *sitter.Tree) model.ExtractedFile {
	var out model.ExtractedFile
	root := tree.RootNode()

	for _, child := range namedChildren(root) {
		switch child.Type() {
		case "function_definition":
			out.Symbols = append(out.Symbols, pyFunction(src, child, "", model.KindFunction))
		case "class_definition":
			out.Symbols = append(out.Symbols, pyClass(src, child)...)
		case "import_statement", "import_from_statement":
			out.Imports = append(out.Imports, pyImport(src, child))
		case "decorated_definition":
			out.Symbols = append(out.Symbols, pyDecorated(src, child, "")...)
		}
	}
	return out
}

func pyExported(name string) bool {
	return name != "" && !strings.HasPrefix(name, "_")
}

func pyFunction(src []byte, n *sitter.Node, parent string, kind model.SymbolKind) model.Symbol {
	nameNode := n.ChildByFieldName("name")
	name := text(src, nameNode)
	startLine, startCol, endLine, endCol := pointRange(n)
	return model.Symbol{
		Name:      name,
		Kind:      kind,
		Signature: signature(src, n),
		StartLine: startLine, StartCol: startCol, EndLine: endLine, EndCol: endCol,
		ParentName: parent,
		Docstring:  pyDocstring(src, n),
		Exported:   pyExported(name),
		Body:       text(src, n),
	}
}

// pyDocstring returns the string literal that is the first statement of
// the function/class body, with quote markers stripped.
func pyDocstring(src []byte, n *sitter.Node) string {
	body := n.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	s := text(src, str)
	s = strings.Trim(s, "\"'")
	s = strings.TrimPrefix(s, "\"\"")
	s = strings.TrimSuffix(s, "\"\"")
	return strings.TrimSpace(s)
}

func pyClass(src []byte, n *sitter.Node) []model.Symbol {
	nameNode := n.ChildByFieldName("name")
	name := text(src, nameNode)
	startLine, startCol, endLine, endCol := pointRange(n)
	out := []model.Symbol{{
		Name:      name,
		Kind:      model.KindClass,
		Signature: signature(src, n),
		StartLine: startLine, StartCol: startCol, EndLine: endLine, EndCol: endCol,
		Docstring: pyDocstring(src, n),
		Exported:  pyExported(name),
		Body:      text(src, n),
	}}

	body := n.ChildByFieldName("body")
	if body != nil {
		for _, member := range namedChildren(body) {
			switch member.Type() {
			case "function_definition":
				out = append(out, pyFunction(src, member, name, model.KindMethod))
			case "decorated_definition":
				out = append(out, pyDecorated(src, member, name)...)
			}
		}
	}
	return out
}

func pyDecorated(src []byte, n *sitter.Node, parent string) []model.Symbol {
	def := n.ChildByFieldName("definition")
	if def == nil {
		return nil
	}
	switch def.Type() {
	case "function_definition":
		kind := model.KindFunction
		if parent != "" {
			kind = model.KindMethod
		}
		return []model.Symbol{pyFunction(src, def, parent, kind)}
	case "class_definition":
		return pyClass(src, def)
	}
	return nil
}

func pyImport(src []byte, n *sitter.Node) model.Import {
	if n.Type() == "import_from_statement" {
		module := n.ChildByFieldName("module_name")
		var names []string
		for _, c := range namedChildren(n) {
			if c.Type() == "dotted_name" && c != module {
				names = append(names, text(src, c))
			}
			if c.Type() == "aliased_import" {
				if nameN := c.ChildByFieldName("name"); nameN != nil {
					names = append(names, text(src, nameN))
				}
			}
			if c.Type() == "wildcard_import" {
				names = append(names, "*")
			}
		}
		return model.Import{Source: text(src, module), Names: names}
	}

	// import_statement: one or more dotted_name / aliased_import children.
	var source string
	var names []string
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "dotted_name":
			source = text(src, c)
			names = append(names, source)
		case "aliased_import":
			if nameN := c.ChildByFieldName("name"); nameN != nil {
				source = text(src, nameN)
			}
			if aliasN := c.ChildByFieldName("alias"); aliasN != nil {
				names = append(names, text(src, aliasN))
			}
		}
	}
	return model.Import{Source: source, Names: names}
}
