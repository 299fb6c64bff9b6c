package symbols

import (
	sitter "github.com/smacker/go-tree-sitter"

	"repoknowledge/internal/model"
)

// jsExtractor walks a JavaScript/TypeScript/TSX AST: function
// declarations; arrow-function-valued variable declarators; class
// declarations (plus methods and property/field definitions of the class
// with the class as parent); import statements. When typescript is true,
// interface declarations, type aliases, and enum declarations are also
// recognized. Export detection: wrapped in an export_statement, or the
// declaration node itself carries a preceding "export" token sibling.
type jsExtractor struct {
	typescript bool
}

func (e jsExtractor) Extract(src []byte, tree *sitter.Tree) model.ExtractedFile {
	var out model.ExtractedFile
	root := tree.RootNode()

	for _, child := range namedChildren(root) {
		e.visitTop(src, child, false, &out)
	}
	return out
}

func (e jsExtractor) visitTop(src []byte, n *sitter.Node, exported bool, out *model.ExtractedFile) {
	switch n.Type() {
	case "export_statement":
		exported = true
		decl := n.ChildByFieldName("declaration")
		if decl != nil {
			e.visitTop(src, decl, exported, out)
			return
		}
		// export { a, b } or export * from "..." carries no declaration.
		if src2 := n.ChildByFieldName("source"); src2 != nil {
			out.Imports = append(out.Imports, model.Import{Source: stripQuotes(text(src, src2))})
		}
	case "function_declaration", "generator_function_declaration":
		out.Symbols = append(out.Symbols, jsFunction(src, n, exported))
	case "class_declaration":
		out.Symbols = append(out.Symbols, jsClass(src, n, exported)...)
	case "lexical_declaration", "variable_declaration":
		out.Symbols = append(out.Symbols, jsArrowDeclarators(src, n, exported)...)
	case "interface_declaration":
		if e.typescript {
			out.Symbols = append(out.Symbols, jsSimpleType(src, n, model.KindInterface, exported))
		}
	case "type_alias_declaration":
		if e.typescript {
			out.Symbols = append(out.Symbols, jsTypeAlias(src, n, exported))
		}
	case "enum_declaration":
		if e.typescript {
			out.Symbols = append(out.Symbols, jsSimpleType(src, n, model.KindEnum, exported))
		}
	case "import_statement":
		out.Imports = append(out.Imports, jsImport(src, n))
	}
}

func jsFunction(src []byte, n *sitter.Node, exported bool) model.Symbol {
	nameNode := n.ChildByFieldName("name")
	name := text(src, nameNode)
	startLine, startCol, endLine, endCol := pointRange(n)
	return model.Symbol{
		Name:      name,
		Kind:      model.KindFunction,
		Signature: signature(src, n),
		StartLine: startLine, StartCol: startCol, EndLine: endLine, EndCol: endCol,
		Docstring: docComment(src, n, "comment"),
		Exported:  exported,
		Body:      text(src, n),
	}
}

func jsClass(src []byte, n *sitter.Node, exported bool) []model.Symbol {
	nameNode := n.ChildByFieldName("name")
	name := text(src, nameNode)
	startLine, startCol, endLine, endCol := pointRange(n)
	out := []model.Symbol{{
		Name:      name,
		Kind:      model.KindClass,
		Signature: signature(src, n),
		StartLine: startLine, StartCol: startCol, EndLine: endLine, EndCol: endCol,
		Docstring: docComment(src, n, "comment"),
		Exported:  exported,
		Body:      text(src, n),
	}}

	body := n.ChildByFieldName("body")
	if body == nil {
		return out
	}
	for _, member := range namedChildren(body) {
		switch member.Type() {
		case "method_definition":
			out = append(out, jsMember(src, member, name, model.KindMethod, exported))
		case "public_field_definition", "field_definition":
			out = append(out, jsMember(src, member, name, model.KindProperty, exported))
		}
	}
	return out
}

func jsMember(src []byte, n *sitter.Node, parent string, kind model.SymbolKind, classExported bool) model.Symbol {
	nameNode := n.ChildByFieldName("name")
	name := text(src, nameNode)
	startLine, startCol, endLine, endCol := pointRange(n)
	return model.Symbol{
		Name:      name,
		Kind:      kind,
		Signature: signature(src, n),
		StartLine: startLine, StartCol: startCol, EndLine: endLine, EndCol: endCol,
		ParentName: parent,
		Docstring:  docComment(src, n, "comment"),
		Exported:   classExported,
		Body:       text(src, n),
	}
}

// jsArrowDeclarators finds `const foo = () => {...}` / `let bar = async
// () => ...` declarators within a lexical/variable declaration.
func jsArrowDeclarators(src []byte, n *sitter.Node, exported bool) []model.Symbol {
	var out []model.Symbol
	for _, declarator := range namedChildren(n) {
		if declarator.Type() != "variable_declarator" {
			continue
		}
		value := declarator.ChildByFieldName("value")
		if value == nil || (value.Type() != "arrow_function" && value.Type() != "function") {
			continue
		}
		nameNode := declarator.ChildByFieldName("name")
		name := text(src, nameNode)
		startLine, startCol, endLine, endCol := pointRange(declarator)
		out = append(out, model.Symbol{
			Name:      name,
			Kind:      model.KindFunction,
			Signature: signature(src, declarator),
			StartLine: startLine, StartCol: startCol, EndLine: endLine, EndCol: endCol,
			Docstring: docComment(src, n, "comment"),
			Exported:  exported,
			Body:      text(src, declarator),
		})
	}
	return out
}

func jsSimpleType(src []byte, n *sitter.Node, kind model.SymbolKind, exported bool) model.Symbol {
	nameNode := n.ChildByFieldName("name")
	name := text(src, nameNode)
	startLine, startCol, endLine, endCol := pointRange(n)
	return model.Symbol{
		Name:      name,
		Kind:      kind,
		Signature: signature(src, n),
		StartLine: startLine, StartCol: startCol, EndLine: endLine, EndCol: endCol,
		Docstring: docComment(src, n, "comment"),
		Exported:  exported,
		Body:      text(src, n),
	}
}

func jsTypeAlias(src []byte, n *sitter.Node, exported bool) model.Symbol {
	sym := jsSimpleType(src, n, model.KindType, exported)
	return sym
}

func jsImport(src []byte, n *sitter.Node) model.Import {
	var names []string
	sourceNode := n.ChildByFieldName("source")
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "import_clause":
			names = append(names, jsImportClauseNames(src, c)...)
		case "identifier":
			names = append(names, text(src, c))
		}
	}
	return model.Import{Source: stripQuotes(text(src, sourceNode)), Names: names}
}

func jsImportClauseNames(src []byte, n *sitter.Node) []string {
	var names []string
	for _, c := range namedChildren(n) {
		switch c.Type() {
		case "identifier":
			names = append(names, text(src, c))
		case "namespace_import":
			names = append(names, text(src, c))
		case "named_imports":
			for _, spec := range namedChildren(c) {
				if spec.Type() != "import_specifier" {
					continue
				}
				nameNode := spec.ChildByFieldName("name")
				names = append(names, text(src, nameNode))
			}
		}
	}
	return names
}

func stripQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'' || s[0] == '`') {
		return s[1 : len(s)-1]
	}
	return s
}
