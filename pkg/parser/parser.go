package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/python"
)

// Language represents a grammar the parser can load.
type Language string

const (
	LangC       Language = "c"
	LangCPP     Language = "cpp"
	LangJava    Language = "java"
	LangPython  Language = "python"
	LangUnknown Language = "unknown"
)

// Parser wraps tree-sitter for the supported grammars.
// A Parser is not safe for concurrent use; create one per goroutine.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed AST and metadata.
type ParseResult struct {
	Tree     *sitter.Tree
	Language Language
	Source   []byte
	Path     string
}

// New creates a new parser instance.
func New() *Parser {
	return &Parser{
		parser: sitter.NewParser(),
	}
}

// Parse parses source code with a specified language.
func (p *Parser) Parse(ctx context.Context, source []byte, lang Language, path string) (*ParseResult, error) {
	tsLang, err := GetTreeSitterLanguage(lang)
	if err != nil {
		return nil, err
	}

	p.parser.SetLanguage(tsLang)
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}

	return &ParseResult{
		Tree:     tree,
		Language: lang,
		Source:   source,
		Path:     path,
	}, nil
}

// Close releases the tree and its C memory.
func (r *ParseResult) Close() {
	if r.Tree != nil {
		r.Tree.Close()
	}
}

// GetTreeSitterLanguage returns the tree-sitter language for a Language enum.
func GetTreeSitterLanguage(lang Language) (*sitter.Language, error) {
	switch lang {
	case LangC:
		return c.GetLanguage(), nil
	case LangCPP:
		return cpp.GetLanguage(), nil
	case LangJava:
		return java.GetLanguage(), nil
	case LangPython:
		return python.GetLanguage(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
}

// DetectLanguage determines the grammar from a file path.
// Only the extensions codesim compares are recognized; headers are not.
func DetectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".c":
		return LangC
	case ".cpp", ".cc", ".cxx":
		return LangCPP
	case ".java":
		return LangJava
	case ".py":
		return LangPython
	default:
		return LangUnknown
	}
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// NodeVisitor is a function that visits AST nodes.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// Walk traverses the AST calling visitor for each node.
// Returning false from the visitor skips the node's children.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}

	if !visitor(node, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), source, visitor)
	}
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}

// SignatureKind tells functions and classes apart.
type SignatureKind string

const (
	SignatureFunction SignatureKind = "function"
	SignatureClass    SignatureKind = "class"
)

// Signature is the header of a function or class definition: its source text
// from the start of the node up to, not including, the body. Whitespace runs
// are collapsed to single spaces.
type Signature struct {
	Kind   SignatureKind
	Name   string
	Header string
	Line   uint32
}

// GetSignatures returns function headers in source order followed by class
// headers in source order. Nested definitions are included.
func GetSignatures(result *ParseResult) []Signature {
	root := result.Tree.RootNode()
	funcs := collect(root, result, SignatureFunction, getFunctionNodeTypes(result.Language))
	classes := collect(root, result, SignatureClass, getClassNodeTypes(result.Language))
	return append(funcs, classes...)
}

func collect(root *sitter.Node, result *ParseResult, kind SignatureKind, nodeTypes []string) []Signature {
	var out []Signature
	Walk(root, result.Source, func(node *sitter.Node, source []byte) bool {
		nt := node.Type()
		for _, want := range nodeTypes {
			if nt != want {
				continue
			}
			// Forward declarations like "struct foo;" have no body.
			body := bodyOf(node)
			if body == nil {
				break
			}
			header := collapse(string(source[node.StartByte():body.StartByte()]))
			if header == "" {
				break
			}
			out = append(out, Signature{
				Kind:   kind,
				Name:   nameOf(node, source, result.Language),
				Header: header,
				Line:   node.StartPoint().Row + 1,
			})
			break
		}
		return true
	})
	return out
}

// getFunctionNodeTypes returns the AST node types for functions in each language.
func getFunctionNodeTypes(lang Language) []string {
	switch lang {
	case LangPython:
		return []string{"function_definition"}
	case LangJava:
		return []string{"method_declaration", "constructor_declaration"}
	case LangC, LangCPP:
		return []string{"function_definition"}
	default:
		return nil
	}
}

// getClassNodeTypes returns the AST node types for classes in each language.
func getClassNodeTypes(lang Language) []string {
	switch lang {
	case LangPython:
		return []string{"class_definition"}
	case LangJava:
		return []string{"class_declaration", "interface_declaration"}
	case LangC:
		return []string{"struct_specifier"}
	case LangCPP:
		return []string{"class_specifier", "struct_specifier"}
	default:
		return nil
	}
}

func bodyOf(node *sitter.Node) *sitter.Node {
	if body := node.ChildByFieldName("body"); body != nil {
		return body
	}
	return node.ChildByFieldName("block")
}

func nameOf(node *sitter.Node, source []byte, lang Language) string {
	if lang == LangC || lang == LangCPP {
		// C/C++ function names are in declarator
		if decl := node.ChildByFieldName("declarator"); decl != nil {
			if name := decl.ChildByFieldName("declarator"); name != nil {
				return GetNodeText(name, source)
			}
		}
	}
	return GetNodeText(node.ChildByFieldName("name"), source)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
