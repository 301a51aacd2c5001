package coffee

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tspython "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// pythonLanguage is immutable and safe to share across parsers.
var pythonLanguage = sitter.NewLanguage(tspython.Language())

// ValidateSyntax parses code as Python and reports the first parse error
// with its line and column. Parsers are cheap to construct, so each call
// gets its own; the function stays safe for concurrent use.
func ValidateSyntax(code string) ValidationReport {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(pythonLanguage); err != nil {
		return failedReport(fmt.Sprintf("python grammar unavailable: %v", err))
	}

	tree := parser.Parse([]byte(code), nil)
	if tree == nil {
		return failedReport("parse produced no tree")
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return passedReport()
	}

	if node := firstErrorNode(root); node != nil {
		pos := node.StartPosition()
		kind := "syntax error"
		if node.IsMissing() {
			kind = "missing " + node.Kind()
		}
		return failedReport(fmt.Sprintf("%s at line %d, column %d", kind, pos.Row+1, pos.Column+1))
	}
	return failedReport("syntax error at unknown position")
}

// firstErrorNode walks the tree depth-first for the earliest error or
// missing node.
func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	return nil
}
