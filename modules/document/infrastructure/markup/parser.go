// Package markup implements the structured-tree parser for the platform
// markup. Only the subset the event processing core depends on is parsed:
// inline macros of the form {{name param="value" .../}} inside plain text.
package markup

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/lumenwiki/platform/modules/document/domain"
)

var (
	macroRe = regexp.MustCompile(`\{\{([a-zA-Z][a-zA-Z0-9_-]*)((?:\s+[a-zA-Z][a-zA-Z0-9_-]*="[^"]*")*)\s*/\}\}`)
	paramRe = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9_-]*)="([^"]*)"`)
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse turns markup into a structured tree. Unterminated macro markers make
// the whole content invalid; callers treat the error as an empty side.
func (p *Parser) Parse(content string, syntax domain.Syntax) (*domain.Tree, error) {
	if syntax != domain.SyntaxMarkup10 {
		return nil, errors.Errorf("unsupported syntax %q", syntax)
	}

	matches := macroRe.FindAllStringSubmatchIndex(content, -1)
	if strings.Count(content, "{{") != len(matches) {
		return nil, errors.New("unterminated macro marker")
	}

	tree := &domain.Tree{}
	last := 0
	for _, m := range matches {
		if text := content[last:m[0]]; text != "" {
			tree.Blocks = append(tree.Blocks, &domain.Node{Kind: domain.TextNode, Text: text})
		}
		name := content[m[2]:m[3]]
		params := map[string]string{}
		for _, pm := range paramRe.FindAllStringSubmatch(content[m[4]:m[5]], -1) {
			params[pm[1]] = pm[2]
		}
		tree.Blocks = append(tree.Blocks, &domain.Node{
			Kind:   domain.MacroNode,
			Macro:  name,
			Params: params,
		})
		last = m[1]
	}
	if text := content[last:]; text != "" {
		tree.Blocks = append(tree.Blocks, &domain.Node{Kind: domain.TextNode, Text: text})
	}

	return tree, nil
}
