package document

import (
	"encoding/json"
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// Query evaluates a JSONPath expression against the generic form of doc,
// i.e. `$..children[?(@.type == 'pdf document')].name`.
func Query(doc Document, expr string) ([]any, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", expr, err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	root, err := oj.Parse(data)
	if err != nil {
		return nil, err
	}
	return x.Get(root), nil
}
