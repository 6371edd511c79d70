package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/brettbedarf/vtree/filesystem"
)

// ErrParse indicates the persisted document is not well-formed
var ErrParse = errors.New("malformed tree document")

// Format selects the document encoding
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// FormatFor picks the format from a file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Encode walks each root depth-first and builds its document form. Icon keys
// missing from icons are left out.
func Encode(roots []*filesystem.Node, icons filesystem.IconRegistry) Document {
	doc := Document{Items: make([]NodeDTO, 0, len(roots))}
	for _, r := range roots {
		doc.Items = append(doc.Items, encodeNode(r, icons))
	}
	return doc
}

func encodeNode(n *filesystem.Node, icons filesystem.IconRegistry) NodeDTO {
	dto := NodeDTO{
		Name: n.Name(),
		Type: n.Label(),
		Path: n.RealPath(),
	}
	if icons.Has(n.IconKey()) {
		dto.Icon = n.IconKey()
	}
	for _, c := range n.Children() {
		dto.Children = append(dto.Children, encodeNode(c, icons))
	}
	return dto
}

// Decode rebuilds detached root nodes from doc in document order. The node
// kind is derived from the type label; unregistered icon keys are dropped.
func Decode(doc Document, icons filesystem.IconRegistry) []*filesystem.Node {
	roots := make([]*filesystem.Node, 0, len(doc.Items))
	for _, item := range doc.Items {
		roots = append(roots, decodeNode(item, icons))
	}
	return roots
}

func decodeNode(dto NodeDTO, icons filesystem.IconRegistry) *filesystem.Node {
	var opts []filesystem.NodeOption
	if dto.Path != "" {
		opts = append(opts, filesystem.WithRealPath(dto.Path))
	}
	if icons.Has(dto.Icon) {
		opts = append(opts, filesystem.WithIcon(dto.Icon))
	}
	n := filesystem.NewNode(dto.Name, filesystem.KindForLabel(dto.Type), dto.Type, opts...)
	for _, c := range dto.Children {
		n.AddChild(decodeNode(c, icons))
	}
	return n
}

// Marshal encodes doc in the given format. JSON output is indented.
func Marshal(doc Document, format Format) ([]byte, error) {
	switch format {
	case YAML:
		return yaml.Marshal(doc)
	case JSON:
		return json.MarshalIndent(doc, "", "    ")
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}
}

// Unmarshal parses data in the given format. Any decode failure, including
// an empty input, wraps [ErrParse].
func Unmarshal(data []byte, format Format) (Document, error) {
	var doc Document
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, fmt.Errorf("%w: empty document", ErrParse)
	}

	var err error
	switch format {
	case YAML:
		err = yaml.Unmarshal(data, &doc)
	case JSON:
		err = json.Unmarshal(data, &doc)
	default:
		return doc, fmt.Errorf("unknown document format %q", format)
	}
	if err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return doc, nil
}
