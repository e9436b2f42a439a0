package treedef

import (
	"fmt"
	"strconv"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/sources"
	"gopkg.in/yaml.v3"
)

// Local tags for lazily produced content
const (
	TagHTTP = "!http" // scalar URL, or mapping with url/method/headers/timeout
	TagFile = "!file" // path of an existing file, relative to Options.BaseDir
)

func unmarshalYAML(data []byte, opts Options) (treefs.Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &SyntaxError{Msg: err.Error()}
	}
	// Empty document
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return treefs.Tree{}, nil
	}

	top := resolveAlias(doc.Content[0])
	if top.Kind != yaml.MappingNode {
		return nil, nodeError(top, "top level must be a mapping, got "+kindName(top.Kind))
	}
	d := yamlDecoder{opts: opts}
	return d.mapping(top)
}

type yamlDecoder struct {
	opts Options
}

// mapping converts key/value pairs in order; yaml.v3 keeps duplicates in the node tree
func (d *yamlDecoder) mapping(n *yaml.Node) (treefs.Tree, error) {
	tree := make(treefs.Tree, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := resolveAlias(n.Content[i])
		if k.Kind != yaml.ScalarNode {
			return nil, nodeError(k, "keys must be scalars")
		}
		if k.Value == "" {
			return nil, nodeError(k, "empty key")
		}
		v, err := d.value(n.Content[i+1])
		if err != nil {
			return nil, err
		}
		tree = append(tree, treefs.Entry{Key: k.Value, Value: v})
	}
	return tree, nil
}

func (d *yamlDecoder) value(n *yaml.Node) (treefs.Value, error) {
	if n.Kind == yaml.AliasNode {
		n = resolveAlias(n)
		if n.Kind != yaml.ScalarNode {
			return treefs.Value{}, nodeError(n, "aliases may only refer to scalars")
		}
	}

	switch n.Tag {
	case TagHTTP:
		return d.httpSource(n)
	case TagFile:
		if n.Kind != yaml.ScalarNode {
			return treefs.Value{}, nodeError(n, TagFile+" expects a path")
		}
		src := &sources.FileSource{Path: n.Value, BaseDir: d.opts.BaseDir, Fs: d.opts.Fs}
		return treefs.Value{Kind: treefs.ContentKind, Content: src}, nil
	}

	switch n.Kind {
	case yaml.MappingNode:
		children, err := d.mapping(n)
		if err != nil {
			return treefs.Value{}, err
		}
		return treefs.Value{Kind: treefs.DirKind, Children: children}, nil
	case yaml.SequenceNode:
		return treefs.Value{}, nodeError(n, "sequences are not allowed")
	case yaml.ScalarNode:
		return d.scalar(n)
	default:
		return treefs.Value{}, nodeError(n, "unexpected "+kindName(n.Kind))
	}
}

func (d *yamlDecoder) scalar(n *yaml.Node) (treefs.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return treefs.Value{Kind: treefs.SkipKind}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return treefs.Value{}, nodeError(n, err.Error())
		}
		return treefs.Classify(b), nil
	case "!!binary":
		var data string
		if err := n.Decode(&data); err != nil {
			return treefs.Value{}, nodeError(n, err.Error())
		}
		return treefs.Value{Kind: treefs.ContentKind, Content: []byte(data)}, nil
	case "!!str", "!!int", "!!float", "!!timestamp":
		return treefs.Value{Kind: treefs.ContentKind, Content: n.Value}, nil
	default:
		return treefs.Value{}, nodeError(n, fmt.Sprintf("unsupported tag %s", n.Tag))
	}
}

func (d *yamlDecoder) httpSource(n *yaml.Node) (treefs.Value, error) {
	var (
		src *sources.HTTPSource
		err error
	)
	switch n.Kind {
	case yaml.ScalarNode:
		src, err = sources.NewHTTPSource(n.Value)
	case yaml.MappingNode:
		var def sources.HTTPSource
		if err = n.Decode(&def); err != nil {
			return treefs.Value{}, nodeError(n, err.Error())
		}
		src, err = sources.NewHTTPSource(def.URL)
		if err == nil {
			src.Method, src.Headers, src.Timeout = def.Method, def.Headers, def.Timeout
		}
	default:
		return treefs.Value{}, nodeError(n, TagHTTP+" expects a URL or a mapping")
	}
	if err != nil {
		return treefs.Value{}, nodeError(n, err.Error())
	}
	return treefs.Value{Kind: treefs.ContentKind, Content: src}, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func nodeError(n *yaml.Node, msg string) *SyntaxError {
	return &SyntaxError{Line: n.Line, Column: n.Column, Msg: msg}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "kind " + strconv.Itoa(int(k))
	}
}
