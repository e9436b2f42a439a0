package treedef

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/brettbedarf/treefs"
)

// jsonParser walks the token stream so object member order and duplicate
// names survive, which decoding into a map would lose
type jsonParser struct {
	data []byte
	dec  *json.Decoder
}

func unmarshalJSON(data []byte) (treefs.Tree, error) {
	p := &jsonParser{data: data, dec: json.NewDecoder(bytes.NewReader(data))}
	p.dec.UseNumber()

	tok, err := p.dec.Token()
	if errors.Is(err, io.EOF) {
		return treefs.Tree{}, nil
	}
	if err != nil {
		return nil, p.tokenError(err)
	}
	if tok != json.Delim('{') {
		return nil, p.errorf("top level must be an object")
	}

	tree, err := p.object()
	if err != nil {
		return nil, err
	}
	if _, err := p.dec.Token(); !errors.Is(err, io.EOF) {
		return nil, p.errorf("unexpected data after top-level object")
	}
	return tree, nil
}

// object reads members up to and including the closing brace
func (p *jsonParser) object() (treefs.Tree, error) {
	tree := treefs.Tree{}
	for p.dec.More() {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, p.tokenError(err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, p.errorf("expected member name, got %v", tok)
		}
		if key == "" {
			return nil, p.errorf("empty key")
		}

		v, err := p.value()
		if err != nil {
			return nil, err
		}
		tree = append(tree, treefs.Entry{Key: key, Value: v})
	}
	if _, err := p.dec.Token(); err != nil {
		return nil, p.tokenError(err)
	}
	return tree, nil
}

func (p *jsonParser) value() (treefs.Value, error) {
	tok, err := p.dec.Token()
	if err != nil {
		return treefs.Value{}, p.tokenError(err)
	}

	switch t := tok.(type) {
	case json.Delim:
		if t != '{' {
			return treefs.Value{}, p.errorf("arrays are not allowed")
		}
		children, err := p.object()
		if err != nil {
			return treefs.Value{}, err
		}
		return treefs.Value{Kind: treefs.DirKind, Children: children}, nil
	case bool:
		return treefs.Classify(t), nil
	case nil:
		return treefs.Value{Kind: treefs.SkipKind}, nil
	case string:
		return treefs.Value{Kind: treefs.ContentKind, Content: t}, nil
	case json.Number:
		return treefs.Value{Kind: treefs.ContentKind, Content: t.String()}, nil
	default:
		return treefs.Value{}, p.errorf("unexpected token %v", tok)
	}
}

func (p *jsonParser) tokenError(err error) *SyntaxError {
	var serr *json.SyntaxError
	if errors.As(err, &serr) {
		line, col := position(p.data, serr.Offset)
		return &SyntaxError{Line: line, Column: col, Msg: serr.Error()}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		line, col := position(p.data, int64(len(p.data)))
		return &SyntaxError{Line: line, Column: col, Msg: "unexpected end of input"}
	}
	return p.errorf("%v", err)
}

func (p *jsonParser) errorf(format string, args ...any) *SyntaxError {
	line, col := position(p.data, p.dec.InputOffset())
	return &SyntaxError{Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}

// position converts a byte offset to a 1-based line and column
func position(data []byte, off int64) (int, int) {
	off = min(max(off, 0), int64(len(data)))
	prefix := data[:off]
	line := bytes.Count(prefix, []byte{'\n'}) + 1
	col := len(prefix) - (bytes.LastIndexByte(prefix, '\n') + 1) + 1
	return line, col
}
