package treefs

import "reflect"

// Kind classifies what an entry's value does when the tree is walked
type Kind uint8

const (
	SkipKind      Kind = iota // declared but not created
	EmptyFileKind             // zero-length file
	ContentKind               // file with converted content
	DirKind                   // directory followed by its children
)

func (k Kind) String() string {
	switch k {
	case SkipKind:
		return "skip"
	case EmptyFileKind:
		return "empty"
	case ContentKind:
		return "content"
	case DirKind:
		return "dir"
	default:
		return "unknown"
	}
}

// Tree is an ordered sequence of entries. Keys are not deduplicated; every
// entry is walked in insertion order.
type Tree []Entry

// Entry is one declared (key, value) pair. The key may contain path separators.
type Entry struct {
	Key   string
	Value Value
}

// Value is the tagged value of an [Entry].
// Content is only meaningful for ContentKind and Children only for DirKind.
type Value struct {
	Kind     Kind
	Content  any
	Children Tree
}

type skip struct{}

// SkipValue is the sentinel for "declared but do not create". nil and false
// classify the same way.
var SkipValue = skip{}

// Classify maps a raw value onto one of the four value kinds:
//
//   - nil (including nil pointers, funcs, maps and chans), false and
//     [SkipValue] are skipped
//   - true creates an empty file
//   - a [Tree] or []Entry becomes a subdirectory
//   - a [Value] is returned as is
//   - anything else is content, converted with [Bytes] when the entry is walked
func Classify(v any) Value {
	switch t := v.(type) {
	case nil, skip:
		return Value{Kind: SkipKind}
	case bool:
		if t {
			return Value{Kind: EmptyFileKind}
		}
		return Value{Kind: SkipKind}
	case Tree:
		return Value{Kind: DirKind, Children: t}
	case []Entry:
		return Value{Kind: DirKind, Children: Tree(t)}
	case Value:
		return t
	default:
		if isNil(v) {
			return Value{Kind: SkipKind}
		}
		return Value{Kind: ContentKind, Content: v}
	}
}

// isNil reports a typed nil. []byte(nil) is not included: it is empty content.
func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// E builds an entry whose value is classified with [Classify]
func E(key string, v any) Entry {
	return Entry{Key: key, Value: Classify(v)}
}

// Dir builds a subdirectory entry. An empty Dir creates an empty directory.
func Dir(key string, children ...Entry) Entry {
	return Entry{Key: key, Value: Value{Kind: DirKind, Children: Tree(children)}}
}

// File builds a content entry. Unlike [E], true/false/nil are not sentinels here.
func File(key string, content any) Entry {
	return Entry{Key: key, Value: Value{Kind: ContentKind, Content: content}}
}

// Empty builds an empty-file entry
func Empty(key string) Entry {
	return Entry{Key: key, Value: Value{Kind: EmptyFileKind}}
}

// Skip builds an entry that produces no operation
func Skip(key string) Entry {
	return Entry{Key: key, Value: Value{Kind: SkipKind}}
}

// Len returns the number of backend operations a successful walk of t issues
func (t Tree) Len() int {
	n := 0
	for _, e := range t {
		switch e.Value.Kind {
		case EmptyFileKind, ContentKind:
			n++
		case DirKind:
			n += 1 + e.Value.Children.Len()
		}
	}
	return n
}
