package treefs

import (
	"bytes"
	"errors"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	sub := Tree{E("a", "x")}
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Value{Kind: SkipKind}},
		{"false", false, Value{Kind: SkipKind}},
		{"sentinel", SkipValue, Value{Kind: SkipKind}},
		{"true", true, Value{Kind: EmptyFileKind}},
		{"tree", sub, Value{Kind: DirKind, Children: sub}},
		{"entries", []Entry(sub), Value{Kind: DirKind, Children: sub}},
		{"empty tree", Tree{}, Value{Kind: DirKind, Children: Tree{}}},
		{"value passthrough", Value{Kind: EmptyFileKind}, Value{Kind: EmptyFileKind}},
		{"string", "MIT", Value{Kind: ContentKind, Content: "MIT"}},
		{"empty string", "", Value{Kind: ContentKind, Content: ""}},
		{"bytes", []byte{1, 2}, Value{Kind: ContentKind, Content: []byte{1, 2}}},
		{"int", 5, Value{Kind: ContentKind, Content: 5}},
		{"nil bytes", []byte(nil), Value{Kind: ContentKind, Content: []byte(nil)}},
		{"nil buffer", (*bytes.Buffer)(nil), Value{Kind: SkipKind}},
		{"nil source", (*stubSource)(nil), Value{Kind: SkipKind}},
		{"nil producer", (func() string)(nil), Value{Kind: SkipKind}},
		{"nil map", (map[string]string)(nil), Value{Kind: SkipKind}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.in))
		})
	}
}

func TestHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Entry{Key: "k", Value: Value{Kind: SkipKind}}, Skip("k"))
	assert.Equal(t, Entry{Key: "k", Value: Value{Kind: EmptyFileKind}}, Empty("k"))
	// File does not treat booleans as sentinels
	assert.Equal(t, Entry{Key: "k", Value: Value{Kind: ContentKind, Content: true}}, File("k", true))
	assert.Equal(t, DirKind, Dir("d").Value.Kind)
	assert.Empty(t, Dir("d").Value.Children)
}

func TestTree_Len(t *testing.T) {
	t.Parallel()

	tree := Tree{
		Dir("docs",
			E("README.md", "# Hi"),
			Dir("assets"),
			Skip("ignored"),
		),
		E("LICENSE", "MIT"),
		E(".gitkeep", true),
	}
	assert.Equal(t, 5, tree.Len())
	assert.Equal(t, 0, Tree(nil).Len())
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "skip", SkipKind.String())
	assert.Equal(t, "empty", EmptyFileKind.String())
	assert.Equal(t, "content", ContentKind.String())
	assert.Equal(t, "dir", DirKind.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

type stringer struct{}

func (stringer) String() string { return "stringer" }

func TestBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want []byte
	}{
		{"string", "abc", []byte("abc")},
		{"bytes", []byte("abc"), []byte("abc")},
		{"reader", bytes.NewBufferString("from reader"), []byte("from reader")},
		{"producer", func() ([]byte, error) { return []byte("made"), nil }, []byte("made")},
		{"string func", func() string { return "fn" }, []byte("fn")},
		{"text marshaler", netip.MustParseAddr("10.0.0.1"), []byte("10.0.0.1")},
		{"stringer", stringer{}, []byte("stringer")},
		{"duration stringer", 2 * time.Second, []byte("2s")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Bytes(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBytes_Unsupported(t *testing.T) {
	t.Parallel()

	for _, in := range []any{42, 3.14, map[string]string{"a": "b"}, struct{}{}} {
		_, err := Bytes(in)
		assert.ErrorIs(t, err, ErrUnsupportedContent, "%T", in)
	}
}

func TestContentBytes_WrapsError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := contentBytes("a/b", func() ([]byte, error) { return nil, boom })

	var cerr *ContentError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "a/b", cerr.Path)
	assert.Equal(t, "func() ([]uint8, error)", cerr.Type)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "content for a/b (func() ([]uint8, error)): boom", err.Error())
}

func TestContentBytes_NilBecomesEmpty(t *testing.T) {
	t.Parallel()

	got, err := contentBytes("p", []byte(nil))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

type stubSource struct {
	data  []byte
	err   error
	calls int
}

func (s *stubSource) Bytes() ([]byte, error) {
	s.calls++
	return s.data, s.err
}

func TestBytes_Source(t *testing.T) {
	src := &stubSource{data: []byte("lazy")}
	got, err := Bytes(src)
	require.NoError(t, err)
	assert.Equal(t, "lazy", string(got))
	assert.Equal(t, 1, src.calls)

	boom := errors.New("fetch failed")
	_, err = contentBytes("r/remote.txt", &stubSource{err: boom})
	var contentErr *ContentError
	require.ErrorAs(t, err, &contentErr)
	assert.Equal(t, "r/remote.txt", contentErr.Path)
	assert.Equal(t, "*treefs.stubSource", contentErr.Type)
	assert.ErrorIs(t, err, boom)
}

func TestBytes_TypedNil(t *testing.T) {
	t.Parallel()

	for _, in := range []any{(*bytes.Buffer)(nil), (*stubSource)(nil), (func() ([]byte, error))(nil)} {
		_, err := Bytes(in)
		assert.ErrorIs(t, err, ErrNilContent, "%T", in)
	}

	_, err := contentBytes("r/f", (*bytes.Buffer)(nil))
	var contentErr *ContentError
	require.ErrorAs(t, err, &contentErr)
	assert.Equal(t, "*bytes.Buffer", contentErr.Type)
}
