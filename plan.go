package treefs

// OpKind is the type of a planned backend operation
type OpKind string

const (
	OpCreateDir OpKind = "mkdir"
	OpWriteFile OpKind = "write"
)

// Op is one backend call as it would be issued by [Create]
type Op struct {
	Kind OpKind
	Path string
	Data []byte // nil for OpCreateDir and for deferred content
}

// Deferred reports a write whose content is a [Source] or io.Reader and was
// not produced while planning
func (o Op) Deferred() bool {
	return o.Kind == OpWriteFile && o.Data == nil
}

// Plan returns the operations Create would issue for tree under root, in
// order, without touching any backend. Only content conversion can fail.
//
// Source and io.Reader content is left unproduced (see [Op.Deferred]) so a
// plan never fetches remote content and the tree can still be created after.
func Plan(root string, tree Tree) ([]Op, error) {
	rec := &planRecorder{}
	if err := create(rec, root, tree, true); err != nil {
		return rec.ops, err
	}
	return rec.ops, nil
}

type planRecorder struct {
	ops []Op
}

func (r *planRecorder) CreateDir(path string) error {
	r.ops = append(r.ops, Op{Kind: OpCreateDir, Path: path})
	return nil
}

func (r *planRecorder) WriteFile(path string, data []byte) error {
	r.ops = append(r.ops, Op{Kind: OpWriteFile, Path: path, Data: data})
	return nil
}
