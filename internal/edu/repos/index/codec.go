package index

import (
	"errors"
	"fmt"
	"slices"

	"github.com/haukened/edu-verify/internal/edu/common/log"
	"github.com/haukened/edu-verify/internal/edu/common/utils"
	"github.com/haukened/edu-verify/internal/edu/domain"
)

var (
	// ErrMalformedNode is returned when a serialized node is neither a
	// string list nor a label map, or when a label is not a valid label.
	ErrMalformedNode = errors.New("malformed index node")
	// ErrReservedToken is returned when a reserved token shows up where
	// a label or a display name is expected.
	ErrReservedToken = errors.New("reserved token misused")
	// ErrUnsupportedVersion is returned for artifacts of an unknown format.
	ErrUnsupportedVersion = errors.New("unsupported artifact version")
)

// Encode converts the index into the generic nested value of the artifact
// format: leaves become string lists, branches become label maps, a
// branch's own entry sits under the "_n_" key and the root carries the
// format version under "_v_". The result can be handed to any koanf parser.
func Encode(ix *Index) map[string]any {
	out := map[string]any{
		domain.TokenVersion: []string{domain.ArtifactVersion},
	}
	if ix == nil || ix.root == nil {
		return out
	}
	for label, child := range ix.root.children {
		out[label] = encodeNode(child)
	}
	return out
}

func encodeNode(n node) any {
	switch t := n.(type) {
	case *leaf:
		return encodeEntry(t.entry)
	case *branch:
		m := make(map[string]any, len(t.children)+1)
		if t.own != nil {
			m[domain.TokenOwnEntry] = encodeEntry(*t.own)
		}
		for label, child := range t.children {
			m[label] = encodeNode(child)
		}
		return m
	}
	return nil
}

func encodeEntry(e domain.Entry) []string {
	if tok, ok := domain.MarkerToken(e.Marker); ok {
		return []string{tok}
	}
	if e.Names == nil {
		return []string{}
	}
	return slices.Clone(e.Names)
}

// Decode rebuilds an Index from the generic nested value produced by a
// koanf parser (or by Encode). A missing version key is read as version 1;
// any other version fails the whole decode. A malformed node is left out
// together with its subtree and logged, and decoding carries on with its
// siblings.
func Decode(m map[string]any, logger log.Logger) (*Index, error) {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if v, ok := m[domain.TokenVersion]; ok {
		ver, err := stringList(v)
		if err != nil || len(ver) != 1 || ver[0] != domain.ArtifactVersion {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedVersion, v)
		}
	}

	d := decoder{logger: logger}
	root := newBranch()
	for label, v := range m {
		switch label {
		case domain.TokenVersion:
			continue
		case domain.TokenOwnEntry:
			d.skip(nil, fmt.Errorf("%w: root cannot hold an own entry", ErrReservedToken))
			continue
		}
		d.child(root, label, v, nil)
	}
	return &Index{root: root}, nil
}

type decoder struct {
	logger log.Logger
}

func (d *decoder) skip(path []string, err error) {
	d.logger.Warn(map[string]any{"key": domain.DomainKey(path).String(), "error": err.Error()}, "skip_artifact_node")
}

// child decodes the node stored under label and attaches it to parent.
func (d *decoder) child(parent *branch, label string, v any, path []string) {
	path = append(path[:len(path):len(path)], label)
	n, err := d.node(label, v, path)
	if err != nil {
		d.skip(path, err)
		return
	}
	if n != nil {
		parent.children[label] = n
	}
}

// node returns nil without an error for an empty map, which carries nothing
// matchable.
func (d *decoder) node(label string, v any, path []string) (node, error) {
	if domain.IsReservedToken(label) {
		return nil, fmt.Errorf("%w: key %q at %s", ErrReservedToken, label, domain.DomainKey(path))
	}
	if !utils.IsValidLabel(label) {
		return nil, fmt.Errorf("%w: invalid label %q at %s", ErrMalformedNode, label, domain.DomainKey(path))
	}

	if list, err := stringList(v); err == nil {
		e, err := decodeEntry(list, path)
		if err != nil {
			return nil, err
		}
		return &leaf{entry: e}, nil
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected %T at %s", ErrMalformedNode, v, domain.DomainKey(path))
	}

	b := newBranch()
	if own, ok := obj[domain.TokenOwnEntry]; ok {
		list, err := stringList(own)
		if err != nil {
			return nil, fmt.Errorf("%w: own entry at %s: %v", ErrMalformedNode, domain.DomainKey(path), err)
		}
		e, err := decodeEntry(list, path)
		if err != nil {
			return nil, err
		}
		b.own = &e
	}
	for k, cv := range obj {
		if k != domain.TokenOwnEntry {
			d.child(b, k, cv, path)
		}
	}

	switch {
	case len(b.children) == 0 && b.own != nil:
		return &leaf{entry: *b.own}, nil
	case len(b.children) == 0:
		return nil, nil
	}
	return b, nil
}

func decodeEntry(list []string, path []string) (domain.Entry, error) {
	if len(list) == 1 {
		if m, ok := domain.MarkerFromToken(list[0]); ok {
			return domain.MarkerEntry(m), nil
		}
	}
	for _, name := range list {
		if domain.IsReservedToken(name) {
			return domain.Entry{}, fmt.Errorf("%w: name %q at %s", ErrReservedToken, name, domain.DomainKey(path))
		}
	}
	return domain.NamesEntry(list), nil
}

// stringList accepts the list shapes the supported parsers produce.
func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, elem := range t {
			s, ok := elem.(string)
			if !ok {
				return nil, fmt.Errorf("%w: non-string list element %T", ErrMalformedNode, elem)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected string list, got %T", ErrMalformedNode, v)
	}
}
