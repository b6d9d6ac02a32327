package mask

import (
	"reflect"
	"time"
)

// nodeKind distinguishes real leaves from empty containers, which have no
// leaves of their own but must survive the round trip.
type nodeKind int

const (
	kindLeaf nodeKind = iota
	kindEmptyMap
	kindEmptySlice
)

// step is one hop in a leaf's path: either a map key or a slice index.
type step struct {
	key     string
	index   int
	indexed bool
}

// pair is one flattened leaf: where it lives, the terminal key that governs
// rule matching, and the value itself.
type pair struct {
	path  []step
	key   string
	value any
	kind  nodeKind
}

// flatten walks data depth-first and emits one pair per leaf. The terminal
// key of a leaf is the nearest enclosing map key, so elements of
// {"cards": [...]} still match rules keyed on "cards".
func flatten(data any) []pair {
	var out []pair
	walk(data, nil, "", &out)
	return out
}

func walk(v any, path []step, key string, out *[]pair) {
	if v == nil {
		*out = append(*out, pair{path: clonePath(path), key: key, value: nil})
		return
	}

	// Fast paths for the shapes log payloads actually take.
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 0 {
			*out = append(*out, pair{path: clonePath(path), key: key, kind: kindEmptyMap})
			return
		}
		for k, child := range t {
			walk(child, append(path, step{key: k}), k, out)
		}
		return
	case map[string]string:
		if len(t) == 0 {
			*out = append(*out, pair{path: clonePath(path), key: key, kind: kindEmptyMap})
			return
		}
		for k, child := range t {
			walk(child, append(path, step{key: k}), k, out)
		}
		return
	case []any:
		if len(t) == 0 {
			*out = append(*out, pair{path: clonePath(path), key: key, kind: kindEmptySlice})
			return
		}
		for i, child := range t {
			walk(child, append(path, step{index: i, indexed: true}), key, out)
		}
		return
	case string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64,
		[]byte, time.Time, time.Duration:
		*out = append(*out, pair{path: clonePath(path), key: key, value: v})
		return
	}

	walkReflect(reflect.ValueOf(v), path, key, out)
}

func walkReflect(rv reflect.Value, path []step, key string, out *[]pair) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			*out = append(*out, pair{path: clonePath(path), key: key, value: nil})
			return
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			// Non-string-keyed maps are opaque leaves.
			*out = append(*out, pair{path: clonePath(path), key: key, value: rv.Interface()})
			return
		}
		if rv.Len() == 0 {
			*out = append(*out, pair{path: clonePath(path), key: key, kind: kindEmptyMap})
			return
		}
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			walk(iter.Value().Interface(), append(path, step{key: k}), k, out)
		}

	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			*out = append(*out, pair{path: clonePath(path), key: key, kind: kindEmptySlice})
			return
		}
		for i := 0; i < rv.Len(); i++ {
			walk(rv.Index(i).Interface(), append(path, step{index: i, indexed: true}), key, out)
		}

	case reflect.Struct:
		rt := rv.Type()
		emitted := false
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			emitted = true
			walk(rv.Field(i).Interface(), append(path, step{key: f.Name}), f.Name, out)
		}
		if !emitted {
			*out = append(*out, pair{path: clonePath(path), key: key, kind: kindEmptyMap})
		}

	default:
		// Functions, channels, and anything else non-data stay as-is.
		*out = append(*out, pair{path: clonePath(path), key: key, value: rv.Interface()})
	}
}

func clonePath(path []step) []step {
	if len(path) == 0 {
		return nil
	}
	cp := make([]step, len(path))
	copy(cp, path)
	return cp
}

// builder is one open container during rebuild.
type builder struct {
	m      map[string]any
	s      []any
	slice  bool
	attach step // how this container hangs off its parent
}

func (b *builder) value() any {
	if b.slice {
		return b.s
	}
	return b.m
}

func (b *builder) put(st step, v any) {
	if b.slice {
		b.s = append(b.s, v)
	} else {
		b.m[st.key] = v
	}
}

func newBuilder(slice bool, attach step) *builder {
	b := &builder{slice: slice, attach: attach}
	if !slice {
		b.m = make(map[string]any)
	}
	return b
}

// rebuild reconstructs the nested shape from DFS-ordered pairs. It keeps a
// stack of open containers and only adjusts it by the path difference
// between consecutive pairs, so the whole pass is linear in the flattened
// size and never re-walks a subtree.
func rebuild(pairs []pair) any {
	if len(pairs) == 0 {
		return nil
	}
	if len(pairs[0].path) == 0 {
		return materialize(pairs[0])
	}

	var stack []*builder
	var prev []step

	for i := range pairs {
		p := &pairs[i]
		common := commonPrefix(prev, p.path)

		// Close containers below the shared prefix.
		for len(stack) > common+1 && len(stack) > 1 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			stack[len(stack)-1].put(top.attach, top.value())
		}

		// Open containers down to the leaf's parent.
		for d := len(stack); d < len(p.path); d++ {
			nb := newBuilder(p.path[d].indexed, step{})
			if d > 0 {
				nb.attach = p.path[d-1]
			}
			stack = append(stack, nb)
		}

		stack[len(p.path)-1].put(p.path[len(p.path)-1], materialize(*p))
		prev = p.path
	}

	for len(stack) > 1 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack[len(stack)-1].put(top.attach, top.value())
	}
	return stack[0].value()
}

func materialize(p pair) any {
	switch p.kind {
	case kindEmptyMap:
		return map[string]any{}
	case kindEmptySlice:
		return []any{}
	default:
		return p.value
	}
}

func commonPrefix(a, b []step) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
