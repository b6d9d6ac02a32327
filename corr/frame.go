package corr

import (
	"context"
	"sync"
)

// frameCtxKey is the context key under which the active frame travels.
type frameCtxKey struct{}

// frame is one link in the scope chain. Reads fall through to the parent on
// miss; writes land in this frame only, so they are never visible to the
// parent or to sibling scopes.
type frame struct {
	parent *frame

	mu     sync.RWMutex
	values map[string]string
}

func newFrame(parent *frame) *frame {
	return &frame{
		parent: parent,
		values: make(map[string]string),
	}
}

func frameFromContext(ctx context.Context) *frame {
	f, _ := ctx.Value(frameCtxKey{}).(*frame)
	return f
}

func contextWithFrame(ctx context.Context, f *frame) context.Context {
	return context.WithValue(ctx, frameCtxKey{}, f)
}

// get walks the chain from this frame toward the root.
func (f *frame) get(key string) (string, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		v, ok := cur.values[key]
		cur.mu.RUnlock()
		if ok {
			return v, true
		}
	}
	return "", false
}

func (f *frame) set(key, value string) {
	f.mu.Lock()
	f.values[key] = value
	f.mu.Unlock()
}
