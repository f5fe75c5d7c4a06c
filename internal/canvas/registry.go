package canvas

import (
	"sync/atomic"

	"github.com/example/easel/internal/scene"
)

// lastObjectID is the process-wide stamp counter. Ids are never reused while
// the process runs, even across editor instances, so undo payloads can
// reference objects unambiguously.
var lastObjectID atomic.Int64

// ObjectRegistry maps stable integer ids to scene objects. The registry holds
// non-owning references; ownership of the objects stays with the canvas
// object list.
type ObjectRegistry struct {
	objects map[int]*scene.Object
}

// NewObjectRegistry returns an empty registry.
func NewObjectRegistry() *ObjectRegistry {
	return &ObjectRegistry{objects: make(map[int]*scene.Object)}
}

// Stamp assigns the object its id on first call and records the id -> object
// mapping. Already-stamped objects keep their id, so an object that is
// removed and re-added resolves under the same id again.
func (r *ObjectRegistry) Stamp(o *scene.Object) int {
	if o.ID == 0 {
		o.ID = int(lastObjectID.Add(1))
	}
	r.objects[o.ID] = o
	return o.ID
}

// Resolve looks up an object by id. A miss means the object has left the
// scene; callers treat that as a normal outcome, not a defect.
func (r *ObjectRegistry) Resolve(id int) (*scene.Object, bool) {
	o, ok := r.objects[id]
	return o, ok
}

// Unregister drops the mapping for id. The object itself is untouched.
func (r *ObjectRegistry) Unregister(id int) {
	delete(r.objects, id)
}

// IDOf reports the id an object is currently registered under. The linear
// scan is fine for the scene sizes an interactive editor holds.
func (r *ObjectRegistry) IDOf(target *scene.Object) (int, bool) {
	for id, o := range r.objects {
		if o == target {
			return id, true
		}
	}
	return 0, false
}

// Len returns the number of registered objects.
func (r *ObjectRegistry) Len() int {
	return len(r.objects)
}
