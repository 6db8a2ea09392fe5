package cable

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Registry is the list of cable models available for editing. Exactly one
// of them is active whenever the list is non-empty.
type Registry struct {
	models []*Model
	active int
	logger *log.Logger
}

// NewRegistry returns an empty registry. A nil logger uses log.Default().
func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{logger: logger}
}

// Add appends m unless a model of the same name is already listed, and
// returns its position.
func (r *Registry) Add(m *Model) (int, error) {
	if !m.Mesh.HasCableLayers() {
		return -1, &PreconditionError{Msg: fmt.Sprintf("object %q is not a cable model (missing vertex layers); re-import it from the SWC file", m.Name)}
	}
	for i, have := range r.models {
		if have.Name == m.Name {
			return i, nil
		}
	}
	r.logger.Debug("adding cable model", "name", m.Name, "vertices", m.NumVertices())
	r.models = append(r.models, m)
	return len(r.models) - 1, nil
}

// Select makes the named model active.
func (r *Registry) Select(name string) error {
	for i, m := range r.models {
		if m.Name == name {
			r.active = i
			return nil
		}
	}
	return &PreconditionError{Msg: fmt.Sprintf("no cable model named %q", name)}
}

// SelectIndex makes the model at position i active.
func (r *Registry) SelectIndex(i int) error {
	if i < 0 || i >= len(r.models) {
		return &PreconditionError{Msg: fmt.Sprintf("cable model index %d out of range", i)}
	}
	r.active = i
	return nil
}

// Active returns the model being edited.
func (r *Registry) Active() (*Model, error) {
	if len(r.models) == 0 {
		return nil, ErrNoActiveModel
	}
	if r.active >= len(r.models) {
		r.active = len(r.models) - 1
	}
	return r.models[r.active], nil
}

// ActiveIndex returns the position of the active model, or -1 when empty.
func (r *Registry) ActiveIndex() int {
	if len(r.models) == 0 {
		return -1
	}
	return r.active
}

// Get returns the named model.
func (r *Registry) Get(name string) (*Model, bool) {
	for _, m := range r.models {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Models returns the listed models in order.
func (r *Registry) Models() []*Model {
	out := make([]*Model, len(r.models))
	copy(out, r.models)
	return out
}

// Len returns the number of listed models.
func (r *Registry) Len() int { return len(r.models) }

// RemoveActive drops the active model from the list and steps the active
// position back by one. Its proxies are destroyed.
func (r *Registry) RemoveActive() (*Model, error) {
	m, err := r.Active()
	if err != nil {
		return nil, err
	}
	DeleteProxies(m)
	r.models = append(r.models[:r.active], r.models[r.active+1:]...)
	if r.active > 0 {
		r.active--
	}
	r.logger.Debug("removed cable model", "name", m.Name)
	return m, nil
}

// RemoveAll empties the list.
func (r *Registry) RemoveAll() int {
	n := len(r.models)
	for _, m := range r.models {
		DeleteProxies(m)
	}
	r.models = nil
	r.active = 0
	return n
}
