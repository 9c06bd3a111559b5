package explainer

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownMethod is returned for names missing from a Registry.
var ErrUnknownMethod = errors.New("unknown method")

// Registry is an immutable name → Method table.
type Registry struct {
	methods map[string]Method
	names   []string
}

// NewRegistry validates and indexes methods. Names must be unique and non-empty.
func NewRegistry(methods ...Method) (*Registry, error) {
	r := &Registry{methods: make(map[string]Method, len(methods))}
	for _, m := range methods {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			return nil, errors.New("registry: method name is empty")
		}
		if _, dup := r.methods[name]; dup {
			return nil, errors.Errorf("registry: duplicate method %q", name)
		}
		if m.Kind != KindLogistic && m.Kind != KindSVM {
			return nil, errors.Errorf("registry: method %q has unsupported kind %d", name, int(m.Kind))
		}
		m.Name = name
		r.methods[name] = m
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r, nil
}

// DefaultRegistry returns the built-in methods, all trained on dataFile.
func DefaultRegistry(dataFile string) *Registry {
	if dataFile == "" {
		dataFile = DefaultDataFile
	}
	r, err := NewRegistry(
		Method{Name: "logistic", Kind: KindLogistic, TrainFile: dataFile, DisplayName: "Logistic Regression"},
		Method{Name: "svm", Kind: KindSVM, TrainFile: dataFile, DisplayName: "Support Vector Machine"},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the method registered under name.
func (r *Registry) Lookup(name string) (Method, error) {
	m, ok := r.methods[name]
	if !ok {
		return Method{}, errors.Wrapf(ErrUnknownMethod, "%q (choose from %s)", name, strings.Join(r.names, ", "))
	}
	return m, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Resolve looks up every name, preserving order.
func (r *Registry) Resolve(names []string) ([]Method, error) {
	out := make([]Method, 0, len(names))
	for _, name := range names {
		m, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
