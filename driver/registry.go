package driver

import (
	"fmt"
	"sort"
)

// Registry holds the known variants. Build it once and share it read-only.
type Registry struct {
	variants []Variant
}

// NewRegistry creates a registry holding variants.
// It panics on an invalid or duplicate variant; use Register to add variants
// that come from user input.
func NewRegistry(variants ...Variant) *Registry {
	r := &Registry{}
	for _, v := range variants {
		if err := r.Register(v); err != nil {
			panic(err)
		}
	}
	return r
}

// DefaultRegistry returns a registry holding every variant of this package.
func DefaultRegistry() *Registry {
	return NewRegistry(Goodix5395)
}

// Register adds a variant.
func (r *Registry) Register(v Variant) error {
	if v.Name == "" {
		return fmt.Errorf("variant name cannot be empty")
	}
	for _, existing := range r.variants {
		if existing.Name == v.Name {
			return fmt.Errorf("variant %q already registered", v.Name)
		}
	}
	r.variants = append(r.variants, v)
	return nil
}

// Variants returns the registered variants sorted by name.
func (r *Registry) Variants() []Variant {
	out := append([]Variant(nil), r.variants...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Match returns the variant with the highest score for d. Ties go to the
// variant registered first.
func (r *Registry) Match(d Descriptor) (Variant, bool) {
	var best Variant
	bestScore := 0
	for _, v := range r.variants {
		if score := v.Matches(d); score > bestScore {
			best, bestScore = v, score
		}
	}
	return best, bestScore > 0
}
