package extraction

import "sort"

// View is the read-only, per-validator window over the merged metadata map.
// Its key set equals the validator's declared extractor keys regardless of
// what the merge phase produced; keys whose extraction failed resolve to nil.
type View struct {
	data map[string]any
	keys []string
}

// NewView restricts merged metadata to the supplied extractor keys.
func NewView(merged map[string]any, keys []string) *View {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	data := make(map[string]any, len(sorted))
	for _, key := range sorted {
		data[key] = merged[key]
	}
	return &View{data: data, keys: sorted}
}

// Get returns the merged payload for a declared key. The second return is
// false for keys outside the validator's declared set.
func (v *View) Get(key string) (any, bool) {
	payload, ok := v.data[key]
	if !ok {
		return nil, false
	}
	return payload, true
}

// Keys returns the declared extractor keys in sorted order.
func (v *View) Keys() []string {
	return append([]string(nil), v.keys...)
}
