package docvalue

// Merge applies patch on top of target and returns the result. For every
// key of patch:
//
//   - an array replaces the target value wholesale (never concatenated),
//   - an object merges recursively when the target value is also an object,
//   - anything else (scalar, null, type mismatch, new key) overwrites.
//
// A non-object patch replaces target entirely. Neither argument is
// modified. Target members keep their order; new keys are appended in
// patch order.
func Merge(target, patch Value) Value {
	if patch.kind != Object {
		return patch
	}
	if target.kind != Object {
		target = Value{kind: Object}
	}

	out := target
	for _, m := range patch.members {
		current, exists := out.Get(m.Key)
		if m.Value.kind == Object && exists && current.kind == Object {
			out = out.Set(m.Key, Merge(current, m.Value))
			continue
		}
		out = out.Set(m.Key, m.Value)
	}
	return out
}
