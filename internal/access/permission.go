package access

// HasAll reports whether every requested permission is present in the
// granted set. An empty request is trivially satisfied; duplicates on either
// side are irrelevant.
func HasAll(granted, requested []string) bool {
	if len(requested) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, g := range granted {
		set[g] = struct{}{}
	}
	for _, r := range requested {
		if _, ok := set[r]; !ok {
			return false
		}
	}
	return true
}
