package transform

// Mapping renames raw source keys. A raw key may fan out to several targets;
// unmapped keys pass through under their own name.
type Mapping map[string][]string

func (m Mapping) targets(key string) []string {
	if t, ok := m[key]; ok {
		return t
	}
	return []string{key}
}

// oneToOne builds a Mapping where every raw key has a single target.
func oneToOne(pairs map[string]string) Mapping {
	m := make(Mapping, len(pairs))
	for from, to := range pairs {
		m[from] = []string{to}
	}
	return m
}
