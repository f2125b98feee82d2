package utils

// ClassNameSync rewrites source class names to canonical ones.
type ClassNameSync struct {
	index map[string]string
}

// NewClassNameSync builds the lookup from canonical name -> source names.
func NewClassNameSync(raw map[string][]string) ClassNameSync {
	// inverse raw to faster indexing
	// {"fish": ["fish", "poisson"]} -> {"fish": "fish", "poisson": "fish"}
	index := make(map[string]string)
	for k, v := range raw {
		for _, i := range v {
			index[i] = k
		}
	}

	return ClassNameSync{index: index}
}

func (s ClassNameSync) GetCrossName(class string) *string {
	c := s.index[class]
	if c == "" {
		return nil
	}
	return &c
}

// Canonical returns the cross name of class, or class itself when it has none.
func (s ClassNameSync) Canonical(class string) string {
	if c := s.GetCrossName(class); c != nil {
		return *c
	}
	return class
}
