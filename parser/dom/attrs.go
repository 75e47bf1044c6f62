package dom

// AttributeMap holds an element's attributes in insertion order. Setting a
// name that is already present keeps the first value; the tokenizer relies on
// this for its duplicate-attribute policy.
type AttributeMap struct {
	names  []string
	values map[string]string
}

func NewAttributeMap() *AttributeMap {
	return &AttributeMap{values: map[string]string{}}
}

// Set records an attribute. It reports whether the value was stored; a false
// return means the name was already present and the first value won.
func (m *AttributeMap) Set(name, value string) bool {
	if _, ok := m.values[name]; ok {
		return false
	}
	m.names = append(m.names, name)
	m.values[name] = value
	return true
}

func (m *AttributeMap) Get(name string) (string, bool) {
	v, ok := m.values[name]
	return v, ok
}

func (m *AttributeMap) Has(name string) bool {
	_, ok := m.values[name]
	return ok
}

func (m *AttributeMap) Len() int {
	return len(m.names)
}

// Names returns the attribute names in insertion order.
func (m *AttributeMap) Names() []string {
	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

func (m *AttributeMap) clone() *AttributeMap {
	c := NewAttributeMap()
	for _, name := range m.names {
		c.Set(name, m.values[name])
	}
	return c
}
