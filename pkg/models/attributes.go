package models

import "sort"

// Attribute is a key/value pair owned by exactly one node.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Attributes is a set of attributes with unique keys, kept sorted by key.
type Attributes []Attribute

// AttributesFromMap builds a sorted attribute set from m.
func AttributesFromMap(m map[string]string) Attributes {
	if len(m) == 0 {
		return nil
	}
	attrs := make(Attributes, 0, len(m))
	for k, v := range m {
		attrs = append(attrs, Attribute{Key: k, Value: v})
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Key < attrs[j].Key })
	return attrs
}

func (a Attributes) search(key string) int {
	return sort.Search(len(a), func(i int) bool { return a[i].Key >= key })
}

// Get returns the value stored under key.
func (a Attributes) Get(key string) (string, bool) {
	i := a.search(key)
	if i < len(a) && a[i].Key == key {
		return a[i].Value, true
	}
	return "", false
}

// Set stores value under key, replacing any previous value.
func (a *Attributes) Set(key, value string) {
	s := *a
	i := s.search(key)
	if i < len(s) && s[i].Key == key {
		s[i].Value = value
		return
	}
	s = append(s, Attribute{})
	copy(s[i+1:], s[i:])
	s[i] = Attribute{Key: key, Value: value}
	*a = s
}

// Delete removes key and reports whether it was present.
func (a *Attributes) Delete(key string) bool {
	s := *a
	i := s.search(key)
	if i >= len(s) || s[i].Key != key {
		return false
	}
	*a = append(s[:i], s[i+1:]...)
	return true
}

// Keys returns the attribute keys in ascending order.
func (a Attributes) Keys() []string {
	keys := make([]string, len(a))
	for i, attr := range a {
		keys[i] = attr.Key
	}
	return keys
}

// Map returns the attributes as a map.
func (a Attributes) Map() map[string]string {
	m := make(map[string]string, len(a))
	for _, attr := range a {
		m[attr.Key] = attr.Value
	}
	return m
}

// Clone returns an independent copy of the set.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	return append(Attributes(nil), a...)
}
