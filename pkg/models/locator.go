package models

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// Locator identifies where the bytes of a file node live. Value is stored verbatim;
// Scheme selects the codec used to resolve it.
type Locator struct {
	Scheme string `json:"scheme"`
	Value  string `json:"value"`
}

// IsZero reports whether the locator is unset.
func (l Locator) IsZero() bool {
	return l == Locator{}
}

func (l Locator) String() string {
	return l.Value
}

// LocatorScheme is a static parse/format pair for one scheme tag.
type LocatorScheme struct {
	Tag    string
	Parse  func(value string) (*url.URL, error)
	Format func(u *url.URL) (string, error)
}

// LocatorRegistry maps scheme tags to their codecs. It is safe for concurrent use.
type LocatorRegistry struct {
	mu      sync.RWMutex
	schemes map[string]LocatorScheme
}

// NewLocatorRegistry returns an empty registry.
func NewLocatorRegistry() *LocatorRegistry {
	return &LocatorRegistry{schemes: make(map[string]LocatorScheme)}
}

// DefaultLocators knows the file, http and https schemes.
var DefaultLocators = func() *LocatorRegistry {
	r := NewLocatorRegistry()
	for _, s := range []LocatorScheme{FileScheme(), URLScheme("http"), URLScheme("https")} {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}()

// Register adds a scheme. Registering a tag twice is an error.
func (r *LocatorRegistry) Register(s LocatorScheme) error {
	if s.Tag == "" || s.Parse == nil || s.Format == nil {
		return fmt.Errorf("locator scheme %q must have a tag, a parse and a format function", s.Tag)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schemes[s.Tag]; ok {
		return fmt.Errorf("locator scheme %q already registered", s.Tag)
	}
	r.schemes[s.Tag] = s
	return nil
}

// Lookup returns the scheme registered under tag.
func (r *LocatorRegistry) Lookup(tag string) (LocatorScheme, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemes[tag]
	return s, ok
}

// Tags returns the registered scheme tags in ascending order.
func (r *LocatorRegistry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.schemes))
	for tag := range r.schemes {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Locate builds a locator from a raw reference. The scheme tag is the URL scheme of raw.
func (r *LocatorRegistry) Locate(raw string) (Locator, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Locator{}, fmt.Errorf("failed to parse locator %q: %w", raw, err)
	}
	tag := strings.ToLower(u.Scheme)
	s, ok := r.Lookup(tag)
	if !ok {
		return Locator{}, fmt.Errorf("no locator scheme registered for %q", raw)
	}
	parsed, err := s.Parse(raw)
	if err != nil {
		return Locator{}, err
	}
	value, err := s.Format(parsed)
	if err != nil {
		return Locator{}, err
	}
	return Locator{Scheme: tag, Value: value}, nil
}

// Resolve parses a stored locator with the codec of its scheme.
func (r *LocatorRegistry) Resolve(l Locator) (*url.URL, error) {
	s, ok := r.Lookup(l.Scheme)
	if !ok {
		return nil, fmt.Errorf("no locator scheme registered for tag %q", l.Scheme)
	}
	return s.Parse(l.Value)
}

// MustLocate is Locate on DefaultLocators that panics on error. Intended for tests and literals.
func MustLocate(raw string) Locator {
	l, err := DefaultLocators.Locate(raw)
	if err != nil {
		panic(err)
	}
	return l
}

// FileScheme resolves file:// URLs with an absolute path.
func FileScheme() LocatorScheme {
	return LocatorScheme{
		Tag: "file",
		Parse: func(value string) (*url.URL, error) {
			u, err := url.Parse(value)
			if err != nil {
				return nil, fmt.Errorf("failed to parse file locator: %w", err)
			}
			if u.Scheme != "file" || !strings.HasPrefix(u.Path, "/") {
				return nil, fmt.Errorf("file locator %q must be an absolute file:// URL", value)
			}
			return u, nil
		},
		Format: func(u *url.URL) (string, error) {
			return (&url.URL{Scheme: "file", Path: u.Path}).String(), nil
		},
	}
}

// URLScheme resolves absolute URLs of the given scheme that name a host.
func URLScheme(scheme string) LocatorScheme {
	return LocatorScheme{
		Tag: scheme,
		Parse: func(value string) (*url.URL, error) {
			u, err := url.Parse(value)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s locator: %w", scheme, err)
			}
			if !strings.EqualFold(u.Scheme, scheme) || u.Host == "" {
				return nil, fmt.Errorf("locator %q is not an absolute %s URL", value, scheme)
			}
			return u, nil
		},
		Format: func(u *url.URL) (string, error) {
			return u.String(), nil
		},
	}
}
