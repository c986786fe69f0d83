package cache

// ScopedKeyer prefixes every key of an inner [Keyer], so that several
// ontologies can share one Redis without colliding.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a [DefaultKeyer] when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) LookupKey(service, query string) string {
	return k.prefix + k.inner.LookupKey(service, query)
}

func (k *ScopedKeyer) SnapshotKey(source string, labels []string) string {
	return k.prefix + k.inner.SnapshotKey(source, labels)
}
