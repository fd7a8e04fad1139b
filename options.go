package rowwin

type options struct {
	inlineNumerics  bool
	initialCapacity uint32
}

// Option configures a window at construction time.
type Option func(*options)

// WithInlineNumerics selects whether integer and float cells are stored
// inline in the field slot (the default) or as separately allocated
// 8-byte runs referenced by offset and length.
//
// The choice is part of the window's byte image: every process that
// binds the image must use the same setting.
func WithInlineNumerics(inline bool) Option {
	return func(o *options) {
		o.inlineNumerics = inline
	}
}

// WithInitialCapacity sets the initially usable slice of the backing
// segment. By default the full segment is usable up front. A smaller
// initial capacity exercises the growth path: the window grows in fixed
// increments while at most one row has been committed.
func WithInitialCapacity(n uint32) Option {
	return func(o *options) {
		o.initialCapacity = n
	}
}
