package exchange

type Option func(*Options)

type Options struct {
	// Limit bounds the depth of an order book fetch; zero means the
	// exchange default.
	Limit int
	// Page selects a page of historical entrustments; zero means the
	// first page.
	Page int
}

func WithLimit(limit int) Option {
	return func(o *Options) {
		o.Limit = limit
	}
}

func WithPage(page int) Option {
	return func(o *Options) {
		o.Page = page
	}
}

func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
