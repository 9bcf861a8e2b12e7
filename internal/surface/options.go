package surface

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithView attaches a presentation view at construction time.
func WithView(v View) Option {
	return func(b *Buffer) {
		b.view = v
	}
}

// WithProperty seeds the property bag with a key/value pair.
func WithProperty(key string, value any) Option {
	return func(b *Buffer) {
		b.properties[key] = value
	}
}
