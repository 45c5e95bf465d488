package toon

// config holds the tunable behavior shared by Lexer, Decoder, and Encoder,
// set via functional options at construction time.
type config struct {
	indentSize      int
	lenient         bool
	maxNestingDepth int
	maxNumberLength int
}

func defaultConfig() config {
	return config{
		indentSize:      2,
		lenient:         false,
		maxNestingDepth: maxNestingDepthDefault,
		maxNumberLength: maxNumberLengthDefault,
	}
}

// Option configures a Lexer, Decoder, or Encoder.
type Option func(*config)

// WithIndentSize sets the number of spaces one indentation level occupies.
// The default is 2.
func WithIndentSize(n int) Option {
	return func(c *config) { c.indentSize = n }
}

// WithLenientMode relaxes the codec's error handling: leading indentation
// that is not a multiple of the indent size, or that dedents to a column
// no enclosing line used, is kept as an indentation level of its own; a
// tab in indentation counts as one column, like a space; invalid escape
// sequences are kept literally; an inline array with more or fewer
// elements than declared, or a tabular row with more fields than its
// header, uses what is present instead of aborting; and tabular and list
// arrays may end with fewer rows or items than declared. A tabular row
// with fewer fields than its header, and rows or items beyond the
// declared length of a tabular or list array, are still errors. The
// default is strict mode.
func WithLenientMode() Option {
	return func(c *config) { c.lenient = true }
}

// WithMaxNestingDepth caps how many nested object/array frames the codec
// will track before failing with a resource error. The default is 1000.
func WithMaxNestingDepth(n int) Option {
	return func(c *config) { c.maxNestingDepth = n }
}

// WithMaxNumberLength caps the number of characters a single numeric
// literal may span before failing with a resource error. The default is
// 1000.
func WithMaxNumberLength(n int) Option {
	return func(c *config) { c.maxNumberLength = n }
}
