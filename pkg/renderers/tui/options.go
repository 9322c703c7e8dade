package tui

// OutputFormat controls how Render serializes a view.
type OutputFormat string

const (
	// OutputFormatJSON emits the view as application/json.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures the message prefixes the wizard prints. Kept free of ANSI
// specifics so any terminal can display it.
type Theme struct {
	PromptPrefix  string
	InfoPrefix    string
	SuccessPrefix string
	ErrorPrefix   string
}

// DefaultTheme is used when no theme is supplied.
var DefaultTheme = Theme{
	InfoPrefix:    "ℹ ",
	SuccessPrefix: "✔ ",
	ErrorPrefix:   "✖ ",
}

// Option configures the renderer and the wizard.
type Option func(*options)

type options struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
}

func newOptions(opts []Option) options {
	cfg := options{
		outputFormat: OutputFormatPrettyText,
		theme:        DefaultTheme,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.driver == nil {
		cfg.driver = newSurveyDriver()
	}
	return cfg
}

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(o *options) {
		if driver != nil {
			o.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(o *options) {
		if format != "" {
			o.outputFormat = format
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(o *options) {
		o.theme = theme
	}
}
