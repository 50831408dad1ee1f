package sx

import (
	"fmt"
	"os"

	"github.com/hesusruiz/vcutils/yaml"
	"go.uber.org/zap"
)

const (
	DefaultTabWidth    = 4
	DefaultInterpreter = "python3 -"
	DefaultCodeStyle   = "github"
	DefaultDateFormat  = "2006-01-02"

	// ConfigFileName is looked up in the directory of the input document
	ConfigFileName = "sx2html.yaml"
)

// Options configures the compilation of one document
type Options struct {
	// TabWidth is the number of columns per tab stop, used when dedenting
	// verbatim blocks and scripts, and when expanding included files
	TabWidth int

	// Debug enables the trace of executed snippets
	Debug bool

	// AltIndent selects the compact generic block style, where the first
	// child stays on the line of the opening tag
	AltIndent bool

	// Interpreter is the command line receiving subprocess snippets on stdin
	Interpreter string

	// CodeStyle is the name of the chroma style for highlighted code blocks
	CodeStyle string

	// DateFormat is the Go time layout used by @date when none is given
	DateFormat string

	// BaseDir is the directory used to resolve relative paths in the document
	BaseDir string

	Logger *zap.SugaredLogger
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		TabWidth:    DefaultTabWidth,
		Interpreter: DefaultInterpreter,
		CodeStyle:   DefaultCodeStyle,
		DateFormat:  DefaultDateFormat,
		BaseDir:     ".",
	}
}

// normalize fills the zero values with the defaults
func (o Options) normalize() Options {
	if o.TabWidth <= 0 {
		o.TabWidth = DefaultTabWidth
	}
	if o.Interpreter == "" {
		o.Interpreter = DefaultInterpreter
	}
	if o.CodeStyle == "" {
		o.CodeStyle = DefaultCodeStyle
	}
	if o.DateFormat == "" {
		o.DateFormat = DefaultDateFormat
	}
	if o.BaseDir == "" {
		o.BaseDir = "."
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop().Sugar()
	}
	return o
}

// ParseOptions overlays the values of a YAML document on top of base.
// Keys not present in the document keep the value they have in base.
func ParseOptions(src string, base Options) (Options, error) {
	cfg, err := yaml.ParseYaml(src)
	if err != nil {
		return base, err
	}

	o := base
	o.TabWidth = cfg.Int("tabWidth", base.TabWidth)
	// Flags can only be switched on, as on the command line
	o.Debug = base.Debug || cfg.Bool("debug")
	o.AltIndent = base.AltIndent || cfg.Bool("altIndent")
	o.Interpreter = cfg.String("interpreter", base.Interpreter)
	o.CodeStyle = cfg.String("codeStyle", base.CodeStyle)
	o.DateFormat = cfg.String("dateFormat", base.DateFormat)

	if o.TabWidth <= 0 {
		return base, fmt.Errorf("invalid tabWidth: %d", o.TabWidth)
	}
	return o, nil
}

// LoadOptions reads the YAML file fileName and overlays its values on top of base
func LoadOptions(fileName string, base Options) (Options, error) {
	src, err := os.ReadFile(fileName)
	if err != nil {
		return base, err
	}
	o, err := ParseOptions(string(src), base)
	if err != nil {
		return base, fmt.Errorf("parsing config file %s: %w", fileName, err)
	}
	return o, nil
}
