package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hesusruiz/sx2html/sx"
	"github.com/sanity-io/litter"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// Exit status for malformed documents, any other failure exits with 1
const exitSyntaxError = 2

// job describes one compilation requested from the command line
type job struct {
	inputName  string
	outputName string
	opts       sx.Options
	dump       bool
	dryrun     bool
}

// run compiles the input document and writes the result
func (j *job) run(ctx context.Context) error {
	var r io.Reader = os.Stdin
	if j.inputName != "-" {
		f, err := os.Open(j.inputName)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	root, err := sx.Parse(j.inputName, r)
	if err != nil {
		return err
	}

	elem, err := sx.BuildElement(root, j.opts)
	if err != nil {
		return err
	}

	if j.dump {
		root.Dump(os.Stderr)
		fmt.Fprintln(os.Stderr, litter.Sdump(elem))
	}

	g, err := sx.NewGenerator(j.opts)
	if err != nil {
		return err
	}
	html, err := g.Generate(ctx, elem)
	if err != nil {
		return err
	}

	// Do nothing if flag dryrun was specified
	if j.dryrun {
		return nil
	}

	if j.outputName == "-" {
		_, err = io.WriteString(os.Stdout, html)
		return err
	}
	return os.WriteFile(j.outputName, []byte(html), 0664)
}

// processWatch checks periodically if the input file has been modified, and if so
// it compiles the file again and writes the result to the output file
func processWatch(ctx context.Context, j *job, sugar *zap.SugaredLogger) error {
	var oldTimestamp time.Time

	for {
		info, err := os.Stat(j.inputName)
		if err != nil {
			return err
		}

		// If the modified timestamp is newer than the previous one, process the file
		if oldTimestamp.Before(info.ModTime()) {
			oldTimestamp = info.ModTime()
			sugar.Infow("processing", "input", j.inputName, "output", j.outputName)
			if err := j.run(ctx); err != nil {
				// Keep watching, the author will fix the document
				sugar.Errorw("compilation failed", "error", err)
			}
		}

		// Check again in one second
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(1 * time.Second):
		}
	}
}

// loadOptions builds the options from the config file and the command line flags.
// The flags take precedence over the config file.
func loadOptions(c *cli.Context, inputName string) (sx.Options, error) {
	opts := sx.DefaultOptions()

	if inputName != "-" {
		opts.BaseDir = filepath.Dir(inputName)
	}

	configFile := c.String("config")
	if configFile == "" {
		candidate := filepath.Join(opts.BaseDir, sx.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
		}
	}
	if configFile != "" {
		var err error
		opts, err = sx.LoadOptions(configFile, opts)
		if err != nil {
			return opts, err
		}
	}

	if c.Bool("debug") {
		opts.Debug = true
	}
	if c.Bool("altindent") {
		opts.AltIndent = true
	}
	if c.IsSet("tab-width") {
		if c.Int("tab-width") <= 0 {
			return opts, fmt.Errorf("invalid tab width: %d", c.Int("tab-width"))
		}
		opts.TabWidth = c.Int("tab-width")
	}
	if c.IsSet("interpreter") {
		opts.Interpreter = c.String("interpreter")
	}
	if c.IsSet("code-style") {
		opts.CodeStyle = c.String("code-style")
	}

	return opts, nil
}

// exitError converts an error into the exit status of the program
func exitError(err error) error {
	if err == nil {
		return nil
	}
	var serr *sx.SyntaxError
	if errors.As(err, &serr) {
		return cli.Exit(err, exitSyntaxError)
	}
	return cli.Exit(err, 1)
}

// process is the main entry point of the program
func process(c *cli.Context) error {
	inputName, outputName := "-", "-"

	args := c.Args()
	if args.Len() > 2 {
		return cli.Exit("too many arguments, expecting [INP] [OUT]", 1)
	}
	if args.Present() {
		inputName = args.Get(0)
	}
	if args.Len() > 1 {
		outputName = args.Get(1)
	}
	if o := c.String("output"); o != "" {
		outputName = o
	}

	opts, err := loadOptions(c, inputName)
	if err != nil {
		return exitError(err)
	}

	// Setup the logging system
	var z *zap.Logger
	if opts.Debug {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		return exitError(err)
	}
	sugar := z.Sugar()
	defer sugar.Sync()

	opts.Logger = sugar

	j := &job{
		inputName:  inputName,
		outputName: outputName,
		opts:       opts,
		dump:       c.Bool("dump"),
		dryrun:     c.Bool("dryrun"),
	}

	// If the user specified to watch, loop forever processing the input file when modified
	if c.Bool("watch") {
		if inputName == "-" || outputName == "-" {
			return cli.Exit("watch mode needs an input and an output file", 1)
		}
		return exitError(processWatch(c.Context, j, sugar))
	}

	return exitError(j.run(c.Context))
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "sx2html",
		Version:   "v0.1.0",
		Usage:     "compile an S-expression document into indented HTML",
		UsageText: "sx2html [options] [INP] [OUT] (INP and OUT default to standard input and output)",
		Action:    process,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write html to `FILE` instead of OUT",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "read options from the YAML `FILE` (default is sx2html.yaml next to the input)",
			},
			&cli.IntFlag{
				Name:  "tab-width",
				Value: sx.DefaultTabWidth,
				Usage: "columns per tab stop",
			},
			&cli.StringFlag{
				Name:  "interpreter",
				Value: sx.DefaultInterpreter,
				Usage: "`COMMAND` receiving $python snippets on its standard input",
			},
			&cli.StringFlag{
				Name:  "code-style",
				Value: sx.DefaultCodeStyle,
				Usage: "chroma `STYLE` for @code blocks",
			},
			&cli.BoolFlag{
				Name:    "altindent",
				Aliases: []string{"a"},
				Usage:   "keep the first child of a block on the line of its opening tag",
			},
			&cli.BoolFlag{
				Name:  "dump",
				Usage: "print the parsed trees to standard error",
			},
			&cli.BoolFlag{
				Name:    "dryrun",
				Aliases: []string{"n"},
				Usage:   "do not write the output, just process the input",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "run in debug mode, tracing executed scripts",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "watch the input file for changes",
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
