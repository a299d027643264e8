package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/root4loot/goutils/log"
	"github.com/root4loot/pageshot/pkg/pageshot"
)

const (
	author    = "@danielantonsen"
	version   = "0.1.0"
	exitUsage = 2
	usage     = `USAGE:
  pageshot [options]

  Loads a page in headless Chrome and saves a screenshot of it.
  Without options it captures http://localhost:8000/ at 1024x768 to ./index.png.

INPUT:
  -u,   --url                    page to capture                                  (Default: http://localhost:8000/)
        --config                 YAML file with options (or $PAGESHOT_CONFIG)

CONFIGURATIONS:
  -e,   --engine                 browser driver: chromedp or rod                  (Default: chromedp)
  -cw,  --capture-width          viewport width                                   (Default: 1024)
  -ch,  --capture-height         viewport height                                  (Default: 768)
  -cf,  --capture-full           capture entire content                           (Default: false)
  -to,  --timeout                page load timeout in seconds, 0 waits forever    (Default: 0)
  -ua,  --user-agent             specify user agent                               (Default: browser UA)
        --chrome-path            browser binary (or $CHROME_BIN)                  (Default: auto-detect)
        --no-sandbox             run the browser without sandbox                  (Default: false)
        --allow-http-errors      treat HTTP error pages as loaded                 (Default: false)

OUTPUT:
  -o,   --output                 image path, overwritten on success               (Default: index.png)
  -im,  --imprint                add the page origin below the image              (Default: false)
        --strict                 exit 3 when the image cannot be saved            (Default: false)
  -s,   --silence                silence output
        --debug                  enable debug mode
        --version                display version

EXIT CODES:
  0  page loaded and screenshot requested
  1  page load failed
  2  invalid usage
  3  screenshot could not be saved (--strict only)
`
)

type cli struct {
	Options pageshot.Options

	configPath      string
	allowHTTPErrors bool
	help            bool
	version         bool
}

func newCLI() *cli {
	return &cli{Options: pageshot.NewOptions()}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one capture and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	c := newCLI()

	if err := c.parseFlags(args); err != nil {
		fmt.Fprintf(stderr, "%v\n\n%s", err, usage)
		return exitUsage
	}

	if c.help {
		fmt.Fprint(stdout, usage)
		return pageshot.ExitSuccess
	}

	if c.version {
		fmt.Fprintln(stdout, "pageshot", version, "by", author)
		return pageshot.ExitSuccess
	}

	runner, err := pageshot.NewRunner(c.Options)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n\n%s", err, usage)
		return exitUsage
	}
	defer func() {
		if err := runner.Close(); err != nil {
			log.Debugf("Error closing browser: %v", err)
		}
	}()
	runner.Stdout = stdout

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runner.Run(ctx)
}

// flagSet binds every flag to options and the cli fields.
func (c *cli) flagSet(options *pageshot.Options) *flag.FlagSet {
	fs := flag.NewFlagSet("pageshot", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// INPUT
	fs.StringVar(&options.URL, "url", options.URL, "")
	fs.StringVar(&options.URL, "u", options.URL, "")
	fs.StringVar(&c.configPath, "config", c.configPath, "")

	// CONFIGURATIONS
	fs.StringVar(&options.Engine, "engine", options.Engine, "")
	fs.StringVar(&options.Engine, "e", options.Engine, "")
	fs.IntVar(&options.CaptureWidth, "capture-width", options.CaptureWidth, "")
	fs.IntVar(&options.CaptureWidth, "cw", options.CaptureWidth, "")
	fs.IntVar(&options.CaptureHeight, "capture-height", options.CaptureHeight, "")
	fs.IntVar(&options.CaptureHeight, "ch", options.CaptureHeight, "")
	fs.BoolVar(&options.CaptureFull, "capture-full", options.CaptureFull, "")
	fs.BoolVar(&options.CaptureFull, "cf", options.CaptureFull, "")
	fs.IntVar(&options.Timeout, "timeout", options.Timeout, "")
	fs.IntVar(&options.Timeout, "to", options.Timeout, "")
	fs.StringVar(&options.UserAgent, "user-agent", options.UserAgent, "")
	fs.StringVar(&options.UserAgent, "ua", options.UserAgent, "")
	fs.StringVar(&options.ChromePath, "chrome-path", options.ChromePath, "")
	fs.BoolVar(&options.NoSandbox, "no-sandbox", options.NoSandbox, "")
	fs.BoolVar(&c.allowHTTPErrors, "allow-http-errors", c.allowHTTPErrors, "")

	// OUTPUT
	fs.StringVar(&options.Output, "output", options.Output, "")
	fs.StringVar(&options.Output, "o", options.Output, "")
	fs.BoolVar(&options.Imprint, "imprint", options.Imprint, "")
	fs.BoolVar(&options.Imprint, "im", options.Imprint, "")
	fs.BoolVar(&options.StrictRender, "strict", options.StrictRender, "")
	fs.BoolVar(&options.Silence, "silence", options.Silence, "")
	fs.BoolVar(&options.Silence, "s", options.Silence, "")
	fs.BoolVar(&options.Debug, "debug", options.Debug, "")
	fs.BoolVar(&c.help, "help", false, "")
	fs.BoolVar(&c.help, "h", false, "")
	fs.BoolVar(&c.version, "version", false, "")

	return fs
}

// parseFlags builds the options from defaults, the config file and the
// command line, in that order.
func (c *cli) parseFlags(args []string) error {
	options := pageshot.NewOptions()
	fs := c.flagSet(&options)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if c.configPath == "" {
		c.configPath = os.Getenv(pageshot.ConfigEnv)
	}

	if c.configPath != "" {
		loaded, err := pageshot.LoadOptions(c.configPath)
		if err != nil {
			return err
		}
		// Parse again so flags given on the command line win over the file.
		options = loaded
		fs = c.flagSet(&options)
		if err := fs.Parse(args); err != nil {
			return err
		}
	}

	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if c.allowHTTPErrors {
		options.FailOnHTTPError = false
	}

	c.Options = options
	if c.help || c.version {
		return nil
	}

	pageshot.SetLogLevel(options)
	log.Debugf("Options: %+v", options)

	return options.Validate()
}
