// Command analyzer wires a sequence of named stages into a single pipeline
// and drains stdin through it, writing transform output and a completion
// line to stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/outpostlabs/analyzer/config"
	"github.com/outpostlabs/analyzer/internal/util"
	"github.com/outpostlabs/analyzer/pipeline"
	"github.com/outpostlabs/analyzer/sig"
	"github.com/outpostlabs/analyzer/transform"
)

var version = "v0.1.0"

// cmdOptions is the CLI surface (C8): everything a config file can set is
// overridable here, and an explicit flag always wins over the config file.
type cmdOptions struct {
	OptHelp          bool            `short:"h" long:"help" description:"show this help message and exit"`
	OptVersion       bool            `long:"version" description:"print the version and exit"`
	OptRcfile        string          `long:"rcfile" description:"path to the settings file"`
	OptQueueSize     int             `long:"queue-size" short:"q" description:"capacity shared by every stage's inbox"`
	OptLogLevel      config.LogLevel `long:"log-level" description:"debug, info, warn, or error"`
	OptSynthesizeEnd bool            `long:"synthesize-end" description:"synthesize the <END> sentinel at EOF if the input never sent one"`
}

// statusError carries the process exit status a particular failure class
// maps to, fulfilling the Cause()-chain convention internal/util.GetExitStatus
// walks.
type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string   { return e.err.Error() }
func (e *statusError) ExitStatus() int { return e.status }
func (e *statusError) Cause() error    { return e.err }

func withStatus(status int, err error) error {
	if err == nil {
		return nil
	}
	return &statusError{status: status, err: err}
}

func main() {
	os.Exit(run())
}

func run() int {
	if envvar := os.Getenv("GOMAXPROCS"); envvar == "" {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}

	opts := &cmdOptions{}
	parser := flags.NewParser(opts, flags.PrintErrors)
	stageNames, err := parser.ParseArgs(os.Args[1:])
	if err != nil {
		return statusOf(withStatus(2, err))
	}

	if opts.OptHelp {
		fmt.Fprintf(os.Stderr, "Usage: analyzer [options] <stage1> <stage2> ... <stageK>\n")
		fmt.Fprintf(os.Stderr, "Available stages: %s\n", strings.Join(transform.Names(), ", "))
		return 0
	}

	if opts.OptVersion {
		fmt.Fprintf(os.Stderr, "analyzer: %s\n", version)
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return statusOf(withStatus(2, err))
	}

	if len(stageNames) == 0 {
		stageNames = cfg.Stages
	}
	queueSize := cfg.QueueSize
	if opts.OptQueueSize > 0 {
		queueSize = opts.OptQueueSize
	}
	logLevel := cfg.LogLevel
	if opts.OptLogLevel != "" {
		logLevel = opts.OptLogLevel
	}
	synthesizeEnd := cfg.SynthesizeEnd || opts.OptSynthesizeEnd

	if err := validateStageNames(stageNames); err != nil {
		return statusOf(withStatus(2, err))
	}

	log, err := newLogger(logLevel)
	if err != nil {
		return statusOf(withStatus(2, err))
	}
	defer log.Sync() //nolint:errcheck // stderr sync failures are not actionable

	sugar := log.Sugar()

	p, err := pipeline.New(pipeline.Options{
		QueueSize:     queueSize,
		StageNames:    stageNames,
		SynthesizeEnd: synthesizeEnd,
	}, sugar)
	if err != nil {
		sugar.Errorw("failed to construct pipeline", "error", err)
		return statusOf(withStatus(3, err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	handler := sig.New(sig.ReceivedHandlerFunc(func(s os.Signal) {
		sugar.Infow("received signal, stopping input", "signal", s)
	}))
	go handler.Loop(ctx, cancel) //nolint:errcheck // Loop's error is just ctx.Err()

	if err := p.Run(ctx, os.Stdin, os.Stdout); err != nil {
		sugar.Errorw("pipeline run failed", "error", err)
		return statusOf(withStatus(4, err))
	}

	return 0
}

// validateStageNames reports every name that doesn't resolve in the
// transform registry in one error, instead of letting pipeline.New stop at
// the first one, so a typo in stage 3 of 5 doesn't hide a second typo in
// stage 4.
func validateStageNames(names []string) error {
	var unknown []string
	for _, name := range names {
		if !transform.IsRegistered(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	return fmt.Errorf("unknown stage name(s): %s (available: %s)",
		strings.Join(unknown, ", "), strings.Join(transform.Names(), ", "))
}

func loadConfig(opts *cmdOptions) (*config.Config, error) {
	var cfg config.Config
	if err := cfg.Init(); err != nil {
		return nil, fmt.Errorf("initializing default config: %w", err)
	}

	rcfile := opts.OptRcfile
	if rcfile == "" {
		if file, err := config.LocateRcfile(config.DefaultConfigLocator); err == nil {
			rcfile = file
		}
	}
	if rcfile != "" {
		if err := cfg.ReadFilename(rcfile); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", rcfile, err)
		}
	}
	return &cfg, nil
}

func newLogger(level config.LogLevel) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case config.LogLevelDebug:
		zapLevel = zapcore.DebugLevel
	case config.LogLevelWarn:
		zapLevel = zapcore.WarnLevel
	case config.LogLevelError:
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func statusOf(err error) int {
	if err == nil {
		return 0
	}
	status, _ := util.GetExitStatus(err)
	return status
}
