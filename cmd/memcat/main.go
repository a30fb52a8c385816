//go:build unix

// Command memcat copies a stream into a file through a mirrored ring buffer
// and a buffered sink, optionally compressing it and printing a blake3 digest
// of the input.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Giulio2002/memio"
	"github.com/Giulio2002/memio/internal/config"
	"github.com/Giulio2002/memio/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"
)

func main() {
	err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	var logged loggedError
	if err != nil && !errors.As(err, &logged) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(exitCode(err))
}

// loggedError marks a failure that run already reported through the logger.
type loggedError struct{ error }

func (e loggedError) Unwrap() error { return e.error }

func exitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}

func run(args []string, stdin io.Reader, stdout *os.File, stderr io.Writer) error {
	var (
		configPath string
		inputPath  string
	)
	cfg := config.Default()

	flagSet := pflag.NewFlagSet("memcat", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&configPath, "config", "", "TOML file with default settings")
	flagSet.StringVarP(&inputPath, "input", "i", "", "read from this file instead of stdin")
	flagSet.StringVarP(&cfg.Output, "output", "o", "", "write to this file instead of stdout")
	flagSet.IntVar(&cfg.RingSize, "ring-size", cfg.RingSize, "ring buffer capacity in bytes (rounded up to pages)")
	flagSet.IntVar(&cfg.SinkSize, "sink-size", cfg.SinkSize, "output buffer size in bytes")
	flagSet.StringVar(&cfg.Compress, "compress", cfg.Compress, "compress output: none, zstd or lz4")
	flagSet.BoolVar(&cfg.Digest, "digest", false, "print the blake3 digest of the input to stderr")
	flagSet.StringVar(&cfg.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error, off")
	flagSet.BoolP("help", "h", false, "show help")
	flagSet.Bool("version", false, "print the version and exit")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		fmt.Fprintf(stderr, "Usage: memcat [flags]\n\n%s", flagSet.FlagUsages())
		return nil
	}
	if version, _ := flagSet.GetBool("version"); version {
		fmt.Fprintln(stdout, memio.Version())
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	if configPath != "" {
		fileCfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = merge(fileCfg, cfg, flagSet)
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger := logging.Configure(logging.ProfileRuntime, stderr)
	if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
		logger = logger.Level(lvl)
		memio.SetLogger(logger)
	}

	in := stdin
	if inputPath != "" {
		f, err := os.Open(inputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	fd, err := openOutput(cfg.Output, stdout)
	if err != nil {
		return err
	}
	sink := memio.NewSink(fd, cfg.SinkSize)
	defer sink.Close()

	st, err := copyStream(in, sink, cfg)
	if err == nil {
		err = sink.Close()
	}
	if err != nil {
		logger.Error().Err(err).Str("output", cfg.Output).Msg("copy failed")
		return loggedError{err}
	}

	logEvent(logger.Debug(), st).Msg("copy complete")
	if cfg.Digest {
		fmt.Fprintf(stderr, "%x  %d\n", st.Digest, st.In)
	}
	return nil
}

// merge lays explicitly set flags over file settings.
func merge(file, flags config.Config, flagSet *pflag.FlagSet) config.Config {
	out := file
	if flagSet.Changed("output") {
		out.Output = flags.Output
	}
	if flagSet.Changed("ring-size") {
		out.RingSize = flags.RingSize
	}
	if flagSet.Changed("sink-size") {
		out.SinkSize = flags.SinkSize
	}
	if flagSet.Changed("compress") {
		out.Compress = flags.Compress
	}
	if flagSet.Changed("digest") {
		out.Digest = flags.Digest
	}
	if flagSet.Changed("log-level") {
		out.LogLevel = flags.LogLevel
	}
	return out
}

func openOutput(path string, stdout *os.File) (*memio.FD, error) {
	if path == "" {
		return memio.DupFD(int(stdout.Fd()))
	}
	return memio.OpenFD(func() (int, error) {
		return unix.Open(path, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC|unix.O_CLOEXEC, 0o644)
	})
}

func logEvent(e *zerolog.Event, s stats) *zerolog.Event {
	return e.Int64("in", s.In).Int64("out", s.Out).Int("ring_size", s.RingSize)
}
