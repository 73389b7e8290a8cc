package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"martianoff/lispkg/internal/config"
	"martianoff/lispkg/internal/namespace"
	"martianoff/lispkg/internal/script"
)

// session is a configured registry with an interpreter on top.
type session struct {
	out    io.Writer
	cfg    *config.Config
	logger *log.Logger
	reg    *namespace.Registry
	interp *script.Interpreter
}

// newSession loads the configuration and creates a registry whose results
// are printed to out.
func newSession(out io.Writer) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	level := cfg.Level()
	if logLevel != "" {
		if level, err = log.ParseLevel(logLevel); err != nil {
			return nil, fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})

	reg := namespace.NewRegistry(cfg.Options(logger.WithPrefix("namespace")))
	return &session{
		out:    out,
		cfg:    cfg,
		logger: logger,
		reg:    reg,
		interp: script.New(reg, out, logger.WithPrefix("script")),
	}, nil
}

func readScript(name string) (string, error) {
	var (
		src []byte
		err error
	)
	if name == "-" {
		src, err = io.ReadAll(os.Stdin)
	} else {
		src, err = os.ReadFile(name)
	}
	return string(src), err
}

// runFiles runs each script in order. "-" reads standard input.
func (s *session) runFiles(files []string) error {
	for _, name := range files {
		src, err := readScript(name)
		if err != nil {
			return err
		}
		s.logger.Debug("running script", "file", name)
		if err := s.interp.Run(name, src); err != nil {
			return err
		}
	}
	return nil
}

// runParallel runs every script in its own goroutine against the shared
// registry, each with its own interpreter starting in the default package.
// Output is printed per script in argument order once all have finished.
func (s *session) runParallel(files []string) error {
	outputs := make([]bytes.Buffer, len(files))
	var g errgroup.Group
	for i, name := range files {
		g.Go(func() error {
			src, err := readScript(name)
			if err != nil {
				return err
			}
			interp := script.New(s.reg, &outputs[i], s.logger.With("file", name))
			return interp.Run(name, src)
		})
	}
	err := g.Wait()
	for i := range outputs {
		if _, werr := outputs[i].WriteTo(s.out); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// fail prints err and exits.
func fail(format string, err error) {
	fmt.Fprintf(os.Stderr, format+": %v\n", err)
	os.Exit(1)
}
