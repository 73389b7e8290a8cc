package namespace

import (
	"io"

	"github.com/charmbracelet/log"

	"martianoff/lispkg/lisperr"
)

// Names of the bootstrap packages.
const (
	KeywordPackage = "KEYWORD"
	LispPackage    = "LISP"
	UserPackage    = "USER"
)

// DefaultTableSize is the size hint used when none is given.
const DefaultTableSize = 129

// Decision is a handler's answer to a continuable error.
type Decision int

const (
	// Continue applies the error's default recovery and proceeds.
	Continue Decision = iota
	// Abort returns the error to the caller.
	Abort
)

// Handler decides how a continuable error is recovered. It is always called
// with no namespace lock held, so it may call back into the registry.
type Handler func(err lisperr.PackageError) Decision

// ContinueHandler applies every default recovery.
func ContinueHandler(lisperr.PackageError) Decision { return Continue }

// AbortHandler turns every continuable error into a failure.
func AbortHandler(lisperr.PackageError) Decision { return Abort }

// Options configures a Registry.
type Options struct {
	ExternalSize int     // Default external table size hint
	InternalSize int     // Default internal table size hint
	MaxRetries   int     // Cap on retries after a recovered error
	UserPackage  bool    // Bootstrap a USER package that uses LISP
	Handler      Handler // nil means ContinueHandler
	Logger       *log.Logger
}

// DefaultOptions returns the options used by the runtime.
func DefaultOptions() Options {
	return Options{
		ExternalSize: DefaultTableSize,
		InternalSize: DefaultTableSize,
		MaxRetries:   3,
		UserPackage:  true,
	}
}

func (o Options) withDefaults() Options {
	if o.ExternalSize <= 0 {
		o.ExternalSize = DefaultTableSize
	}
	if o.InternalSize <= 0 {
		o.InternalSize = DefaultTableSize
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 1
	}
	if o.Handler == nil {
		o.Handler = ContinueHandler
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{Prefix: "namespace"})
	}
	return o
}
