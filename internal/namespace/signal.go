package namespace

import (
	"martianoff/lispkg/lisperr"
)

// signal reports err to the handler. It returns nil when the caller should
// apply the default recovery and proceed. Fatal errors are returned as is.
func (r *Registry) signal(err lisperr.PackageError) error {
	if !err.Continuable() {
		return err
	}
	if r.opts.Handler(err) == Abort {
		return err
	}
	r.logger.Warn("recovered", "error", err.Error(), "restart", err.Restart())
	return nil
}

// checkOpen signals a ClosedPackageError when p is closed.
func (r *Registry) checkOpen(p *Package, operation, subject string) error {
	if !p.closed.Load() {
		return nil
	}
	return r.signal(lisperr.NewClosedPackage(p.Name(), operation, subject))
}

// retry runs attempt until it completes. attempt runs under whatever locks
// it takes and releases them before returning; when it stops on a
// continuable error it returns that error as cond. The error is signalled
// with no lock held and, if the handler continues, recovered is applied
// before the next attempt. The number of recoveries is capped by
// Options.MaxRetries.
func (r *Registry) retry(attempt func() (cond lisperr.PackageError, err error), recovered func(lisperr.PackageError) error) error {
	for i := 0; ; i++ {
		cond, err := attempt()
		if cond == nil {
			return err
		}
		if i >= r.opts.MaxRetries {
			r.logger.Error("giving up after repeated recovery", "error", cond.Error(), "retries", i)
			return cond
		}
		if err := r.signal(cond); err != nil {
			return err
		}
		if recovered != nil {
			if err := recovered(cond); err != nil {
				return err
			}
		}
	}
}
