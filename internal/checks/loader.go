package checks

import (
	"plugin"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ifregtest/ifregtest/internal/rterrors"
)

// ExtensionRegisterFunc is the exported symbol an extension .so must define:
//
//	func Register(r *checks.Registry)
//
// It should call r.Prepend for each check kind it adds, so extension
// builders are tried before the built-ins.
type ExtensionRegisterFunc func(r *Registry)

// LoadCheckClasses expands each glob pattern in patterns (via doublestar,
// so "**/*.so" works) and loads every matched Go plugin into r.
func LoadCheckClasses(r *Registry, patterns []string) error {
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return rterrors.Wrap(rterrors.KindConfig, err, "checkclass pattern %q", pattern)
		}
		if len(matches) == 0 {
			return rterrors.New(rterrors.KindConfig, "checkclass pattern %q matched nothing", pattern)
		}
		for _, path := range matches {
			if err := loadOne(r, path); err != nil {
				return err
			}
		}
	}
	return nil
}

func loadOne(r *Registry, path string) error {
	p, err := plugin.Open(path)
	if err != nil {
		return rterrors.Wrap(rterrors.KindConfig, err, "open checkclass plugin %s", path)
	}
	sym, err := p.Lookup("Register")
	if err != nil {
		return rterrors.Wrap(rterrors.KindConfig, err, "checkclass plugin %s missing Register", path)
	}
	register, ok := sym.(func(*Registry))
	if !ok {
		return rterrors.New(rterrors.KindConfig, "checkclass plugin %s: Register has the wrong signature", path)
	}
	register(r)
	return nil
}
