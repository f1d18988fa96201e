// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/example/tether/internal/ports/secondary"
)

// mapConstraintErr translates sqlite uniqueness violations into the
// shared secondary.ErrConflict kind so services can branch on them
// with errors.Is. Other errors pass through unchanged.
func mapConstraintErr(err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		if serr.ExtendedCode == sqlite3.ErrConstraintUnique || serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return secondary.ErrConflict
		}
	}
	return err
}
