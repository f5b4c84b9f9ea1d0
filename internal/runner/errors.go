package runner

import "errors"

var (
	// ErrNoData marks a category where every strategy came back empty.
	ErrNoData        = errors.New("no standings data")
	ErrOpenSession   = errors.New("open session")
	ErrCategoryPanic = errors.New("category panic")
)
