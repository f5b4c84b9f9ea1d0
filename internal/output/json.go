package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/westhuggin/prca-standings-scraper/pkg/models"
)

// Write prints records as a 2-space indented JSON array followed by a
// newline. A nil or empty slice prints [].
func Write(w io.Writer, records []models.Standing) error {
	if records == nil {
		records = []models.Standing{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}

// Emitter writes the result array at most once, so the normal path and a
// last-resort recover cannot both print.
type Emitter struct {
	w    io.Writer
	once sync.Once
	err  error
}

func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

func (e *Emitter) Emit(records []models.Standing) error {
	e.once.Do(func() {
		e.err = Write(e.w, records)
	})
	return e.err
}

// EmitEmpty prints [] unless something was already emitted.
func (e *Emitter) EmitEmpty() error {
	return e.Emit(nil)
}
