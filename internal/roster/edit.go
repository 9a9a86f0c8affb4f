package roster

import (
	"github.com/wardroster/engine/internal/domain"
)

// ApplyManualEdit sets one cell and keeps the manual edit set in step:
// a non-empty code marks the cell as manual, an empty code clears the cell
// and drops the mark.
func ApplyManualEdit(g *domain.Grid, manual domain.ManualEditSet, p domain.Policy, worker string, day int, code domain.DutyCode) error {
	if _, err := p.ParseDutyCode(string(code)); err != nil {
		return err
	}
	if err := g.Set(worker, day, code); err != nil {
		return err
	}
	key := domain.CellKey{Worker: worker, Day: day}
	if code.IsUnset() {
		delete(manual, key)
	} else {
		manual[key] = struct{}{}
	}
	return nil
}
