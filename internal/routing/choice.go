package routing

// Choice is a percentage-weighted, priority-ordered list of exits active
// during one time range. Priority is positional: Exits[0] is priority 1.
//
// Percentages across the choices of a single time range are expected to sum
// to 100; the coverage validator reports violations rather than rejecting
// them here, so partially edited schedules remain representable.
type Choice struct {
	Percentage int
	Exits      []Exit

	// Err records a resolution failure for one of the choice's exit
	// references. The choice is carried through conversion unchanged and the
	// failure is surfaced by validation, never by aborting the pipeline.
	Err error
}

// Clone returns an independent copy of the choice. The exits slice is
// duplicated so later mutation of one copy cannot leak into the other.
func (c Choice) Clone() Choice {
	out := c
	if c.Exits != nil {
		out.Exits = make([]Exit, len(c.Exits))
		copy(out.Exits, c.Exits)
	}
	return out
}

// Equal reports structural equality: same percentage and the same exits in
// the same priority order. Resolution errors are excluded; an unresolved
// choice never equals anything, including itself.
func (c Choice) Equal(other Choice) bool {
	if c.Err != nil || other.Err != nil {
		return false
	}
	if c.Percentage != other.Percentage || len(c.Exits) != len(other.Exits) {
		return false
	}
	for i := range c.Exits {
		if !c.Exits[i].Equal(other.Exits[i]) {
			return false
		}
	}
	return true
}

// CloneChoices deep-copies a choice list.
func CloneChoices(choices []Choice) []Choice {
	if choices == nil {
		return nil
	}
	out := make([]Choice, len(choices))
	for i, c := range choices {
		out[i] = c.Clone()
	}
	return out
}

// ChoicesEqual reports element-wise equality of two choice lists.
func ChoicesEqual(a, b []Choice) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
