package course

import util "github.com/grivax/grivax-api/internal/utils"

// UnitProgress is the rounded share of completed chapters in a unit.
func UnitProgress(chapters []Chapter) int {
	done := 0
	for _, ch := range chapters {
		if ch.IsCompleted {
			done++
		}
	}
	return util.Percent(done, len(chapters))
}

// UnitCompleted reports whether every chapter of the unit is completed. A unit
// without chapters counts as completed.
func UnitCompleted(u Unit) bool {
	for _, ch := range u.Chapters {
		if !ch.IsCompleted {
			return false
		}
	}
	return true
}

// CourseProgress is the rounded share of fully completed units.
func CourseProgress(units []Unit) int {
	done := 0
	for _, u := range units {
		if UnitCompleted(u) {
			done++
		}
	}
	return util.Percent(done, len(units))
}

// applyProgress recomputes the derived percentages from chapter state.
func applyProgress(c *Course) {
	for i := range c.Units {
		c.Units[i].Progress = UnitProgress(c.Units[i].Chapters)
	}
	c.Progress = CourseProgress(c.Units)
}
