package domain

// Sort is a named type with an optional parent sort. Sort containment is
// transitive: an object in a sort is also in all of its ancestors.
type Sort struct {
	Name    string
	Parent  string // empty for the universal root sort
	objects map[string]bool
}

func newSort(name, parent string) *Sort {
	return &Sort{Name: name, Parent: parent, objects: map[string]bool{}}
}

// Objects returns the names declared directly in this sort (not inherited
// from descendants).
func (s *Sort) Objects() []string {
	out := make([]string, 0, len(s.objects))
	for o := range s.objects {
		out = append(out, o)
	}
	return out
}

// UniversalSort is the name of the built-in root sort every other sort
// descends from.
const UniversalSort = "object"

// builtinSorts are seeded into every new registry: a built-in hierarchy
// rooted at a universal sort includes capability, robot, robotlocation,
// location, robotteam; user sorts are introduced by the
// domain." They are modeled as direct children of the universal sort; the
// domain may re-parent them by declaring its own AddSort call for the same
// name before Freeze.
var builtinSorts = []string{"capability", "robot", "robotlocation", "location", "robotteam"}
