package workspace

import (
	"slices"
	"strconv"
	"strings"

	"idfworkspace/pkg/domain"
	"idfworkspace/pkg/schema"
)

// splitSuffix splits "Zone 12" or "Zone_12" into its base, separator and a
// positive integer suffix. Names without such a suffix are their own base.
func splitSuffix(name string) (base, sep string, n int, ok bool) {
	i := strings.LastIndexAny(name, " _")
	if i < 0 || i == len(name)-1 {
		return name, " ", 0, false
	}
	digits := name[i+1:]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return name, " ", 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return name, " ", 0, false
	}
	return name[:i], name[i : i+1], n, true
}

func baseName(name string) string {
	base, _, _, _ := splitSuffix(name)
	return base
}

// nextInSeries builds the next name in name's series given the names already
// taken. With fillIn it returns the smallest unused suffix, otherwise one past
// the largest.
func nextInSeries(name string, series []string, fillIn bool) string {
	var taken []int
	sep := " "
	for _, member := range series {
		if _, s, n, ok := splitSuffix(member); ok {
			taken = append(taken, n)
			sep = s
		}
	}
	slices.Sort(taken)
	taken = slices.Compact(taken)
	suffix := 1
	if fillIn {
		for _, used := range taken {
			if used != suffix {
				break
			}
			suffix++
		}
	} else if len(taken) > 0 {
		suffix = taken[len(taken)-1] + 1
	}
	return baseName(name) + sep + strconv.Itoa(suffix)
}

// NextName returns the next automatic name for objectType: its base name
// followed by one past the largest suffix in use, or the smallest free suffix
// when fillIn is set.
func (w *Workspace) NextName(objectType string, fillIn bool) (string, error) {
	def, ok := w.provider.ObjectType(objectType)
	if !ok {
		return "", domain.SchemaError{Type: objectType, Index: -1}
	}
	return nextInSeries(def.BaseName(), w.typeSeries(def, def.BaseName(), domain.NullHandle), fillIn), nil
}

// NextNameFor returns the next name in name's series across all object types.
func (w *Workspace) NextNameFor(name string, fillIn bool) string {
	var series []string
	for h := range w.byBase[strings.ToLower(baseName(name))] {
		if n, ok := w.objects[h].name(); ok {
			series = append(series, n)
		}
	}
	return nextInSeries(name, series, fillIn)
}

// typeSeries lists names of records of def's type in name's series.
func (w *Workspace) typeSeries(def *schema.TypeDef, name string, self domain.Handle) []string {
	var series []string
	for h := range w.byBase[strings.ToLower(baseName(name))] {
		if h == self {
			continue
		}
		e := w.objects[h]
		if !strings.EqualFold(e.def.Name, def.Name) {
			continue
		}
		if n, ok := e.name(); ok {
			series = append(series, n)
		}
	}
	return series
}

// conflictSeries lists names in name's series that could clash with a record
// of def's type: same type or a shared reference list.
func (w *Workspace) conflictSeries(def *schema.TypeDef, name string, self domain.Handle) []string {
	var series []string
	for h := range w.byBase[strings.ToLower(baseName(name))] {
		if h == self {
			continue
		}
		e := w.objects[h]
		if !potentialConflict(def, e.def) {
			continue
		}
		if n, ok := e.name(); ok {
			series = append(series, n)
		}
	}
	return series
}
