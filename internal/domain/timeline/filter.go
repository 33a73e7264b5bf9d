package timeline

import "strings"

// Filter selects entries. Zero-valued fields impose no constraint; all set
// fields must match.
type Filter struct {
	Types        []Marker `json:"types,omitempty" yaml:"types,omitempty"`
	Entity       string   `json:"entity,omitempty" yaml:"entity,omitempty"`
	MinValue     *int64   `json:"min_value,omitempty" yaml:"min_value,omitempty"`
	CriticalOnly bool     `json:"critical_only,omitempty" yaml:"critical_only,omitempty"`
}

// Active reports whether any criterion is set.
func (f Filter) Active() bool {
	return len(f.Types) > 0 || f.Entity != "" || f.MinValue != nil || f.CriticalOnly
}

// Counters aggregate the matched entries.
type Counters struct {
	Total     int            `json:"total" yaml:"total"`
	Matched   int            `json:"matched" yaml:"matched"`
	ByMarker  map[Marker]int `json:"by_marker" yaml:"by_marker"`
	Damage    int64          `json:"damage" yaml:"damage"`
	Healing   int64          `json:"healing" yaml:"healing"`
	Criticals int            `json:"criticals" yaml:"criticals"`
}

// Result is a filtered timeline.
type Result struct {
	Entries  []Entry  `json:"entries" yaml:"entries"`
	Counters Counters `json:"counters" yaml:"counters"`
}

// Apply returns the entries matching f, in input order, with counters over
// the matched subset. The input is not modified.
func Apply(entries []Entry, f Filter) Result {
	m := newMatcher(f)
	res := Result{
		Entries:  make([]Entry, 0, len(entries)),
		Counters: Counters{Total: len(entries), ByMarker: make(map[Marker]int)},
	}
	for _, e := range entries {
		if !m.match(e) {
			continue
		}
		res.Entries = append(res.Entries, e)
		c := &res.Counters
		c.Matched++
		c.ByMarker[e.Marker]++
		switch e.Unit {
		case UnitDamage:
			c.Damage += e.Value
		case UnitHealing:
			c.Healing += e.Value
		}
		if e.Critical {
			c.Criticals++
		}
	}
	return res
}

type matcher struct {
	f      Filter
	types  map[Marker]struct{}
	entity string
}

func newMatcher(f Filter) matcher {
	m := matcher{f: f, entity: strings.ToLower(f.Entity)}
	if len(f.Types) > 0 {
		m.types = make(map[Marker]struct{}, len(f.Types))
		for _, t := range f.Types {
			m.types[t] = struct{}{}
		}
	}
	return m
}

// match applies every set criterion. An entry without a value never passes
// a minimum value.
func (m matcher) match(e Entry) bool {
	if m.types != nil {
		if _, ok := m.types[e.Marker]; !ok {
			return false
		}
	}
	if m.entity != "" &&
		!strings.Contains(strings.ToLower(e.Source), m.entity) &&
		!strings.Contains(strings.ToLower(e.Target), m.entity) {
		return false
	}
	if m.f.MinValue != nil && (!e.HasValue() || e.Value < *m.f.MinValue) {
		return false
	}
	if m.f.CriticalOnly && !e.Critical {
		return false
	}
	return true
}
