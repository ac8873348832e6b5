package lookup

import (
	"fmt"
	"io"
	"sort"
)

// ValueCount is the occurrence count of one value.
type ValueCount struct {
	Value string
	Count int
}

// NameStats summarizes the occurrences recorded for one name.
type NameStats struct {
	Name string
	// Total counts concrete values only (index >= Yes).
	Total  int
	Values []ValueCount
}

// Stats returns the occurrence histogram ranked by descending Total, then by
// name. Values within a name are ranked by descending count, then by value.
func (r *Registry) Stats() []NameStats {
	stats := make([]NameStats, 0, len(r.names))
	for num, name := range r.names {
		histo := r.histograms[num]
		ns := NameStats{Name: name, Values: make([]ValueCount, len(histo))}
		for i, cnt := range histo {
			if i >= Yes {
				ns.Total += cnt
			}
			ns.Values[i] = ValueCount{Value: r.values[num][i].value, Count: cnt}
		}
		sort.Slice(ns.Values, func(a, b int) bool {
			if ns.Values[a].Count != ns.Values[b].Count {
				return ns.Values[a].Count > ns.Values[b].Count
			}
			return ns.Values[a].Value < ns.Values[b].Value
		})
		stats = append(stats, ns)
	}

	sort.Slice(stats, func(a, b int) bool {
		if stats[a].Total != stats[b].Total {
			return stats[a].Total > stats[b].Total
		}
		return stats[a].Name < stats[b].Name
	})
	return stats
}

// WriteStats dumps Stats as "name;count value" lines with the count padded to
// ten digits, the same shape metadata files carry.
func (r *Registry) WriteStats(w io.Writer) error {
	for _, ns := range r.Stats() {
		for _, vc := range ns.Values {
			if _, err := fmt.Fprintf(w, "%s;%010d %s\n", ns.Name, vc.Count, vc.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// MergeStats adds the occurrence counts of other into r, matching names and
// values by string. Names missing in r are skipped; values missing in r are
// created, or counted as Unknown once the domain is full. The current vector
// is not touched.
func (r *Registry) MergeStats(other *Registry) {
	for onum, name := range other.names {
		num, ok := r.numbers[name]
		if !ok {
			continue
		}
		for oi, cnt := range other.histograms[onum] {
			if cnt == 0 {
				continue
			}
			i := r.find(num, other.values[onum][oi].value)
			if i == NotFound {
				if len(r.values[num]) >= MaxDomainSize {
					i = Unknown
				} else {
					i = r.appendValue(num, newValue(other.values[onum][oi].value))
				}
			}
			r.histograms[num][i] += cnt
		}
	}
}

// ClearStats zeroes every occurrence count, keeping the vocabulary.
func (r *Registry) ClearStats() {
	for _, histo := range r.histograms {
		clear(histo)
	}
}
