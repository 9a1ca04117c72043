package stats

import "sort"

type (
	sortable []struct {
		Name    string
		Samples int
		Average float64
	}
)

func (s *sortable) add(name string, n int, a float64) {
	*s = append(*s, struct {
		Name    string
		Samples int
		Average float64
	}{name, n, a})
}

func (s sortable) Len() int { return len(s) }

func (s sortable) Less(i, j int) bool {
	if s[i].Samples == s[j].Samples {
		return s[i].Name < s[j].Name
	}

	return s[i].Samples > s[j].Samples
}

func (s sortable) Swap(i, j int) {
	s[i], s[j] = s[j], s[i]
}

func (s sortable) Sort() {
	sort.Sort(s)
}
