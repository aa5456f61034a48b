package analytics

import "sort"

// Direction selects the ordering of the ranking metric.
type Direction int

const (
	// Ascending ranks the smallest metric value first.
	Ascending Direction = iota
	// Descending ranks the largest metric value first.
	Descending
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Ranked pairs a row with its assigned 1-based rank.
type Ranked[T any] struct {
	Row  T
	Rank int
}

// RankSpec is a declarative description of a partitioned row-number
// ranking: which partition a row belongs to, the ordering metric and
// direction, a deterministic secondary sort for equal metric values, and
// an optional top-N cutoff. The ranker itself is metric and direction
// agnostic; "most common" and "rarest" are the same spec with the
// direction flipped.
type RankSpec[T any] struct {
	Partition func(T) string
	Metric    func(T) float64
	Direction Direction
	TieBreak  func(a, b T) bool
	Limit     int // 0 means no cutoff
}

// less orders two rows under the spec's metric, direction and tie-break.
func (s RankSpec[T]) less(a, b T) bool {
	ma, mb := s.Metric(a), s.Metric(b)
	if ma != mb {
		if s.Direction == Descending {
			return ma > mb
		}
		return ma < mb
	}
	if s.TieBreak != nil {
		return s.TieBreak(a, b)
	}
	return false
}

// RowNumber assigns a strictly increasing 1..K rank within each partition,
// regardless of metric ties. The tie-break makes the assignment
// reproducible across runs. A partition with fewer rows than the cutoff
// returns all available rows; there is no padding and no error. Output is
// ordered by partition key ascending, then rank.
func RowNumber[T any](rows []T, spec RankSpec[T]) []Ranked[T] {
	parts := GroupBy(rows, spec.Partition)

	keys := make([]string, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []Ranked[T]
	for _, k := range keys {
		part := parts[k]
		sort.SliceStable(part, func(i, j int) bool { return spec.less(part[i], part[j]) })
		for i, row := range part {
			rank := i + 1
			if spec.Limit > 0 && rank > spec.Limit {
				break
			}
			out = append(out, Ranked[T]{Row: row, Rank: rank})
		}
	}
	return out
}

// DenseRank orders rows by the metric in the given direction and assigns
// dense ranks: rows with an equal metric value share a rank, and the next
// distinct value advances the rank by exactly 1, not by the count of tied
// rows. The tie-break only fixes the output order of equal-rank rows.
func DenseRank[T any](rows []T, metric func(T) float64, dir Direction, tie func(a, b T) bool) []Ranked[T] {
	sorted := make([]T, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		mi, mj := metric(sorted[i]), metric(sorted[j])
		if mi != mj {
			if dir == Descending {
				return mi > mj
			}
			return mi < mj
		}
		if tie != nil {
			return tie(sorted[i], sorted[j])
		}
		return false
	})

	out := make([]Ranked[T], len(sorted))
	rank := 0
	for i, row := range sorted {
		if i == 0 || metric(row) != metric(sorted[i-1]) {
			rank++
		}
		out[i] = Ranked[T]{Row: row, Rank: rank}
	}
	return out
}
