package analytics

// SplitAtThreshold buckets a partition's rows into at-or-above and below
// the threshold using a closed-open split: value >= threshold lands in the
// first bucket, value < threshold in the second. The buckets are complete
// and disjoint: every row lands in exactly one, and the bucket sizes sum
// to the partition size.
//
// The threshold is expected to come from phase one of a two-phase
// aggregation over the same partition definition and the same converted
// values; callers must not mix key or currency definitions between the
// phases or the split is meaningless.
func SplitAtThreshold[T any](rows []T, threshold float64, value func(T) float64) (above, below []T) {
	for _, r := range rows {
		if value(r) >= threshold {
			above = append(above, r)
		} else {
			below = append(below, r)
		}
	}
	return above, below
}
