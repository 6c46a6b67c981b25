package summary

import (
	"math"
	"sort"

	"edahub/domain/table"

	"github.com/montanaflynn/stats"
)

// Summary holds descriptive statistics for one table view. A group is nil
// when the table has no column of that kind.
type Summary struct {
	Rows        int
	Numeric     *NumericSummary
	Categorical *CategoricalSummary
}

// NumericSummary holds one row of describe-style statistics per numeric column
type NumericSummary struct {
	Columns []NumericStats
}

// NumericStats are the count, mean, sample standard deviation, extrema and
// quartiles of the non-missing values of a column. With Count == 0 every
// other field is NaN.
type NumericStats struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// CategoricalSummary holds value counts per categorical column
type CategoricalSummary struct {
	Columns []ValueCounts
}

// ValueCounts maps distinct values to occurrences, most frequent first
type ValueCounts struct {
	Column string
	Counts []ValueCount
}

// ValueCount is a single distinct value and how often it occurs
type ValueCount struct {
	Value string
	Count int
}

// Summarize computes statistics for t. Column kinds are read from t on every call.
func Summarize(t *table.Table) Summary {
	s := Summary{Rows: t.Nrow()}

	if numeric := t.Columns(table.KindNumeric); len(numeric) > 0 {
		s.Numeric = &NumericSummary{Columns: make([]NumericStats, 0, len(numeric))}
		for _, col := range numeric {
			s.Numeric.Columns = append(s.Numeric.Columns, Describe(col, t.Floats(col)))
		}
	}

	if categorical := t.Columns(table.KindCategorical); len(categorical) > 0 {
		s.Categorical = &CategoricalSummary{Columns: make([]ValueCounts, 0, len(categorical))}
		for _, col := range categorical {
			s.Categorical.Columns = append(s.Categorical.Columns, countValues(t, col))
		}
	}

	return s
}

// Describe computes the numeric statistics of data
func Describe(column string, data []float64) NumericStats {
	nan := math.NaN()
	out := NumericStats{
		Column: column,
		Count:  len(data),
		Mean:   nan, Std: nan, Min: nan, Q25: nan, Median: nan, Q75: nan, Max: nan,
	}
	if len(data) == 0 {
		return out
	}

	out.Mean, _ = stats.Mean(data)
	out.Min, _ = stats.Min(data)
	out.Max, _ = stats.Max(data)
	out.Q25 = quantile(data, 0.25)
	out.Median = quantile(data, 0.50)
	out.Q75 = quantile(data, 0.75)

	// sample deviation is undefined for a single value
	if len(data) > 1 {
		out.Std, _ = stats.StandardDeviationSample(data)
	}

	return out
}

// quantile uses linear interpolation between closest ranks
func quantile(data []float64, q float64) float64 {
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func countValues(t *table.Table, col string) ValueCounts {
	counts := make(map[string]int)
	order := t.Distinct(col)
	for i := 0; i < t.Nrow(); i++ {
		if !t.IsNA(i, col) {
			counts[t.Text(i, col)]++
		}
	}

	out := ValueCounts{Column: col, Counts: make([]ValueCount, 0, len(order))}
	for _, v := range order {
		out.Counts = append(out.Counts, ValueCount{Value: v, Count: counts[v]})
	}
	sort.SliceStable(out.Counts, func(i, j int) bool {
		return out.Counts[i].Count > out.Counts[j].Count
	})
	return out
}
