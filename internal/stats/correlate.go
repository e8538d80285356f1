package stats

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// IntensityColumn names the intensity column in a correlation Matrix.
const IntensityColumn = "intensity"

// Coefficient is a Pearson correlation coefficient. It is undefined (Valid
// false) when either column has zero variance or there are fewer than two
// observations. Undefined coefficients encode as JSON null.
type Coefficient struct {
	Value float64
	Valid bool
}

// MarshalJSON renders an undefined coefficient as null.
func (c Coefficient) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(c.Value, 'f', 4, 64)), nil
}

// UnmarshalJSON accepts a number or null.
func (c *Coefficient) UnmarshalJSON(data []byte) error {
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*c = Coefficient{}
		return nil
	}
	*c = Coefficient{Value: *v, Valid: true}
	return nil
}

// String formats the coefficient with two decimals, or "n/a".
func (c Coefficient) String() string {
	if !c.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(c.Value, 'f', 2, 64)
}

// Matrix holds pairwise coefficients. Values[i][j] correlates Columns[i]
// with Columns[j].
type Matrix struct {
	Columns []string        `json:"columns"`
	Values  [][]Coefficient `json:"values"`
}

// At returns the coefficient for the named pair.
func (m Matrix) At(a, b string) (Coefficient, bool) {
	i, j := -1, -1
	for k, col := range m.Columns {
		if col == a {
			i = k
		}
		if col == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return Coefficient{}, false
	}
	return m.Values[i][j], true
}

// Correlate computes Pearson coefficients for every pair of the columns
// names followed by intensity. A missing feeling counts as 0.
func Correlate(entries []types.Entry, names []string) Matrix {
	columns := append(append([]string(nil), names...), IntensityColumn)
	series := make([][]float64, len(columns))
	for i, col := range columns {
		s := make([]float64, len(entries))
		for k, e := range entries {
			if col == IntensityColumn && i == len(columns)-1 {
				s[k] = float64(e.Intensity)
			} else {
				s[k] = float64(e.Feelings.Get(col))
			}
		}
		series[i] = s
	}

	values := make([][]Coefficient, len(columns))
	for i := range columns {
		values[i] = make([]Coefficient, len(columns))
		for j := range columns {
			values[i][j] = pearson(series[i], series[j])
		}
	}
	return Matrix{Columns: columns, Values: values}
}

func pearson(x, y []float64) Coefficient {
	n := len(x)
	if n < 2 || len(y) != n {
		return Coefficient{}
	}
	var meanX, meanY float64
	for i := range x {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var cov, varX, varY float64
	for i := range x {
		dx, dy := x[i]-meanX, y[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return Coefficient{}
	}
	r := cov / math.Sqrt(varX*varY)
	// Rounding can push |r| a hair past 1.
	r = math.Max(-1, math.Min(1, r))
	return Coefficient{Value: r, Valid: true}
}
