package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepTableBoundaries(t *testing.T) {
	cases := []struct {
		value float64
		want  float64
	}{
		{0, 35}, {49, 35}, {50, 45}, {199, 55}, {200, 65},
		{999, 75}, {1000, 85}, {1999, 85}, {2000, 95}, {1e9, 95},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, depthTable.eval(tc.value), "posts=%v", tc.value)
	}
}

func TestStepTableMonotone(t *testing.T) {
	tables := []stepTable{depthTable, chainTable, contentTable}
	for _, tbl := range tables {
		prev := -1.0
		for v := 0.0; v <= 10000; v += 10 {
			s := tbl.eval(v)
			assert.GreaterOrEqual(t, s, prev)
			prev = s
		}
	}
}

func TestInformationTableInverse(t *testing.T) {
	assert.Equal(t, 95.0, informationTable.eval(0))
	assert.Equal(t, 95.0, informationTable.eval(1))
	assert.Equal(t, 85.0, informationTable.eval(3))
	assert.Equal(t, 55.0, informationTable.eval(30))
	assert.Equal(t, 20.0, informationTable.eval(91))
	assert.Equal(t, 20.0, informationTable.eval(400))

	// Fresher never scores lower.
	prev := 1000.0
	for d := 0.0; d <= 400; d++ {
		s := informationTable.eval(d)
		assert.LessOrEqual(t, s, prev)
		prev = s
	}
}

func TestEvalOptMissing(t *testing.T) {
	assert.Equal(t, float64(neutralScore), depthTable.evalOpt(nil))
	assert.Equal(t, float64(neutralScore), chainTable.evalOpt(nil))
	assert.Equal(t, 35.0, depthTable.evalOpt(iptr(10)))
}

func TestAccuracyScore(t *testing.T) {
	assert.Equal(t, float64(neutralScore), accuracyScore(nil))
	assert.Equal(t, 40.0, accuracyScore(iptr(1)))
	assert.Equal(t, 60.0, accuracyScore(iptr(2)))
	assert.Equal(t, 75.0, accuracyScore(iptr(3)))
	assert.Equal(t, 90.0, accuracyScore(iptr(4)))
}
