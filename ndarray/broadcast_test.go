package ndarray_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/tvm-engine/ndarray"
)

func TestBroadcastShapes_ScalarAndVector(t *testing.T) {
	shape, err := ndarray.BroadcastShapes([]int{}, []int{3})
	require.NoError(t, err)
	assert.Equal(t, []int{3}, shape)
}

func TestBroadcastShapes_TrailingAlignment(t *testing.T) {
	shape, err := ndarray.BroadcastShapes([]int{2, 1}, []int{3}, []int{})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, shape)
}

func TestBroadcastShapes_Mismatch(t *testing.T) {
	_, err := ndarray.BroadcastShapes([]int{2}, []int{3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ndarray.ErrShapeMismatch)

	var shapeErr *ndarray.ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, [][]int{{2}, {3}}, shapeErr.Shapes)
}

func TestBroadcastTo_RepeatsRows(t *testing.T) {
	// GIVEN: a row vector [1 2 3]
	// WHEN: broadcasting to 2x3
	// THEN: the row is repeated
	row := ndarray.Vector(1, 2, 3)

	out, err := row.BroadcastTo([]int{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, out.Shape())
	assert.Equal(t, []int{1, 2, 3, 1, 2, 3}, out.Flat())
}

func TestBroadcastTo_RepeatsColumns(t *testing.T) {
	col, err := ndarray.New([]int{2, 1}, []int{10, 20})
	require.NoError(t, err)

	out, err := col.BroadcastTo([]int{2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 10, 10, 20, 20, 20}, out.Flat())
}

func TestBroadcast_MixedInputs(t *testing.T) {
	arrays, shape, err := ndarray.Broadcast(
		ndarray.Scalar(5.0),
		ndarray.Vector(1.0, 2.0, 3.0),
	)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, shape)
	assert.Equal(t, []float64{5, 5, 5}, arrays[0].Flat())
	assert.Equal(t, []float64{1, 2, 3}, arrays[1].Flat())
}

func TestNew_SizeMismatch(t *testing.T) {
	_, err := ndarray.New([]int{2, 2}, []int{1, 2, 3})
	assert.ErrorIs(t, err, ndarray.ErrShapeMismatch)
}

func TestScalar_ItemAndPromotion(t *testing.T) {
	s := ndarray.Scalar(4.5)
	assert.True(t, s.IsScalar())
	assert.Equal(t, 0, s.Ndim())
	assert.Equal(t, 4.5, s.Item())

	v := s.AtLeast1D()
	assert.Equal(t, []int{1}, v.Shape())
}

func TestMap_PreservesShape(t *testing.T) {
	a, err := ndarray.New([]int{2, 2}, []int{1, 2, 3, 4})
	require.NoError(t, err)

	doubled := ndarray.Map(a, func(v int) float64 { return float64(v) * 2 })
	assert.Equal(t, []int{2, 2}, doubled.Shape())
	assert.Equal(t, []float64{2, 4, 6, 8}, doubled.Flat())
}
