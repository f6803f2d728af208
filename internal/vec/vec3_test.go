package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3Float_Arithmetic(t *testing.T) {
	a := Vec3Float{X: 1, Y: -2, Z: 0.5}
	b := Vec3Float{X: 0.5, Y: 1, Z: -1}

	assert.Equal(t, Vec3Float{X: 1.5, Y: -1, Z: -0.5}, a.Add(b))
	assert.Equal(t, Vec3Float{X: 0.5, Y: -3, Z: 1.5}, a.Sub(b))
	assert.Equal(t, Vec3Float{X: 2, Y: -4, Z: 1}, a.Mul(2))
	assert.Equal(t, Vec3Float{X: 1, Y: 2, Z: 0.5}, a.Abs())
}

func TestVec3Float_AxisAccess(t *testing.T) {
	v := Vec3Float{X: 1, Y: 2, Z: 3}

	assert.Equal(t, 1.0, v.Get(AxisX))
	assert.Equal(t, 2.0, v.Get(AxisY))
	assert.Equal(t, 3.0, v.Get(AxisZ))

	w := v.With(AxisZ, 9)
	assert.Equal(t, 9.0, w.Z, "With должен менять только выбранную ось")
	assert.Equal(t, 3.0, v.Z, "исходный вектор не должен меняться")
	assert.Equal(t, "x", AxisX.String())
	assert.Equal(t, "z", AxisZ.String())
}
