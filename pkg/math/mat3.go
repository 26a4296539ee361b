// Package math provides the small matrix type used for 2D projection.
package math

// Mat3 is a 3x3 matrix in column-major order (OpenGL compatible).
// Layout: [m0 m3 m6]
//
//	[m1 m4 m7]
//	[m2 m5 m8]
//
// Only affine matrices (last row 0 0 1) are produced here.
type Mat3 [9]float32

// Identity returns an identity matrix.
func Identity() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Ortho returns a 2D orthographic projection mapping the rectangle
// left..right, bottom..top onto clip space -1..1.
func Ortho(left, right, bottom, top float32) Mat3 {
	rl := 1.0 / (right - left)
	tb := 1.0 / (top - bottom)

	return Mat3{
		2 * rl, 0, 0,
		0, 2 * tb, 0,
		-(right + left) * rl, -(top + bottom) * tb, 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y float32) Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		x, y, 1,
	}
}

// Scale returns a scale matrix.
func Scale(x, y float32) Mat3 {
	return Mat3{
		x, 0, 0,
		0, y, 0,
		0, 0, 1,
	}
}

// Mul multiplies this matrix by another (m * other).
func (m Mat3) Mul(other Mat3) Mat3 {
	var result Mat3
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			result[col*3+row] =
				m[0*3+row]*other[col*3+0] +
					m[1*3+row]*other[col*3+1] +
					m[2*3+row]*other[col*3+2]
		}
	}
	return result
}

// TransformPoint transforms a point (w=1).
func (m Mat3) TransformPoint(x, y float32) (float32, float32) {
	return m[0]*x + m[3]*y + m[6], m[1]*x + m[4]*y + m[7]
}

// Inverse returns the inverse of an affine matrix, or the identity when
// it is singular.
func (m Mat3) Inverse() Mat3 {
	det := m[0]*m[4] - m[3]*m[1]
	if det == 0 {
		return Identity()
	}
	inv := 1 / det
	a := m[4] * inv
	b := -m[1] * inv
	c := -m[3] * inv
	d := m[0] * inv
	return Mat3{
		a, b, 0,
		c, d, 0,
		-(a*m[6] + c*m[7]), -(b*m[6] + d*m[7]), 1,
	}
}

// Ptr returns a pointer to the first element (for OpenGL uniform calls).
func (m *Mat3) Ptr() *float32 {
	return &m[0]
}
