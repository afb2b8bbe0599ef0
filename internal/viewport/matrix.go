package viewport

// Matrix2D is an affine transform stored as [a, b, c, d, e, f], mapping
// (x, y) to (a*x + c*y + e, b*x + d*y + f). This is the order canvas
// setTransform and SVG matrix() take.
type Matrix2D [6]float64

func Translate(tx, ty float64) Matrix2D {
	return Matrix2D{1, 0, 0, 1, tx, ty}
}

func Scale(sx, sy float64) Matrix2D {
	return Matrix2D{sx, 0, 0, sy, 0, 0}
}

// Multiply composes two transforms; other is applied first.
func (m Matrix2D) Multiply(other Matrix2D) Matrix2D {
	return Matrix2D{
		m[0]*other[0] + m[2]*other[1],
		m[1]*other[0] + m[3]*other[1],
		m[0]*other[2] + m[2]*other[3],
		m[1]*other[2] + m[3]*other[3],
		m[0]*other[4] + m[2]*other[5] + m[4],
		m[1]*other[4] + m[3]*other[5] + m[5],
	}
}

// ToSlice returns the six coefficients for JSON.
func (m Matrix2D) ToSlice() []float64 {
	return m[:]
}
