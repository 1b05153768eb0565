package camera

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Pinhole is an undistorted pinhole projector.
//
// In the camera frame the optical axis is +X, image right is -Y and image up
// is +Z, so an unrotated camera looks down the world X axis with Z up.
type Pinhole struct{}

// PixelRay implements Projector.
func (Pinhole) PixelRay(p Params, pixel r2.Point) r3.Vector {
	u := math.Tan(p.HFOV/2) * (2*pixel.X/float64(p.Width) - 1)
	v := math.Tan(p.VFOV/2) * (2*pixel.Y/float64(p.Height) - 1)
	local := mat.NewVecDense(3, []float64{1, -u, v})

	var world mat.VecDense
	world.MulVec(rotationDense(p.Rotation), local)
	return r3.Vector{X: world.AtVec(0), Y: world.AtVec(1), Z: world.AtVec(2)}.Normalize()
}

func rotationDense(r [3][3]float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		r[0][0], r[0][1], r[0][2],
		r[1][0], r[1][1], r[1][2],
		r[2][0], r[2][1], r[2][2],
	})
}

// RotationFromVector converts an axis-angle rotation vector (radians) into a
// rotation matrix using Rodrigues' formula.
func RotationFromVector(rv r3.Vector) [3][3]float64 {
	theta := rv.Norm()
	out := [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	if theta == 0 {
		return out
	}
	k := rv.Mul(1 / theta)
	K := mat.NewDense(3, 3, []float64{
		0, -k.Z, k.Y,
		k.Z, 0, -k.X,
		-k.Y, k.X, 0,
	})

	// R = I + sin(θ)K + (1-cos(θ))K²
	var K2, R mat.Dense
	K2.Mul(K, K)
	R.Scale(math.Sin(theta), K)
	K2.Scale(1-math.Cos(theta), &K2)
	R.Add(&R, &K2)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] += R.At(i, j)
		}
	}
	return out
}
