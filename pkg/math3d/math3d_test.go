package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func vecNear(a, b Vec3, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

func TestCross(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vec3
		expected Vec3
	}{
		{"x cross y", V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, 1)},
		{"y cross z", V3(0, 1, 0), V3(0, 0, 1), V3(1, 0, 0)},
		{"z cross x", V3(0, 0, 1), V3(1, 0, 0), V3(0, 1, 0)},
		{"parallel", V3(2, 0, 0), V3(5, 0, 0), Zero3()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.a.Cross(tc.b)
			if !vecNear(got, tc.expected, eps) {
				t.Errorf("Cross(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.expected)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	v := V3(3, 4, 0).Normalize()
	if math.Abs(v.Len()-1) > eps {
		t.Errorf("normalized length = %v, want 1", v.Len())
	}
	if !vecNear(Zero3().Normalize(), Zero3(), eps) {
		t.Error("normalizing the zero vector should return zero")
	}
}

func TestRotateAroundAxis(t *testing.T) {
	// Quarter turn of +x around +z lands on +y.
	m := Rotate(V3(0, 0, 1), math.Pi/2)
	got := m.MulVec3(V3(1, 0, 0))
	if !vecNear(got, V3(0, 1, 0), 1e-12) {
		t.Errorf("rotate x around z = %v, want (0,1,0)", got)
	}
}

func TestMat4MulIdentity(t *testing.T) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.7))
	if got := m.Mul(Identity()); got != m {
		t.Errorf("m * I = %v, want %v", got, m)
	}
	if got := Identity().Mul(m); got != m {
		t.Errorf("I * m = %v, want %v", got, m)
	}
}

func TestLookAtMapsEyeToOrigin(t *testing.T) {
	eye := V3(3, -2, 5)
	view := LookAt(eye, Zero3(), V3(0, 1, 0))
	if got := view.MulVec3(eye); !vecNear(got, Zero3(), 1e-9) {
		t.Errorf("view * eye = %v, want origin", got)
	}
}

func TestMat3Orthonormal(t *testing.T) {
	r := RotationAxis3(V3(1, 1, 0), 1.234)
	if !r.IsOrthonormal(1e-9) {
		t.Error("axis rotation should be orthonormal")
	}

	sheared := Mat3{1, 0.5, 0, 0, 1, 0, 0, 0, 1}
	if sheared.IsOrthonormal(1e-9) {
		t.Error("sheared matrix should not be orthonormal")
	}
}

func TestMat3TransposeInverts(t *testing.T) {
	r := RotationAxis3(V3(0.3, -1, 2), 0.8)
	p := V3(1, 2, 3)
	back := r.Transpose().MulVec3(r.MulVec3(p))
	if !vecNear(back, p, 1e-12) {
		t.Errorf("Rᵀ·R·p = %v, want %v", back, p)
	}
}

func BenchmarkMat4Mul(b *testing.B) {
	m1 := RotateX(0.5)
	m2 := Translate(V3(1, 2, 3))
	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulVec3(b *testing.B) {
	m := RotateY(0.5).Mul(Translate(V3(1, 2, 3)))
	v := V3(4, 5, 6)
	for b.Loop() {
		_ = m.MulVec3(v)
	}
}
