package geometry

import (
	"math"
	"testing"
)

// floatEquals is a helper for testing scalar float values with epsilon.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

func TestNewVectorPolar(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
		theta  float64
		want   Vector2D
	}{
		{"Zero radius", 0, 0, Vector2D{0, 0}},
		{"Zero angle (X-axis)", 10, 0, Vector2D{10, 0}},
		{"90 degrees (Y-axis)", 10, math.Pi / 2, Vector2D{0, 10}},
		{"180 degrees (Negative X)", 10, math.Pi, Vector2D{-10, 0}},
		{"45 degrees", math.Sqrt(2), math.Pi / 4, Vector2D{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewVectorPolar(tt.radius, tt.theta)
			if !got.Eq(tt.want) {
				t.Errorf("NewVectorPolar(%v, %v) = %v; want %v", tt.radius, tt.theta, got, tt.want)
			}
		})
	}
}

func TestVector_String(t *testing.T) {
	v := Vector2D{1.234, 5.678}
	want := "(1.23, 5.68)"
	if got := v.String(); got != want {
		t.Errorf("Vector2D.String() = %q; want %q", got, want)
	}
}

func TestVector_Arithmetic(t *testing.T) {
	v1 := Vector2D{1, 2}
	v2 := Vector2D{3, 4}

	t.Run("Add", func(t *testing.T) {
		want := Vector2D{4, 6}
		if got := v1.Add(v2); !got.Eq(want) {
			t.Errorf("%v.Add(%v) = %v; want %v", v1, v2, got, want)
		}
	})

	t.Run("Sub", func(t *testing.T) {
		want := Vector2D{-2, -2}
		if got := v1.Sub(v2); !got.Eq(want) {
			t.Errorf("%v.Sub(%v) = %v; want %v", v1, v2, got, want)
		}
	})

	t.Run("Mul", func(t *testing.T) {
		want := Vector2D{2, 4}
		if got := v1.Mul(2); !got.Eq(want) {
			t.Errorf("%v.Mul(2) = %v; want %v", v1, got, want)
		}
	})

	t.Run("Neg", func(t *testing.T) {
		want := Vector2D{-1, -2}
		if got := v1.Neg(); !got.Eq(want) {
			t.Errorf("%v.Neg() = %v; want %v", v1, got, want)
		}
	})

	t.Run("DivOrZero", func(t *testing.T) {
		want := Vector2D{0.5, 1}
		if got := v1.DivOrZero(2); !got.Eq(want) {
			t.Errorf("%v.DivOrZero(2) = %v; want %v", v1, got, want)
		}
	})

	t.Run("DivByZero", func(t *testing.T) {
		if got := v1.DivOrZero(0); got != Zero {
			t.Errorf("%v.DivOrZero(0) = %v; want zero vector", v1, got)
		}
	})
}

func TestVector_Products(t *testing.T) {
	v1 := Vector2D{1, 0}
	v2 := Vector2D{0, 1}
	v3 := Vector2D{1, 1}

	t.Run("Dot", func(t *testing.T) {
		if got := v1.Dot(v2); got != 0 {
			t.Errorf("Dot orthogonal = %v; want 0", got)
		}
		if got := v1.Dot(Vector2D{2, 0}); got != 2 {
			t.Errorf("Dot parallel = %v; want 2", got)
		}
	})

	t.Run("Cross", func(t *testing.T) {
		if got := v1.Cross(v2); got != 1 {
			t.Errorf("Cross X,Y = %v; want 1", got)
		}
		if got := v3.Cross(v3); got != 0 {
			t.Errorf("Cross self = %v; want 0", got)
		}
	})

	t.Run("Perp", func(t *testing.T) {
		tests := []struct {
			v, want Vector2D
		}{
			{Vector2D{1, 0}, Vector2D{0, 1}},
			{Vector2D{0, 1}, Vector2D{-1, 0}},
			{Vector2D{3, -2}, Vector2D{2, 3}},
		}
		for _, tt := range tests {
			got := tt.v.Perp()
			if !got.Eq(tt.want) {
				t.Errorf("%v.Perp() = %v; want %v", tt.v, got, tt.want)
			}
			if got.Dot(tt.v) != 0 {
				t.Errorf("%v.Perp() is not orthogonal to its input", tt.v)
			}
		}
	})
}

func TestVector_Magnitude(t *testing.T) {
	v := Vector2D{3, 4} // 3-4-5 triangle

	t.Run("Len", func(t *testing.T) {
		if got := v.Len(); got != 5 {
			t.Errorf("Len = %v; want 5", got)
		}
	})

	t.Run("LenSqr", func(t *testing.T) {
		if got := v.LenSqr(); got != 25 {
			t.Errorf("LenSqr = %v; want 25", got)
		}
	})

	t.Run("NormalizeOrZero", func(t *testing.T) {
		got := v.NormalizeOrZero()
		want := Vector2D{0.6, 0.8}
		if !got.Eq(want) {
			t.Errorf("NormalizeOrZero = %v; want %v", got, want)
		}
		if !floatEquals(got.Len(), 1.0) {
			t.Errorf("NormalizeOrZero length = %v; want 1", got.Len())
		}
	})

	t.Run("NormalizeZero", func(t *testing.T) {
		if got := Zero.NormalizeOrZero(); got != Zero {
			t.Errorf("NormalizeOrZero(0,0) = %v; want (0,0)", got)
		}
	})

	t.Run("NormalizeTiny", func(t *testing.T) {
		tiny := Vector2D{1e-12, 0}
		got := tiny.NormalizeOrZero()
		if !got.Eq(Vector2D{1, 0}) {
			t.Errorf("NormalizeOrZero(%g,0) = %v; want (1,0)", tiny.X, got)
		}
	})

	t.Run("NormalizeInf", func(t *testing.T) {
		inf := Vector2D{math.Inf(1), 0}
		if got := inf.NormalizeOrZero(); got != Zero {
			t.Errorf("NormalizeOrZero(+Inf,0) = %v; want (0,0)", got)
		}
	})
}

func TestVector_IsFinite(t *testing.T) {
	tests := []struct {
		v    Vector2D
		want bool
	}{
		{Vector2D{1, 2}, true},
		{Vector2D{math.NaN(), 0}, false},
		{Vector2D{0, math.Inf(-1)}, false},
	}
	for _, tt := range tests {
		if got := tt.v.IsFinite(); got != tt.want {
			t.Errorf("%v.IsFinite() = %v; want %v", tt.v, got, tt.want)
		}
	}
}

func TestVector_Distance(t *testing.T) {
	v1 := Vector2D{1, 1}
	v2 := Vector2D{4, 5} // dx=3, dy=4, dist=5

	if got := v1.DistanceTo(v2); got != 5 {
		t.Errorf("DistanceTo = %v; want 5", got)
	}

	if got := v1.DistanceSquaredTo(v2); got != 25 {
		t.Errorf("DistanceSquaredTo = %v; want 25", got)
	}
}

func TestVector_Angle(t *testing.T) {
	tests := []struct {
		v    Vector2D
		want float64
	}{
		{Vector2D{1, 0}, 0},
		{Vector2D{0, 1}, math.Pi / 2},
		{Vector2D{-1, 0}, math.Pi}, // math.Atan2 returns Pi for (-1, 0)
		{Vector2D{0, -1}, -math.Pi / 2},
	}
	for _, tt := range tests {
		if got := tt.v.Angle(); !floatEquals(got, tt.want) {
			t.Errorf("%v.Angle() = %v; want %v", tt.v, got, tt.want)
		}
	}
}

func TestVector_Rotate(t *testing.T) {
	v := Vector2D{1, 0}
	got := v.Rotate(math.Pi / 2)
	want := Vector2D{0, 1}
	if !got.Eq(want) {
		t.Errorf("Rotate(90) = %v; want %v", got, want)
	}
	if !got.Eq(v.Perp()) {
		t.Errorf("Rotate(90) = %v; want it to match Perp() %v", got, v.Perp())
	}
}

func TestVector_Eq(t *testing.T) {
	v := Vector2D{1, 2}

	if !v.Eq(Vector2D{1, 2}) {
		t.Error("Eq exact match failed")
	}

	vClose := Vector2D{1 + Epsilon/2, 2 - Epsilon/2}
	if !v.Eq(vClose) {
		t.Error("Eq epsilon match failed")
	}

	vDiff := Vector2D{1.1, 2}
	if v.Eq(vDiff) {
		t.Error("Eq mismatch failed")
	}
}
