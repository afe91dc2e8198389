package spectrum

import (
	"fmt"
	"math"
)

// Response is a radiometric value sampled at the wavelengths of a Query
type Response struct {
	Values [WavelengthCount]float64
}

// Constant returns a response with every wavelength set to v
func Constant(v float64) Response {
	var r Response
	for i := range r.Values {
		r.Values[i] = v
	}
	return r
}

// Zero returns the zero response
func Zero() Response {
	return Response{}
}

// Add returns r + o
func (r Response) Add(o Response) Response {
	for i := range r.Values {
		r.Values[i] += o.Values[i]
	}
	return r
}

// Sub returns r - o
func (r Response) Sub(o Response) Response {
	for i := range r.Values {
		r.Values[i] -= o.Values[i]
	}
	return r
}

// Mul returns the per-wavelength product
func (r Response) Mul(o Response) Response {
	for i := range r.Values {
		r.Values[i] *= o.Values[i]
	}
	return r
}

// Div returns the per-wavelength quotient. Division by a zero component yields zero
// for that wavelength rather than Inf.
func (r Response) Div(o Response) Response {
	for i := range r.Values {
		if o.Values[i] == 0 {
			r.Values[i] = 0
			continue
		}
		r.Values[i] /= o.Values[i]
	}
	return r
}

// Scale multiplies every wavelength by s
func (r Response) Scale(s float64) Response {
	for i := range r.Values {
		r.Values[i] *= s
	}
	return r
}

// OneMinus returns 1 - r
func (r Response) OneMinus() Response {
	for i := range r.Values {
		r.Values[i] = 1.0 - r.Values[i]
	}
	return r
}

// Monochromatic reduces the response to a single scalar (the mean over wavelengths)
func (r Response) Monochromatic() float64 {
	sum := 0.0
	for _, v := range r.Values {
		sum += v
	}
	return sum / WavelengthCount
}

// Max returns the largest component
func (r Response) Max() float64 {
	m := r.Values[0]
	for _, v := range r.Values[1:] {
		m = math.Max(m, v)
	}
	return m
}

// IsZero reports whether every component is exactly zero
func (r Response) IsZero() bool {
	for _, v := range r.Values {
		if v != 0 {
			return false
		}
	}
	return true
}

// Valid reports whether every component is finite and non-negative
func (r Response) Valid() bool {
	for _, v := range r.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}

func (r Response) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", r.Values[0], r.Values[1], r.Values[2], r.Values[3])
}
