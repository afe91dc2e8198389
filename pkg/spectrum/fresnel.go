package spectrum

import (
	"math"
	"math/cmplx"
)

// RefractiveIndex is a complex index of refraction as a function of wavelength.
// K is zero for dielectrics.
type RefractiveIndex struct {
	Eta Distribution
	K   Distribution
}

// DielectricIndex returns a wavelength-independent real index
func DielectricIndex(eta float64) RefractiveIndex {
	return RefractiveIndex{Eta: ConstantDistribution(eta), K: ConstantDistribution(0)}
}

// ConductorIndex returns a wavelength-independent complex index
func ConductorIndex(eta, k float64) RefractiveIndex {
	return RefractiveIndex{Eta: ConstantDistribution(eta), K: ConstantDistribution(k)}
}

// IndexSample is a refractive index evaluated at the wavelengths of a query
type IndexSample struct {
	Eta Response
	K   Response
}

// Sample evaluates the index for a query
func (ri RefractiveIndex) Sample(q Query) IndexSample {
	return IndexSample{Eta: ri.Eta.Sample(q), K: ri.K.Sample(q)}
}

// IsConductor reports whether any wavelength has a non-zero extinction coefficient
func (s IndexSample) IsConductor() bool {
	return !s.K.IsZero()
}

// ThinfilmEval is a thin interference layer resolved for one shading event.
// Thickness is in nanometres.
type ThinfilmEval struct {
	IOR       IndexSample
	Thickness float64
}

// Fresnel returns the unpolarized reflectance at each wavelength for light
// arriving with cosine cosI relative to the surface normal. A negative cosine
// means the light arrives from the exterior side; a positive cosine on a
// dielectric interface means it arrives from the interior. film may be nil.
func Fresnel(q Query, cosI float64, extIOR, intIOR IndexSample, film *ThinfilmEval) Response {
	if cosI < 0 {
		cosI = -cosI
	} else if !intIOR.IsConductor() {
		extIOR, intIOR = intIOR, extIOR
	}
	cosI = math.Min(cosI, 1.0)

	var r Response
	for i := range r.Values {
		n1 := complex(extIOR.Eta.Values[i], 0)
		n3 := complex(intIOR.Eta.Values[i], intIOR.K.Values[i])
		if film != nil && film.Thickness > 0 {
			n2 := complex(film.IOR.Eta.Values[i], film.IOR.K.Values[i])
			r.Values[i] = thinfilmReflectance(n1, n2, n3, cosI, film.Thickness, q.Wavelengths[i])
		} else {
			r.Values[i] = interfaceReflectance(n1, n3, cosI)
		}
	}
	return r
}

// Conductor is Fresnel for a conductor seen from the exterior, regardless of the sign of cosI
func Conductor(q Query, cosI float64, extIOR, intIOR IndexSample, film *ThinfilmEval) Response {
	return Fresnel(q, -math.Abs(cosI), extIOR, intIOR, film)
}

func transmittedCosine(n1, n2 complex128, cos1 float64) complex128 {
	sin1Sq := complex(1.0-cos1*cos1, 0)
	ratio := n1 / n2
	return cmplx.Sqrt(1.0 - ratio*ratio*sin1Sq)
}

func amplitudes(n1, n2 complex128, c1, c2 complex128) (rs, rp complex128) {
	rs = (n1*c1 - n2*c2) / (n1*c1 + n2*c2)
	rp = (n2*c1 - n1*c2) / (n2*c1 + n1*c2)
	return rs, rp
}

func interfaceReflectance(n1, n3 complex128, cos1 float64) float64 {
	c1 := complex(cos1, 0)
	c3 := transmittedCosine(n1, n3, cos1)
	rs, rp := amplitudes(n1, n3, c1, c3)
	return clamp01(0.5 * (sqAbs(rs) + sqAbs(rp)))
}

// thinfilmReflectance sums the multiple reflections inside a single layer (Airy summation)
func thinfilmReflectance(n1, n2, n3 complex128, cos1, thickness, wavelength float64) float64 {
	c1 := complex(cos1, 0)
	c2 := transmittedCosine(n1, n2, cos1)
	c3 := transmittedCosine(n1, n3, cos1)

	r12s, r12p := amplitudes(n1, n2, c1, c2)
	r23s, r23p := amplitudes(n2, n3, c2, c3)

	delta := 4.0 * math.Pi * n2 * c2 * complex(thickness/wavelength, 0)
	phase := cmplx.Exp(1i * delta)

	rs := (r12s + r23s*phase) / (1 + r12s*r23s*phase)
	rp := (r12p + r23p*phase) / (1 + r12p*r23p*phase)
	return clamp01(0.5 * (sqAbs(rs) + sqAbs(rp)))
}

func sqAbs(z complex128) float64 {
	return real(z)*real(z) + imag(z)*imag(z)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
