package distribution

import "fmt"

// arity is the exact parameter count of each parametric family.
var arity = map[Kind]int{
	Immediate:     0,
	Exponential:   1,
	Deterministic: 1,
	Normal:        2,
	LogNormal:     2,
	Gamma:         2,
	Beta:          2,
	Uniform:       2,
}

// Arity returns the number of parameters New expects for k, and false when
// k is not built from a fixed parameter vector.
func Arity(k Kind) (int, bool) {
	n, ok := arity[k]
	return n, ok
}

// New builds the distribution of kind k from params. For empirical kinds the
// parameters are the observations to fit. Undefined yields a nil
// Distribution and no error; the caller decides how to treat it.
func New(k Kind, params ...float64) (Distribution, error) {
	if want, ok := arity[k]; ok && len(params) != want {
		return nil, &ArityError{Kind: k, Want: want, Got: len(params)}
	}
	var (
		d   Distribution
		err error
	)
	switch k {
	case Undefined:
		return nil, nil
	case Immediate:
		return NewImmediate(), nil
	case Exponential:
		d, err = nonNil(NewExponential(params[0]))
	case Deterministic:
		d, err = nonNil(NewDeterministic(params[0]))
	case Normal:
		d, err = nonNil(NewNormal(params[0], params[1]))
	case LogNormal:
		d, err = nonNil(NewLogNormal(params[0], params[1]))
	case Gamma:
		d, err = nonNil(NewGamma(params[0], params[1]))
	case Beta:
		d, err = nonNil(NewBeta(params[0], params[1]))
	case Uniform:
		d, err = nonNil(NewUniform(params[0], params[1]))
	case Histogram:
		d, err = nonNil(NewHistogram(params))
	case GaussianKernel:
		d, err = nonNil(NewKernel(params))
	case LogSpline:
		d, err = nonNil(NewLogSpline(params))
	case Weibull, StudentT, BernsteinExponential, Approximate:
		return nil, fmt.Errorf("%w: %s cannot be built from parameters", ErrUnsupportedType, k)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, k)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// nonNil keeps a failed constructor from producing a typed nil Distribution.
func nonNil[D Distribution](d D, err error) (Distribution, error) {
	if err != nil {
		return nil, err
	}
	return d, nil
}
