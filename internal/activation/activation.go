// Package activation provides the activation functions used by dense layers.
//
// Activations form a closed set (Kind). Each kind carries its forward
// function, its derivative, and which value the derivative must be evaluated
// on: the pre-activation z or the already activated output y. Sigmoid, Tanh
// and Softmax differentiate the output; ReLU and LeakyReLU differentiate z.
// Gradient picks the correct input so training code never has to.
package activation

import (
	"fmt"
	"math"
	"strings"

	"github.com/born-ml/densenet/internal/matrix"
)

// Kind identifies an activation function.
type Kind uint8

// Supported activations.
const (
	Sigmoid Kind = iota
	ReLU
	Tanh
	LeakyReLU
	Softmax
)

// LeakySlope is the negative-side slope of LeakyReLU.
const LeakySlope = 0.01

// Input names the value a derivative is evaluated on.
type Input uint8

const (
	// PreActivation means the derivative takes z, the affine output.
	PreActivation Input = iota
	// PostActivation means the derivative takes y = f(z).
	PostActivation
)

// String returns the lowercase name used in configs and model files.
func (k Kind) String() string {
	switch k {
	case Sigmoid:
		return "sigmoid"
	case ReLU:
		return "relu"
	case Tanh:
		return "tanh"
	case LeakyReLU:
		return "leaky_relu"
	case Softmax:
		return "softmax"
	default:
		return fmt.Sprintf("activation(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	return k <= Softmax
}

// ParseKind parses a name produced by String. Matching is case-insensitive
// and accepts "leaky-relu" as well as "leaky_relu".
func ParseKind(s string) (Kind, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "sigmoid":
		return Sigmoid, nil
	case "relu":
		return ReLU, nil
	case "tanh":
		return Tanh, nil
	case "leaky_relu", "leakyrelu":
		return LeakyReLU, nil
	case "softmax":
		return Softmax, nil
	default:
		return 0, fmt.Errorf("unknown activation %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown activation %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// DerivativeInput reports which value Derivative expects.
func (k Kind) DerivativeInput() Input {
	switch k {
	case ReLU, LeakyReLU:
		return PreActivation
	default:
		return PostActivation
	}
}

// Forward evaluates the scalar activation at x.
//
// Softmax is not elementwise; its scalar form is the logistic function, which
// is what a single-output softmax layer degenerates to. Use Apply for the
// column-normalized form.
func (k Kind) Forward(x float64) float64 {
	switch k {
	case Sigmoid, Softmax:
		return 1 / (1 + math.Exp(-x))
	case ReLU:
		return math.Max(0, x)
	case Tanh:
		return math.Tanh(x)
	case LeakyReLU:
		if x > 0 {
			return x
		}
		return LeakySlope * x
	default:
		panic(fmt.Sprintf("activation: unknown kind %d", uint8(k)))
	}
}

// Derivative evaluates f' on v, where v is z or y as reported by
// DerivativeInput.
//
//	sigmoid:    y(1-y)           (v = y)
//	relu:       1 if z > 0 else 0 (v = z)
//	tanh:       1-y²             (v = y)
//	leaky_relu: 1 if z > 0 else LeakySlope (v = z)
//	softmax:    y(1-y), the Jacobian diagonal (v = y)
func (k Kind) Derivative(v float64) float64 {
	switch k {
	case Sigmoid, Softmax:
		return v * (1 - v)
	case ReLU:
		if v > 0 {
			return 1
		}
		return 0
	case Tanh:
		return 1 - v*v
	case LeakyReLU:
		if v > 0 {
			return 1
		}
		return LeakySlope
	default:
		panic(fmt.Sprintf("activation: unknown kind %d", uint8(k)))
	}
}

// Apply maps the activation over z. Softmax normalizes each column
// independently after subtracting the column maximum.
func (k Kind) Apply(z *matrix.Matrix) *matrix.Matrix {
	if k == Softmax {
		return softmaxColumns(z)
	}
	return z.Map(k.Forward)
}

// Gradient returns f' as a matrix shaped like z, evaluated on z or on the
// activated output a depending on DerivativeInput.
func (k Kind) Gradient(z, a *matrix.Matrix) *matrix.Matrix {
	if k.DerivativeInput() == PreActivation {
		return z.Map(k.Derivative)
	}
	return a.Map(k.Derivative)
}

func softmaxColumns(z *matrix.Matrix) *matrix.Matrix {
	out := z.Clone()
	for j := 0; j < z.Cols(); j++ {
		maxVal := math.Inf(-1)
		for i := 0; i < z.Rows(); i++ {
			maxVal = math.Max(maxVal, z.At(i, j))
		}
		sum := 0.0
		for i := 0; i < z.Rows(); i++ {
			e := math.Exp(z.At(i, j) - maxVal)
			out.Set(i, j, e)
			sum += e
		}
		for i := 0; i < z.Rows(); i++ {
			out.Set(i, j, out.At(i, j)/sum)
		}
	}
	return out
}
