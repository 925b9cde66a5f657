// Package gate implements two-input perceptron logic gates.
package gate

// perceptron returns 1 when w1*x1 + w2*x2 + b is strictly positive.
func perceptron(x1, x2, w1, w2, b float64) float64 {
	if x1*w1+x2*w2+b <= 0 {
		return 0
	}
	return 1
}

func And(x1, x2 float64) float64 {
	return perceptron(x1, x2, 0.5, 0.5, -0.7)
}

// Nand is And with the sign of every weight and the bias flipped.
func Nand(x1, x2 float64) float64 {
	return perceptron(x1, x2, -0.5, -0.5, 0.7)
}

func Or(x1, x2 float64) float64 {
	return perceptron(x1, x2, 0.5, 0.5, -0.2)
}

// Xor stacks two layers: And(Nand(x1, x2), Or(x1, x2)).
func Xor(x1, x2 float64) float64 {
	return And(Nand(x1, x2), Or(x1, x2))
}
