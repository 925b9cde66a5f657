package neuralnet

import "errors"

// Optimizer applies a gradient record to a network.
type Optimizer[T Float] interface {
	Apply(nn *TwoLayerNet[T], grads *Params[T]) error
}

// SGD implements plain stochastic gradient descent: p = p - lr * grad.
type SGD[T Float] struct {
	LearningRate float64
	// Decay multiplies LearningRate after every step. Zero means no decay.
	Decay float64
}

// Apply writes the updated parameters into nn and decays the learning rate.
func (o *SGD[T]) Apply(nn *TwoLayerNet[T], grads *Params[T]) error {
	if o.LearningRate <= 0 {
		return errors.New("invalid learning rate")
	}
	if grads == nil {
		return errors.New("nil gradients")
	}
	for _, name := range ParamNames {
		if grads.Get(name) == nil {
			return errors.New("missing gradient for " + string(name))
		}
	}
	for _, name := range ParamNames {
		nn.Update(name, descend[T](nn.params.Get(name), grads.Get(name), o.LearningRate))
	}
	if o.Decay > 0 {
		o.LearningRate *= o.Decay
	}
	return nil
}
