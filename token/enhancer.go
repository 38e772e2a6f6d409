package token

import "context"

// Enhancer decorates a freshly granted token before it is stored.
type Enhancer interface {
	Enhance(ctx context.Context, t *AuthorizedAccessToken) error
}

type EnhancerFunc func(ctx context.Context, t *AuthorizedAccessToken) error

func (f EnhancerFunc) Enhance(ctx context.Context, t *AuthorizedAccessToken) error {
	return f(ctx, t)
}

// EnhancerChain runs enhancers in order and stops at the first error.
type EnhancerChain []Enhancer

func (c EnhancerChain) Enhance(ctx context.Context, t *AuthorizedAccessToken) error {
	for _, e := range c {
		if e == nil {
			continue
		}
		if err := e.Enhance(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
