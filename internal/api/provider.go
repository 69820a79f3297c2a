package api

import (
	"context"
	"sync"

	"github.com/samcharles93/beamdec/internal/beam"
	"github.com/samcharles93/beamdec/internal/decode"
)

// ModelProvider hands the service a model, a renderer and the base search
// configuration for the duration of one decode.
type ModelProvider interface {
	WithModel(ctx context.Context, fn func(model decode.Model, renderer decode.TokenRenderer, base beam.Config) error) error
}

// StaticProvider serves a single fixed model. Decodes are serialized because
// most models own mutable decoder state internally.
type StaticProvider struct {
	mu       sync.Mutex
	model    decode.Model
	renderer decode.TokenRenderer
	base     beam.Config
}

// NewStaticProvider wraps one model and its base configuration.
func NewStaticProvider(model decode.Model, renderer decode.TokenRenderer, base beam.Config) *StaticProvider {
	return &StaticProvider{model: model, renderer: renderer, base: base}
}

func (p *StaticProvider) WithModel(ctx context.Context, fn func(model decode.Model, renderer decode.TokenRenderer, base beam.Config) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(p.model, p.renderer, p.base)
}
