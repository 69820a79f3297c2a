package api

import (
	"context"
	"fmt"

	"github.com/samcharles93/beamdec/internal/beam"
	"github.com/samcharles93/beamdec/internal/decode"
	"github.com/samcharles93/beamdec/internal/logger"
)

// DecodeService resolves a request against the provider's model and runs the
// beam search.
type DecodeService struct {
	provider ModelProvider
}

func NewDecodeService(provider ModelProvider) *DecodeService {
	return &DecodeService{provider: provider}
}

// Run overlays the request on the provider's base configuration and decodes
// one input. Request validation failures unwrap to ErrInvalidRequest.
func (s *DecodeService) Run(ctx context.Context, req *DecodeRequest) (*decode.Outcome, beam.Config, error) {
	var out *decode.Outcome
	var used beam.Config

	err := s.provider.WithModel(ctx, func(model decode.Model, renderer decode.TokenRenderer, base beam.Config) error {
		cfg, err := applyRequest(base, req)
		if err != nil {
			return err
		}
		session, err := decode.NewSession(cfg, model, renderer, logger.FromContext(ctx))
		if err != nil {
			return newInvalidRequest(err.Error())
		}
		outcome, err := session.Decode(ctx)
		if err != nil {
			return fmt.Errorf("decode failed: %w", err)
		}
		out = outcome
		used = cfg
		return nil
	})
	if err != nil {
		return nil, beam.Config{}, err
	}
	return out, used, nil
}

func applyRequest(base beam.Config, req *DecodeRequest) (beam.Config, error) {
	cfg := base
	if req.BeamSize < 0 {
		return cfg, newInvalidRequest("beam_size must be positive")
	}
	if req.BeamSize > 0 {
		cfg.BeamSize = req.BeamSize
	}
	if req.MaxSteps < 0 {
		return cfg, newInvalidRequest("max_steps must be positive")
	}
	if req.MaxSteps > 0 {
		cfg.MaxSteps = req.MaxSteps
	}
	if req.MinSteps != nil {
		if *req.MinSteps < 0 {
			return cfg, newInvalidRequest("min_steps must be non-negative")
		}
		cfg.MinSteps = *req.MinSteps
	}
	if req.Mode != "" {
		mode, err := beam.ParseMode(req.Mode)
		if err != nil {
			return cfg, newInvalidRequest(err.Error())
		}
		cfg.Mode = mode
	}
	return cfg, nil
}
