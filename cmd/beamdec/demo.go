package main

import (
	"github.com/samcharles93/beamdec/internal/beam"
	"github.com/samcharles93/beamdec/internal/toy"
)

// Reserved token ids for the built-in demo vocabulary.
const (
	demoStartToken = 0
	demoStopToken  = 1
	demoThreshold  = 4
)

// demoSearchConfig builds a search configuration over the demo vocabulary,
// deriving the sentence-start, stopword and pronoun sets from the word list.
func demoSearchConfig() (beam.Config, toy.Renderer, error) {
	mode, err := beam.ParseMode(scoreMode)
	if err != nil {
		return beam.Config{}, toy.Renderer{}, err
	}
	renderer := toy.Renderer{Threshold: demoThreshold, StopToken: demoStopToken}
	starts := append(renderer.WordIDs("."), demoStartToken)
	cfg := beam.Config{
		BeamSize:         int(beamSize),
		MaxSteps:         int(maxSteps),
		MinSteps:         int(minSteps),
		StartToken:       demoStartToken,
		StopToken:        demoStopToken,
		UnknownThreshold: demoThreshold,
		Mode:             mode,
		StartSentenceIDs: beam.NewIDSet(starts...),
		StopwordIDs:      beam.NewIDSet(renderer.WordIDs("a", "to", "and", "in")...),
		PronounIDs:       beam.NewIDSet(renderer.WordIDs("they", "their")...),
	}
	return cfg, renderer, nil
}

func demoModel(cfg beam.Config) *toy.Decoder {
	model := toy.New(cfg, int(stopStep), int(seed))
	model.PointerGen = pointerGen
	return model
}
