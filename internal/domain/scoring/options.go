package scoring

// Option applies a configuration option to the WeightedScorer.
type Option func(*WeightedScorer)

// WithWeights sets the blend factors.
func WithWeights(w Weights) Option {
	return func(s *WeightedScorer) {
		s.weights = w
	}
}

// WithWeightsFromConfig sets blend factors from a name-keyed map (dps, hps,
// kdr, survival). Unknown names are ignored; missing names keep their default.
func WithWeightsFromConfig(weights map[string]float64) Option {
	return func(s *WeightedScorer) {
		for name, weight := range weights {
			switch name {
			case "dps":
				s.weights.DPS = weight
			case "hps":
				s.weights.HPS = weight
			case "kdr":
				s.weights.KDR = weight
			case "survival":
				s.weights.Survival = weight
			}
		}
	}
}

// WithReferences sets the saturation points.
func WithReferences(r References) Option {
	return func(s *WeightedScorer) {
		s.refs = r
	}
}

// WithThresholds sets the rating bands.
func WithThresholds(t Thresholds) Option {
	return func(s *WeightedScorer) {
		s.thresholds = t
	}
}
