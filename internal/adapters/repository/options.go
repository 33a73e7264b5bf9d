package repository

// Option applies a configuration option to the HistoryStore.
type Option func(*HistoryStore)

// WithShardCount sets how many independently locked shards hold history.
func WithShardCount(n int) Option {
	return func(s *HistoryStore) {
		if n > 0 {
			s.shardCount = n
		}
	}
}

// WithMaxLimit caps the number of entries TopN returns.
func WithMaxLimit(n int) Option {
	return func(s *HistoryStore) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}
