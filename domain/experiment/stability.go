package experiment

// SeedNetworkSummary describes one seed's network file
type SeedNetworkSummary struct {
	Seed      int64  `json:"seed"`
	Path      string `json:"path"`
	EdgeCount int    `json:"edge_count"`
}

// PairwiseStability compares the networks of two seeds
type PairwiseStability struct {
	SeedA    int64   `json:"seed_a"`
	SeedB    int64   `json:"seed_b"`
	Jaccard  float64 `json:"jaccard"`
	Spearman float64 `json:"spearman"`
	PValue   float64 `json:"p_value"`
	Support  int     `json:"support"` // edges in the union of both top-K sets
}

// StabilityReport summarizes how much a dataset's inferred network moves across seeds
type StabilityReport struct {
	Algorithm Algorithm            `json:"algorithm"`
	Dataset   string               `json:"dataset"`
	TopK      int                  `json:"top_k"`
	Networks  []SeedNetworkSummary `json:"networks"`
	Pairs     []PairwiseStability  `json:"pairs"`

	EdgeCountMean   float64 `json:"edge_count_mean"`
	EdgeCountStdDev float64 `json:"edge_count_stddev"`
	JaccardMean     float64 `json:"jaccard_mean"`
	JaccardMin      float64 `json:"jaccard_min"`
	JaccardStdDev   float64 `json:"jaccard_stddev"`
	SpearmanMean    float64 `json:"spearman_mean"`
	SpearmanStdDev  float64 `json:"spearman_stddev"`
	// ConsensusEdges counts edges present in the top-K of every seed
	ConsensusEdges int `json:"consensus_edges"`
}
