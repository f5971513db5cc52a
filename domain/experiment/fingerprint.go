package experiment

import (
	"crypto/sha256"
	"fmt"
	"time"

	"grnseeds/domain/core"
)

// RunFingerprint ties an output file to everything that determined its content
type RunFingerprint struct {
	Algorithm      Algorithm `json:"algorithm"`
	Dataset        string    `json:"dataset"`
	ExpressionPath string    `json:"expression_path"`
	TFPath         string    `json:"tf_path"`
	Seed           int64     `json:"seed"`
	ParamsHash     core.Hash `json:"params_hash"`
	Fingerprint    core.Hash `json:"fingerprint"`
}

// NewRunFingerprint creates a fingerprint from determinism parameters
func NewRunFingerprint(algorithm Algorithm, dataset Dataset, seed int64, paramsHash core.Hash) RunFingerprint {
	return RunFingerprint{
		Algorithm:      algorithm,
		Dataset:        dataset.Name,
		ExpressionPath: dataset.ExpressionPath,
		TFPath:         dataset.TFPath,
		Seed:           seed,
		ParamsHash:     paramsHash,
		Fingerprint:    computeRunFingerprint(algorithm, dataset, seed, paramsHash),
	}
}

func computeRunFingerprint(algorithm Algorithm, dataset Dataset, seed int64, paramsHash core.Hash) core.Hash {
	data := fmt.Sprintf("algorithm:%s|dataset:%s|expression:%s|tfs:%s|layout:%s|seed:%d|params:%s",
		algorithm, dataset.Name, dataset.ExpressionPath, dataset.TFPath, dataset.Layout, seed, paramsHash)

	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}

// RunRecord is what the ledger keeps for every written network
type RunRecord struct {
	ID          core.RunID   `db:"id" json:"id"`
	BatchID     core.BatchID `db:"batch_id" json:"batch_id"`
	Fingerprint core.Hash    `db:"fingerprint" json:"fingerprint"`
	Algorithm   Algorithm    `db:"algorithm" json:"algorithm"`
	Dataset     string       `db:"dataset" json:"dataset"`
	Seed        int64        `db:"seed" json:"seed"`
	OutputPath  string       `db:"output_path" json:"output_path"`
	OutputHash  core.Hash    `db:"output_sha256" json:"output_sha256"`
	EdgeCount   int          `db:"edge_count" json:"edge_count"`
	ElapsedMS   int64        `db:"elapsed_ms" json:"elapsed_ms"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

// Elapsed returns the recorded inference duration
func (r RunRecord) Elapsed() time.Duration {
	return time.Duration(r.ElapsedMS) * time.Millisecond
}
