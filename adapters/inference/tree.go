package inference

import (
	"math/rand"
	"sort"
)

// treeConfig bounds the growth of one regression tree
type treeConfig struct {
	maxDepth        int // 0 grows until leaves are pure or too small
	maxFeatures     int // candidate features drawn per split
	minSamplesSplit int
	minSamplesLeaf  int
}

// treeNode is a split when feature >= 0, a leaf otherwise
type treeNode struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
}

// regressionTree is a CART tree grown on squared error
type regressionTree struct {
	nodes []treeNode
}

func (t *regressionTree) predict(x [][]float64, sample int) float64 {
	i := 0
	for {
		n := &t.nodes[i]
		if n.feature < 0 {
			return n.value
		}
		if x[n.feature][sample] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

// treeBuilder grows trees over a fixed feature matrix. x[f][s] is feature f of
// sample s. A builder is not safe for concurrent use.
type treeBuilder struct {
	x   [][]float64
	cfg treeConfig
	rng *rand.Rand

	features []int
	scratch  []int
}

func newTreeBuilder(x [][]float64, cfg treeConfig, rng *rand.Rand) *treeBuilder {
	features := make([]int, len(x))
	for i := range features {
		features[i] = i
	}
	return &treeBuilder{x: x, cfg: cfg, rng: rng, features: features}
}

// grow fits a tree to y restricted to samples (duplicates act as weights) and
// adds each split's squared-error decrease to importance[feature].
func (b *treeBuilder) grow(samples []int, y []float64, importance []float64) *regressionTree {
	tree := &regressionTree{nodes: make([]treeNode, 0, 64)}
	work := append([]int(nil), samples...)
	if cap(b.scratch) < len(work) {
		b.scratch = make([]int, len(work))
	}
	b.split(tree, work, y, importance, 0)
	return tree
}

type splitCandidate struct {
	feature   int
	threshold float64
	position  int
	score     float64
}

func (b *treeBuilder) split(tree *regressionTree, samples []int, y []float64, importance []float64, depth int) int {
	id := len(tree.nodes)
	tree.nodes = append(tree.nodes, treeNode{feature: -1})

	n := len(samples)
	var sum, sumSq float64
	for _, s := range samples {
		sum += y[s]
		sumSq += y[s] * y[s]
	}
	mean := sum / float64(n)
	tree.nodes[id].value = mean

	sse := sumSq - sum*sum/float64(n)
	if n < b.cfg.minSamplesSplit || n < 2*b.cfg.minSamplesLeaf ||
		(b.cfg.maxDepth > 0 && depth >= b.cfg.maxDepth) || sse <= 1e-12*float64(n) {
		return id
	}

	best, ok := b.bestSplit(samples, y, sum)
	if !ok {
		return id
	}

	// Reorder samples so the left partition precedes the right one.
	col := b.x[best.feature]
	sort.Slice(samples, func(i, j int) bool { return col[samples[i]] < col[samples[j]] })

	decrease := best.score - sum*sum/float64(n)
	if decrease > 0 {
		importance[best.feature] += decrease
	}

	left := b.split(tree, samples[:best.position], y, importance, depth+1)
	right := b.split(tree, samples[best.position:], y, importance, depth+1)
	tree.nodes[id].feature = best.feature
	tree.nodes[id].threshold = best.threshold
	tree.nodes[id].left = left
	tree.nodes[id].right = right
	return id
}

// bestSplit draws features in random order and evaluates non-constant ones
// until maxFeatures have been tried. score is sumL²/nL + sumR²/nR, which is
// maximal where the children's squared error is minimal.
func (b *treeBuilder) bestSplit(samples []int, y []float64, total float64) (splitCandidate, bool) {
	n := len(samples)
	order := b.scratch[:n]
	best := splitCandidate{feature: -1}

	tried := 0
	for k := 0; k < len(b.features) && tried < b.cfg.maxFeatures; k++ {
		j := k + b.rng.Intn(len(b.features)-k)
		b.features[k], b.features[j] = b.features[j], b.features[k]
		f := b.features[k]
		col := b.x[f]

		copy(order, samples)
		sort.Slice(order, func(i, j int) bool { return col[order[i]] < col[order[j]] })
		if col[order[0]] == col[order[n-1]] {
			continue
		}
		tried++

		var leftSum float64
		for i := 1; i < n; i++ {
			leftSum += y[order[i-1]]
			lo, hi := col[order[i-1]], col[order[i]]
			if lo == hi || i < b.cfg.minSamplesLeaf || n-i < b.cfg.minSamplesLeaf {
				continue
			}
			rightSum := total - leftSum
			score := leftSum*leftSum/float64(i) + rightSum*rightSum/float64(n-i)
			if best.feature < 0 || score > best.score {
				threshold := lo + (hi-lo)/2
				if threshold >= hi {
					threshold = lo
				}
				best = splitCandidate{feature: f, threshold: threshold, position: i, score: score}
			}
		}
	}
	return best, best.feature >= 0
}
