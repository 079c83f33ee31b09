package boost

// histBin accumulates gradient statistics of the rows in one bin.
type histBin struct {
	g, h float64
	n    int
}

type split struct {
	ok        bool
	feature   int
	bin       int
	threshold float64
	gain      float64
}

// leafState is a leaf under construction.
type leafState struct {
	rows   []int
	g, h   float64
	hist   map[int][]histBin
	best   split
	parent int
	left   bool
}

type grower struct {
	params Params
	data   *binnedData
	grad   []float64
	hess   []float64
	feats  []int
}

// grow builds one tree on the current gradients using only feats. It
// returns the tree and the leaf index of every training row.
func (g *grower) grow(feats []int) (*Tree, []int) {
	g.feats = feats

	all := make([]int, len(g.grad))
	for i := range all {
		all[i] = i
	}
	root := g.newLeaf(all, -1, false)
	root.hist = g.histogram(all)
	g.findBest(root)

	t := &Tree{}
	leaves := []*leafState{root}
	for len(leaves) < g.params.NumLeaves {
		idx := -1
		for i, lf := range leaves {
			if lf.best.ok && (idx < 0 || lf.best.gain > leaves[idx].best.gain) {
				idx = i
			}
		}
		if idx < 0 {
			break
		}

		lf := leaves[idx]
		node := len(t.SplitFeature)
		t.SplitFeature = append(t.SplitFeature, lf.best.feature)
		t.Threshold = append(t.Threshold, lf.best.threshold)
		t.SplitGain = append(t.SplitGain, lf.best.gain)
		t.LeftChild = append(t.LeftChild, 0)
		t.RightChild = append(t.RightChild, 0)
		link(t, lf.parent, lf.left, node)

		left, right := g.split(lf, node)
		leaves[idx] = left
		leaves = append(leaves, right)
	}

	t.LeafValue = make([]float64, len(leaves))
	t.LeafCount = make([]int, len(leaves))
	leafOf := make([]int, len(g.grad))
	for i, lf := range leaves {
		t.LeafValue[i] = g.leafOutput(lf.g, lf.h)
		t.LeafCount[i] = len(lf.rows)
		link(t, lf.parent, lf.left, ^i)
		for _, r := range lf.rows {
			leafOf[r] = i
		}
	}
	return t, leafOf
}

// link points the parent's child slot at ref. The root has no parent.
func link(t *Tree, parent int, left bool, ref int) {
	if parent < 0 {
		return
	}
	if left {
		t.LeftChild[parent] = ref
	} else {
		t.RightChild[parent] = ref
	}
}

func (g *grower) newLeaf(rows []int, parent int, left bool) *leafState {
	lf := &leafState{rows: rows, parent: parent, left: left}
	for _, r := range rows {
		lf.g += g.grad[r]
		lf.h += g.hess[r]
	}
	return lf
}

// split partitions lf on its best split. The histogram of the smaller child
// is built from rows, the larger one by subtraction from the parent.
func (g *grower) split(lf *leafState, node int) (*leafState, *leafState) {
	bins := g.data.bins[lf.best.feature]
	var lrows, rrows []int
	for _, r := range lf.rows {
		if int(bins[r]) <= lf.best.bin {
			lrows = append(lrows, r)
		} else {
			rrows = append(rrows, r)
		}
	}

	left := g.newLeaf(lrows, node, true)
	right := g.newLeaf(rrows, node, false)

	small, large := left, right
	if len(rrows) < len(lrows) {
		small, large = right, left
	}
	small.hist = g.histogram(small.rows)
	large.hist = subtract(lf.hist, small.hist)
	lf.hist = nil

	g.findBest(left)
	g.findBest(right)
	return left, right
}

func (g *grower) histogram(rows []int) map[int][]histBin {
	hist := make(map[int][]histBin, len(g.feats))
	for _, f := range g.feats {
		hb := make([]histBin, g.data.mappers[f].numBins())
		bins := g.data.bins[f]
		for _, r := range rows {
			b := &hb[bins[r]]
			b.g += g.grad[r]
			b.h += g.hess[r]
			b.n++
		}
		hist[f] = hb
	}
	return hist
}

func subtract(parent, child map[int][]histBin) map[int][]histBin {
	out := make(map[int][]histBin, len(parent))
	for f, ph := range parent {
		ch := child[f]
		hb := make([]histBin, len(ph))
		for b := range ph {
			hb[b] = histBin{g: ph[b].g - ch[b].g, h: ph[b].h - ch[b].h, n: ph[b].n - ch[b].n}
		}
		out[f] = hb
	}
	return out
}

func (g *grower) findBest(lf *leafState) {
	lf.best = split{}
	minData := g.params.MinDataInLeaf
	if len(lf.rows) < 2*minData {
		return
	}

	parentGain := g.leafGain(lf.g, lf.h)
	for _, f := range g.feats {
		hb := lf.hist[f]
		var lg, lh float64
		var ln int
		for b := 0; b+1 < len(hb); b++ {
			lg += hb[b].g
			lh += hb[b].h
			ln += hb[b].n
			rn := len(lf.rows) - ln
			if ln < minData {
				continue
			}
			if rn < minData {
				break
			}
			rg, rh := lf.g-lg, lf.h-lh
			if lh < g.params.MinSumHessian || rh < g.params.MinSumHessian {
				continue
			}
			gain := g.leafGain(lg, lh) + g.leafGain(rg, rh) - parentGain
			if gain > kEpsilon && (!lf.best.ok || gain > lf.best.gain) {
				lf.best = split{
					ok:        true,
					feature:   f,
					bin:       b,
					threshold: g.data.mappers[f].upper[b],
					gain:      gain,
				}
			}
		}
	}
}

func (g *grower) leafGain(sg, sh float64) float64 {
	return sg * sg / (sh + g.params.LambdaL2 + kEpsilon)
}

func (g *grower) leafOutput(sg, sh float64) float64 {
	return -g.params.LearningRate * sg / (sh + g.params.LambdaL2 + kEpsilon)
}
