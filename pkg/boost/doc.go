// Package boost implements gradient-boosted decision trees for binary
// classification with the log-loss objective.
//
// Training follows the LightGBM recipe the classifier was first built with:
//
//   - Feature values are bucketed once into at most MaxBin histogram bins.
//   - Trees grow leaf-wise: the leaf with the largest split gain is split
//     next, until NumLeaves leaves exist or no split improves the loss.
//   - Each tree sees a random FeatureFraction of the features.
//   - Leaf outputs are Newton steps scaled by LearningRate.
//   - The initial score is the log-odds of the positive rate.
//
// A fitted Model is immutable and safe for concurrent prediction. Models are
// persisted as YAML.
package boost
