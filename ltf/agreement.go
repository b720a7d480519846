package ltf

import "fmt"

// Disagreement returns the fraction of positions where a and b differ.
//
// Errors: ErrDimensionMismatch on unequal lengths, ErrEmptyBatch if both are empty.
func Disagreement(a, b []int8) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("disagreement: %d vs %d: %w", len(a), len(b), ErrDimensionMismatch)
	}
	if len(a) == 0 {
		return 0, ErrEmptyBatch
	}
	var i, diff int
	for i = range a {
		if a[i] != b[i] {
			diff++
		}
	}

	return float64(diff) / float64(len(a)), nil
}

// Similarity evaluates model and reference on batch and returns their agreement
// rate in [0, 1].
func Similarity(model, reference Evaluator, batch [][]int8) (float64, error) {
	got, err := model.Eval(batch)
	if err != nil {
		return 0, fmt.Errorf("similarity: model: %w", err)
	}
	want, err := reference.Eval(batch)
	if err != nil {
		return 0, fmt.Errorf("similarity: reference: %w", err)
	}
	d, err := Disagreement(got, want)
	if err != nil {
		return 0, fmt.Errorf("similarity: %w", err)
	}

	return 1 - d, nil
}
