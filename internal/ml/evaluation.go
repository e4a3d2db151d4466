package ml

// EvalMetrics is the validation scorecard for one epoch. Precision,
// recall and F1 are support-weighted averages over the realized class
// distribution; classes with zero support contribute zero.
type EvalMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
}

// Evaluate scores predictions against actual labels over numClasses.
func Evaluate(actuals, preds []int, numClasses int) EvalMetrics {
	if len(actuals) == 0 || len(actuals) != len(preds) {
		return EvalMetrics{}
	}

	tp := make([]float64, numClasses)
	fp := make([]float64, numClasses)
	fn := make([]float64, numClasses)
	support := make([]float64, numClasses)

	correct := 0
	for i, a := range actuals {
		p := preds[i]
		support[a]++
		if p == a {
			tp[a]++
			correct++
		} else {
			fp[p]++
			fn[a]++
		}
	}

	total := float64(len(actuals))
	var precision, recall, f1 float64
	for c := 0; c < numClasses; c++ {
		if support[c] == 0 {
			continue
		}
		var pc, rc, fc float64
		if tp[c]+fp[c] > 0 {
			pc = tp[c] / (tp[c] + fp[c])
		}
		if tp[c]+fn[c] > 0 {
			rc = tp[c] / (tp[c] + fn[c])
		}
		if pc+rc > 0 {
			fc = 2 * pc * rc / (pc + rc)
		}
		w := support[c] / total
		precision += w * pc
		recall += w * rc
		f1 += w * fc
	}

	return EvalMetrics{
		Accuracy:  float64(correct) / total,
		Precision: precision,
		Recall:    recall,
		F1:        f1,
	}
}
