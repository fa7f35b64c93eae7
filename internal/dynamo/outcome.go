package dynamo

// Resolve sums both pans and reports the strictly heavier side. Equal sums
// give Winner == Tie; choosing what to do with a tie is up to the caller.
func Resolve(w WeightConfig) (Outcome, error) {
	left, err := panSum("left_weights", w.Left)
	if err != nil {
		return Outcome{}, err
	}
	right, err := panSum("right_weights", w.Right)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{LeftSum: left, RightSum: right, Winner: Tie}
	switch {
	case left > right:
		out.Winner = Left
	case right > left:
		out.Winner = Right
	}
	return out, nil
}

func panSum(field string, weights []int) (int, error) {
	if len(weights) == 0 {
		return 0, &ConfigError{Field: field, Value: 0, Reason: "pan has no weights"}
	}
	sum := 0
	for _, v := range weights {
		if v <= 0 {
			return 0, &ConfigError{Field: field, Value: float64(v), Reason: "weights must be positive"}
		}
		sum += v
	}
	return sum, nil
}
