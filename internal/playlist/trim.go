package playlist

// TrimRequest holds requested start/end offsets in seconds. Nil means not given.
type TrimRequest struct {
	Start *float64
	End   *float64
}

// Trim is a validated pair of offsets with 0 <= Start <= End <= duration
type Trim struct {
	Start float64
	End   float64
}

// ComputeTrim clamps requested offsets against a media duration
func ComputeTrim(req TrimRequest, duration float64) Trim {
	if duration < 0 {
		duration = 0
	}

	start := 0.0
	if req.Start != nil && *req.Start > 0 {
		start = min(*req.Start, duration)
	}

	end := duration
	if req.End != nil && *req.End <= duration {
		end = max(*req.End, start)
	}

	return Trim{Start: start, End: end}
}
