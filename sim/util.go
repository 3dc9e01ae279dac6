package sim

// Assorted numeric helpers shared across the simulation

func Clamp(x, a, b int32) int32 {
	if x < a {
		return a
	} else if x > b {
		return b
	}
	return x
}

func Btoi(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
