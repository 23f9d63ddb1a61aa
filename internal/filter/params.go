package filter

// params provides typed access to a filter spec's parameter map.
// Values arrive from YAML or JSON, so numbers may be int or float64.
type params map[string]any

func (p params) float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	default:
		return def
	}
}

func (p params) integer(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	case float32:
		return int(v)
	default:
		return def
	}
}

func (p params) str(key string, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

// oddKernel coerces a kernel size to an odd value of at least 1.
func oddKernel(k int) int {
	if k < 1 {
		return 1
	}
	if k%2 == 0 {
		return k + 1
	}
	return k
}
