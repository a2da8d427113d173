package entity

// isMissing reports whether a tracked value counts as absent: a nil
// pointer or an empty string. Zero numbers are present values.
func isMissing(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	}
	return false
}

func strVal(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func numVal(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
