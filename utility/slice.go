package utility

func Contains(array []string, s string) bool {
	for _, v := range array {
		if v == s {
			return true
		}
	}
	return false
}

// Unique drops empty and repeated values, keeping the first occurrence order
func Unique(array []string) []string {
	result := make([]string, 0, len(array))
	for _, v := range array {
		if v == "" || Contains(result, v) {
			continue
		}
		result = append(result, v)
	}
	return result
}
