package types

// StringList is a JSON-serialized list of strings used for variable-shape
// columns such as a part's compatible vehicle descriptors.
type StringList []string

// Contains reports whether the list holds the exact value.
func (l StringList) Contains(value string) bool {
	for _, item := range l {
		if item == value {
			return true
		}
	}
	return false
}
