package siwe

import "sort"

// UnrecognizedKeys returns the keys present in record but absent from
// the recognized enumeration, sorted for stable diagnostics. An empty
// result means the record is valid. Pure; the record is not modified.
func UnrecognizedKeys(record map[string]any, recognized ...string) []string {
	recognizedSet := make(map[string]struct{}, len(recognized))
	for _, key := range recognized {
		recognizedSet[key] = struct{}{}
	}

	var unknown []string
	for key := range record {
		if _, ok := recognizedSet[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}
