package wire

import "unicode/utf8"

func utf8Valid(values ...string) bool {
	for _, v := range values {
		if !utf8.ValidString(v) {
			return false
		}
	}
	return true
}
