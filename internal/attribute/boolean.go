package attribute

import "strings"

var booleanWords = []string{
	"touch", "wireless", "fingerprint", "waterproof", "backlit",
	"stylus", "face_id", "dual_sim", "esim", "nfc", "5g",
}

// IsBooleanAttribute reports whether the attribute takes a Yes/No value.
func IsBooleanAttribute(name string) bool {
	k := key(name)
	for _, skip := range []string{"rating", "type", "standard", "version"} {
		if strings.Contains(k, skip) {
			return false
		}
	}
	for _, w := range booleanWords {
		if len(w) <= 4 {
			if hasWord(k, w) {
				return true
			}
			continue
		}
		if strings.Contains(k, w) {
			return true
		}
	}
	return false
}

// NormalizeBoolean maps y/yes and n/no to "Yes" and "No" for boolean
// attributes. Other values and attributes are returned unchanged.
func NormalizeBoolean(name, value string) string {
	if !IsBooleanAttribute(name) {
		return value
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes", "true":
		return "Yes"
	case "n", "no", "false":
		return "No"
	}
	return value
}

// AcceptForAdd normalizes a name/value pair about to be stored. Boolean
// attributes answered "No" are not stored, absence already means No.
func AcceptForAdd(name, value string) (string, bool) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(value) == "" {
		return "", false
	}
	v := NormalizeBoolean(name, strings.TrimSpace(value))
	if IsBooleanAttribute(name) && v == "No" {
		return "", false
	}
	return v, true
}

func booleanSuggestions(typed string) []string {
	switch {
	case typed == "":
		return []string{"Yes", "No"}
	case strings.HasPrefix("yes", typed):
		return []string{"Yes"}
	case strings.HasPrefix("no", typed):
		return []string{"No"}
	default:
		return nil
	}
}

// Merge copies src into dst through AcceptForAdd. A blank string value, or
// a boolean attribute answered "No" or false, removes the key from dst.
func Merge(dst, src map[string]interface{}) {
	for k, v := range src {
		var s string
		switch val := v.(type) {
		case string:
			s = val
		case bool:
			if !IsBooleanAttribute(k) {
				dst[k] = val
				continue
			}
			s = "No"
			if val {
				s = "Yes"
			}
		default:
			dst[k] = v
			continue
		}
		if norm, keep := AcceptForAdd(k, s); keep {
			dst[k] = norm
		} else {
			delete(dst, k)
		}
	}
}
