package attribute

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// RawKey holds specification text that is not a JSON object.
const RawKey = "_raw"

var (
	intRe   = regexp.MustCompile(`^\d+$`)
	floatRe = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// ParseSpecification decodes the product specification. A JSON object
// yields its entries as strings; any other text is kept under RawKey.
func ParseSpecification(text string) map[string]string {
	out := map[string]string{}
	text = strings.TrimSpace(text)
	if text == "" {
		return out
	}
	parsed := gjson.Parse(text)
	if !gjson.Valid(text) || !parsed.IsObject() {
		out[RawKey] = text
		return out
	}
	parsed.ForEach(func(k, v gjson.Result) bool {
		if v.Type == gjson.Null {
			return true
		}
		out[k.String()] = v.String()
		return true
	})
	return out
}

// ValidSpecification reports whether text is empty or a JSON object.
func ValidSpecification(text string) bool {
	text = strings.TrimSpace(text)
	return text == "" || (gjson.Valid(text) && gjson.Parse(text).IsObject())
}

// SetSpecification adds or replaces one entry of a JSON specification.
// Boolean attributes answered "No" remove the entry instead.
func SetSpecification(spec, name, value string) (string, error) {
	if strings.TrimSpace(spec) == "" || !ValidSpecification(spec) {
		spec = "{}"
	}
	k := key(name)
	path := gjsonEscape(k)
	v, ok := AcceptForAdd(name, value)
	if !ok {
		return sjson.Delete(spec, path)
	}
	return sjson.Set(spec, path, v)
}

// NormalizeSpecification rewrites the entries of a JSON specification in
// order, keeping key casing and non-string values as they are. String
// values go through AcceptForAdd; null, blank and boolean "No" entries are
// left out. Keys that differ only in case are rejected. Free text is
// returned trimmed.
func NormalizeSpecification(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" || !ValidSpecification(text) {
		return text, nil
	}
	out := "{}"
	seen := map[string]string{}
	var err error
	gjson.Parse(text).ForEach(func(k, v gjson.Result) bool {
		name := k.String()
		if prev, ok := seen[key(name)]; ok {
			err = apperrors.FieldInvalid("specification", fmt.Sprintf("%q and %q are the same entry", prev, name))
			return false
		}
		seen[key(name)] = name

		path := gjsonEscape(name)
		switch v.Type {
		case gjson.Null:
			return true
		case gjson.String, gjson.True, gjson.False:
			value := v.String()
			if v.Type != gjson.String {
				if !IsBooleanAttribute(name) {
					out, err = sjson.SetRaw(out, path, v.Raw)
					return err == nil
				}
				value = "No"
				if v.Bool() {
					value = "Yes"
				}
			}
			norm, keep := AcceptForAdd(name, value)
			if !keep {
				return true
			}
			out, err = sjson.Set(out, path, norm)
		default:
			out, err = sjson.SetRaw(out, path, v.Raw)
		}
		return err == nil
	})
	if err != nil {
		if _, ok := apperrors.As(err); !ok {
			err = apperrors.FieldInvalid("specification", err.Error())
		}
		return "", err
	}
	return out, nil
}

var pathEscaper = strings.NewReplacer(
	`\`, `\\`, ".", `\.`, "*", `\*`, "?", `\?`, "|", `\|`, "#", `\#`, "@", `\@`,
	"!", `\!`, "=", `\=`, "<", `\<`, ">", `\>`, "%", `\%`, ":", `\:`, "[", `\[`, "{", `\{`,
)

// gjsonEscape turns a literal object key into a gjson/sjson path.
func gjsonEscape(k string) string {
	return pathEscaper.Replace(k)
}

// SpecificationKeys returns the sorted keys of a parsed specification.
func SpecificationKeys(spec map[string]string) []string {
	keys := make([]string, 0, len(spec))
	for k := range spec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatValue completes bare numbers with the unit implied by the key.
func FormatValue(name, value string) string {
	k := key(name)
	v := strings.TrimSpace(value)
	lower := strings.ToLower(v)

	switch {
	case containsAny(k, "storage", "capacity", "disk"):
		if intRe.MatchString(v) {
			return v + " GB"
		}
	case hasWord(k, "ram") || containsAny(k, "memory", "ddr"):
		if intRe.MatchString(v) {
			return v + " GB"
		}
	case containsAny(k, "screen", "display", "monitor", "size"):
		if floatRe.MatchString(v) && !strings.Contains(lower, "inch") {
			return v + `"`
		}
	case containsAny(k, "weight", "mass"):
		if floatRe.MatchString(v) {
			return v + " kg"
		}
	case containsAny(k, "battery", "mah"):
		if intRe.MatchString(v) {
			return v + " mAh"
		}
	case containsAny(k, "processor", "cpu", "ghz"):
		if floatRe.MatchString(v) {
			return v + " GHz"
		}
	}
	return value
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
