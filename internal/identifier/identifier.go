// Package identifier validates variant names and the IMEI/serial numbers
// tracked under a variant before anything is written.
package identifier

import (
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
)

// Normalize is the comparison form of names and identifiers.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Filled returns the trimmed non-empty entries.
func Filled(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if s := strings.TrimSpace(e); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func DuplicateName(name string) *apperrors.Error {
	return apperrors.Validation("duplicate_variant_name",
		fmt.Sprintf("Duplicate variant name: %q", strings.TrimSpace(name)),
		map[string]interface{}{"Name": strings.TrimSpace(name)})
}

func LimitExceeded(variant string, limit int) *apperrors.Error {
	return apperrors.Validation("identifier_limit",
		fmt.Sprintf("Variant %q allows at most %d IMEI/Serial number(s)", variant, limit),
		map[string]interface{}{"Variant": variant, "Limit": limit})
}

func DuplicateEntry(value string) *apperrors.Error {
	return apperrors.Validation("identifier_duplicate",
		fmt.Sprintf("IMEI/Serial %s is entered more than once", value),
		map[string]interface{}{"Value": value})
}

func UsedByVariant(value, variant string) *apperrors.Error {
	return apperrors.Validation("identifier_used_by_variant",
		fmt.Sprintf("IMEI/Serial %s is already used by variant %q", value, variant),
		map[string]interface{}{"Value": value, "Variant": variant})
}

func Exists(value string) *apperrors.Error {
	return apperrors.Conflict("identifier_exists",
		fmt.Sprintf("IMEI %s already exists in system", value),
		map[string]interface{}{"Value": value})
}

// CheckVariantNames rejects the first name that repeats, ignoring case and
// surrounding spaces. Blank names are left to the caller's defaults.
func CheckVariantNames(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		n := Normalize(name)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			return DuplicateName(name)
		}
		seen[n] = struct{}{}
	}
	return nil
}

// Variant is the identifier-bearing part of a variant being submitted.
type Variant struct {
	Name        string
	Quantity    int
	Identifiers []string
}

// CheckVariant enforces the quantity bound and uniqueness inside one variant.
func CheckVariant(v Variant) error {
	filled := Filled(v.Identifiers)
	if len(filled) > v.Quantity {
		return LimitExceeded(v.Name, v.Quantity)
	}
	seen := make(map[string]struct{}, len(filled))
	for _, e := range filled {
		n := Normalize(e)
		if _, dup := seen[n]; dup {
			return DuplicateEntry(e)
		}
		seen[n] = struct{}{}
	}
	return nil
}

// CheckProduct runs CheckVariant on every variant, then rejects any
// identifier held by two variants of the product.
func CheckProduct(variants []Variant) error {
	owner := map[string]string{}
	for _, v := range variants {
		if err := CheckVariant(v); err != nil {
			return err
		}
		for _, e := range Filled(v.Identifiers) {
			n := Normalize(e)
			if other, taken := owner[n]; taken {
				return UsedByVariant(e, other)
			}
			owner[n] = v.Name
		}
	}
	return nil
}
