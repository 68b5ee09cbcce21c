// Package variantview holds the read-side helpers used to present variants:
// naming, source badges, identifiers and attribute listings.
package variantview

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Attribute keys that mark a variant as coming from a customer trade-in.
var tradeInKeys = []string{"trade_in_value", "device_model", "trade_in_transaction_id", "trade_in_id"}

// Attribute keys that mark a variant as received through a purchase order.
var purchaseKeys = []string{"purchase_order_id", "po_number", "supplier_id"}

// Keys never listed as user attributes.
var reserved = map[string]struct{}{
	"specification":        {},
	"imei":                 {},
	"serial_number":        {},
	"source":               {},
	"parent_variant_id":    {},
	"skip_default_variant": {},
	"createdBy":            {},
	"createdAt":            {},
	"useVariants":          {},
	"variantCount":         {},
}

type Badge struct {
	Text  string `json:"text"`
	Class string `json:"class"`
}

var (
	TradeInBadge  = Badge{Text: "Trade-In", Class: "bg-purple-100 text-purple-700"}
	PurchaseBadge = Badge{Text: "Purchased", Class: "bg-blue-100 text-blue-700"}
)

type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// DisplayName returns the variant's name, or fallback when it has none.
func DisplayName(v model.Variant, fallback string) string {
	if name := strings.TrimSpace(v.Name); name != "" {
		return name
	}
	if name := strings.TrimSpace(v.VariantName); name != "" {
		return name
	}
	return fallback
}

// IndexedName is DisplayName with the "Variant N" fallback for position i.
func IndexedName(i int, v model.Variant) string {
	return DisplayName(v, fmt.Sprintf("Variant %d", i+1))
}

func IsTradeInVariant(v model.Variant) bool {
	if v.AttrString("source") == "trade_in" {
		return true
	}
	for _, k := range tradeInKeys {
		if v.Attributes.Has(k) || v.VariantAttributes.Has(k) {
			return true
		}
	}
	return false
}

func IsTradeInProduct(variants []model.Variant) bool {
	for _, v := range variants {
		if IsTradeInVariant(v) {
			return true
		}
	}
	return false
}

func isPurchaseVariant(v model.Variant) bool {
	switch v.AttrString("source") {
	case "purchase", "purchase_order":
		return true
	}
	for _, k := range purchaseKeys {
		if v.Attributes.Has(k) || v.VariantAttributes.Has(k) {
			return true
		}
	}
	return false
}

// SourceBadge returns nil when the variant's origin is unknown.
func SourceBadge(v model.Variant) *Badge {
	switch {
	case IsTradeInVariant(v):
		b := TradeInBadge
		return &b
	case isPurchaseVariant(v):
		b := PurchaseBadge
		return &b
	default:
		return nil
	}
}

// Identifier returns the IMEI or serial number of the unit, or "".
func Identifier(v model.Variant) string {
	if s := strings.TrimSpace(v.AttrString("imei")); s != "" {
		return s
	}
	return strings.TrimSpace(v.AttrString("serial_number"))
}

// Label turns a snake_case key into Title Case.
func Label(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	return cases.Title(language.English).String(strings.Join(words, " "))
}

func valueText(val interface{}) string {
	switch t := val.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, valueText(p))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

// FormatAttributes lists the variant's user attributes sorted by key.
func FormatAttributes(v model.Variant) []Field {
	merged := v.MergedAttributes()
	keys := make([]string, 0, len(merged))
	for k := range merged {
		if _, skip := reserved[k]; skip || strings.HasPrefix(k, "_") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		text := valueText(merged[k])
		if text == "" {
			continue
		}
		fields = append(fields, Field{Key: k, Label: Label(k), Value: text})
	}
	return fields
}

func IsChild(v model.Variant) bool {
	if v.VariantType == model.VariantTypeChild {
		return true
	}
	return v.ParentVariantID != nil && v.VariantAttributes.Has("imei")
}

func IsParent(v model.Variant) bool {
	return v.IsParent || v.VariantType == model.VariantTypeParent
}

// CanTrackIdentifiers reports whether v is, or can become, a parent of unit rows.
func CanTrackIdentifiers(v model.Variant) bool {
	if IsParent(v) {
		return true
	}
	return (v.VariantType == model.VariantTypeStandard || v.VariantType == "") && !IsChild(v)
}

// ParentsOnly drops unit rows, keeping parents and standard variants.
func ParentsOnly(variants []model.Variant) []model.Variant {
	out := make([]model.Variant, 0, len(variants))
	for _, v := range variants {
		if IsParent(v) || (v.ParentVariantID == nil && v.VariantType != model.VariantTypeChild) {
			out = append(out, v)
		}
	}
	return out
}
