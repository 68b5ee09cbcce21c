// Package attribute suggests and normalizes free-form device attributes
// typed into the product and variant forms.
package attribute

import (
	"regexp"
	"strings"
)

// MaxSuggestions bounds the list returned by Suggest.
const MaxSuggestions = 8

var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

type category struct {
	name    string
	match   func(key string) bool
	numeric func(n string) []string
	// measured reports whether the typed value is a measurement; nil means
	// any number is.
	measured func(typed string) bool
	common   []string
}

// categories is evaluated in order; every matching entry contributes.
var categories = []category{
	{
		name:  "storage",
		match: func(k string) bool { return strings.Contains(k, "storage") && !strings.Contains(k, "type") },
		numeric: func(n string) []string {
			return []string{n + "GB", n + "GB SSD", n + "GB NVMe SSD", n + "GB HDD", n + "TB"}
		},
		common: []string{"64GB", "128GB", "256GB", "512GB", "1TB", "2TB"},
	},
	{
		name:   "storage_type",
		match:  func(k string) bool { return strings.Contains(k, "storage") && strings.Contains(k, "type") },
		common: []string{"SSD", "NVMe SSD", "HDD", "eMMC", "SSD + HDD", "UFS 3.1"},
	},
	{
		name:  "ram",
		match: func(k string) bool { return hasWord(k, "ram") || strings.Contains(k, "memory") },
		numeric: func(n string) []string {
			return []string{n + "GB", n + "GB DDR4", n + "GB DDR5", n + "GB LPDDR5"}
		},
		common: []string{"4GB", "8GB", "16GB", "32GB", "64GB"},
	},
	{
		name: "screen_size",
		match: func(k string) bool {
			return strings.Contains(k, "screen_size") || strings.Contains(k, "display_size") ||
				(strings.Contains(k, "screen") && strings.Contains(k, "size"))
		},
		numeric: func(n string) []string { return []string{n + `"`, n + " inch"} },
		common:  []string{`6.1"`, `6.7"`, `13.3"`, `14"`, `15.6"`, `17.3"`},
	},
	{
		name:    "resolution",
		match:   func(k string) bool { return strings.Contains(k, "resolution") },
		numeric: func(n string) []string { return []string{n + "p"} },
		common:  []string{"1366x768 (HD)", "1920x1080 (FHD)", "2560x1440 (QHD)", "3840x2160 (4K)", "2532x1170"},
	},
	{
		name:    "refresh_rate",
		match:   func(k string) bool { return strings.Contains(k, "refresh") },
		numeric: func(n string) []string { return []string{n + "Hz"} },
		common:  []string{"60Hz", "90Hz", "120Hz", "144Hz", "165Hz", "240Hz"},
	},
	{
		name:    "battery",
		match:   func(k string) bool { return strings.Contains(k, "battery") },
		numeric: func(n string) []string { return []string{n + " mAh", n + "mAh", n + " Wh"} },
		common:  []string{"3000 mAh", "4000 mAh", "4500 mAh", "5000 mAh", "6000 mAh"},
	},
	{
		name: "processor",
		match: func(k string) bool {
			return strings.Contains(k, "processor") || hasWord(k, "cpu") || hasWord(k, "chip") || hasWord(k, "chipset")
		},
		numeric: func(n string) []string { return []string{n + " GHz", n + "GHz"} },
		measured: func(typed string) bool {
			return strings.Contains(typed, ".") || strings.Contains(typed, "ghz")
		},
		common: []string{"Intel Core i5", "Intel Core i7", "AMD Ryzen 5", "AMD Ryzen 7",
			"Apple M2", "Snapdragon 8 Gen 2", "MediaTek Dimensity 9000", "Apple A16 Bionic"},
	},
	{
		name:    "gpu",
		match:   func(k string) bool { return hasWord(k, "gpu") || strings.Contains(k, "graphics") },
		numeric: func(n string) []string { return []string{n + "GB VRAM", n + "GB GDDR6"} },
		common:  []string{"Integrated", "Intel Iris Xe", "NVIDIA RTX 3050", "NVIDIA RTX 4060", "AMD Radeon"},
	},
	{
		name:   "color",
		match:  func(k string) bool { return strings.Contains(k, "color") || strings.Contains(k, "colour") },
		common: []string{"Black", "White", "Silver", "Space Gray", "Gold", "Blue", "Red", "Green"},
	},
	{
		name:    "weight",
		match:   func(k string) bool { return strings.Contains(k, "weight") },
		numeric: func(n string) []string { return []string{n + " kg", n + " g"} },
		common:  []string{"180 g", "200 g", "1.2 kg", "1.5 kg", "2 kg"},
	},
	{
		name:    "wifi",
		match:   func(k string) bool { return strings.Contains(k, "wifi") || strings.Contains(k, "wi_fi") },
		numeric: func(n string) []string { return []string{"Wi-Fi " + n} },
		common:  []string{"Wi-Fi 5 (802.11ac)", "Wi-Fi 6 (802.11ax)", "Wi-Fi 6E", "Wi-Fi 7"},
	},
	{
		name:    "bluetooth",
		match:   func(k string) bool { return strings.Contains(k, "bluetooth") },
		numeric: func(n string) []string { return []string{"Bluetooth " + n, n} },
		common:  []string{"5.0", "5.1", "5.2", "5.3"},
	},
	{
		name:   "os",
		match:  func(k string) bool { return hasWord(k, "os") || strings.Contains(k, "operating_system") },
		common: []string{"Android", "iOS", "Windows 11", "macOS", "ChromeOS", "Linux"},
	},
	{
		name:    "camera",
		match:   func(k string) bool { return strings.Contains(k, "camera") || hasWord(k, "mp") },
		numeric: func(n string) []string { return []string{n + "MP"} },
		common:  []string{"12MP", "48MP", "50MP", "64MP", "108MP", "200MP"},
	},
	{
		name:   "panel",
		match:  func(k string) bool { return strings.Contains(k, "panel") || strings.Contains(k, "display_type") },
		common: []string{"IPS", "OLED", "AMOLED", "Super AMOLED", "LCD", "Mini-LED"},
	},
	{
		name: "water_rating",
		match: func(k string) bool {
			return strings.Contains(k, "water") && (strings.Contains(k, "rating") || strings.Contains(k, "resist"))
		},
		common: []string{"IP68", "IP67", "IP54", "IPX4"},
	},
}

// key normalizes an attribute name to lower snake case.
func key(name string) string {
	k := strings.ToLower(strings.TrimSpace(name))
	k = strings.NewReplacer(" ", "_", "-", "_").Replace(k)
	return k
}

func hasWord(k, word string) bool {
	for _, w := range strings.FieldsFunc(k, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if w == word {
			return true
		}
	}
	return false
}

// Suggest proposes values for the attribute being typed. The result is
// empty when no category matches the name.
func Suggest(name, current string) []string {
	k := key(name)
	if k == "" {
		return nil
	}
	value := strings.ToLower(strings.TrimSpace(current))

	if IsBooleanAttribute(name) {
		return booleanSuggestions(value)
	}

	number := numberRe.FindString(value)
	var out []string
	seen := map[string]struct{}{}
	add := func(items []string) {
		for _, s := range items {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}

	for _, c := range categories {
		if !c.match(k) {
			continue
		}
		if number != "" && c.numeric != nil && (c.measured == nil || c.measured(value)) {
			add(c.numeric(number))
			continue
		}
		add(filter(c.common, value))
	}

	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// filter keeps common values containing the typed text, or all of them
// when nothing is typed or nothing matches.
func filter(common []string, typed string) []string {
	if typed == "" {
		return common
	}
	var hits []string
	for _, c := range common {
		if strings.Contains(strings.ToLower(c), typed) {
			hits = append(hits, c)
		}
	}
	if len(hits) == 0 {
		return common
	}
	return hits
}
