package attribute

import (
	"testing"

	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestSuggest(t *testing.T) {
	t.Run("ram with a number", func(t *testing.T) {
		got := Suggest("ram", "8")
		assert.Contains(t, got, "8GB")
		assert.NotContains(t, got, "NVMe SSD")
		assert.NotContains(t, got, "8GB SSD")
	})

	t.Run("storage with a number", func(t *testing.T) {
		got := Suggest("Storage", "128")
		assert.Contains(t, got, "128GB SSD")
		assert.Contains(t, got, "128GB NVMe SSD")
	})

	t.Run("processor model numbers are not clock speeds", func(t *testing.T) {
		got := Suggest("processor", "i7")
		assert.NotContains(t, got, "7 GHz")
		assert.Equal(t, []string{"Intel Core i7"}, got)

		got = Suggest("chipset", "8 gen")
		assert.NotContains(t, got, "8 GHz")
		assert.Contains(t, got, "Snapdragon 8 Gen 2")
	})

	t.Run("processor clock speed", func(t *testing.T) {
		assert.Equal(t, []string{"3.2 GHz", "3.2GHz"}, Suggest("processor", "3.2"))
		assert.Equal(t, []string{"3 GHz", "3GHz"}, Suggest("cpu", "3ghz"))
	})

	t.Run("storage type has no sizes", func(t *testing.T) {
		got := Suggest("storage_type", "")
		assert.Contains(t, got, "NVMe SSD")
		assert.NotContains(t, got, "128GB")
	})

	t.Run("common values filtered by typed text", func(t *testing.T) {
		assert.Equal(t, []string{"AMOLED", "Super AMOLED"}, Suggest("panel type", "amo"))
	})

	t.Run("several categories concatenate", func(t *testing.T) {
		got := Suggest("battery_weight", "")
		assert.Contains(t, got, "5000 mAh")
		assert.Contains(t, got, "1.2 kg")
		assert.Len(t, got, MaxSuggestions)
	})

	t.Run("bounded", func(t *testing.T) {
		assert.LessOrEqual(t, len(Suggest("color", "")), MaxSuggestions)
		assert.LessOrEqual(t, len(Suggest("processor_chip_color", "")), MaxSuggestions)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, Suggest("warranty_provider", "acme"))
		assert.Empty(t, Suggest("", "8"))
		assert.Empty(t, Suggest("parameter", "8"))
	})
}

func TestBooleanAttributes(t *testing.T) {
	assert.True(t, IsBooleanAttribute("waterproof"))
	assert.True(t, IsBooleanAttribute("Touch Screen"))
	assert.True(t, IsBooleanAttribute("nfc"))
	assert.False(t, IsBooleanAttribute("waterproof_rating"))
	assert.False(t, IsBooleanAttribute("color"))

	assert.Equal(t, "Yes", NormalizeBoolean("waterproof", "y"))
	assert.Equal(t, "Yes", NormalizeBoolean("waterproof", " YES "))
	assert.Equal(t, "No", NormalizeBoolean("waterproof", "n"))
	assert.Equal(t, "y", NormalizeBoolean("color", "y"))
	assert.Equal(t, []string{"Yes"}, Suggest("waterproof", "y"))

	v, ok := AcceptForAdd("waterproof", "y")
	assert.True(t, ok)
	assert.Equal(t, "Yes", v)

	_, ok = AcceptForAdd("waterproof", "n")
	assert.False(t, ok)

	v, ok = AcceptForAdd("color", "No")
	assert.True(t, ok)
	assert.Equal(t, "No", v)
}

func TestSpecification(t *testing.T) {
	spec := ParseSpecification(`{"ram":"8","storage":256,"nfc":null}`)
	assert.Equal(t, map[string]string{"ram": "8", "storage": "256"}, spec)
	assert.Equal(t, []string{"ram", "storage"}, SpecificationKeys(spec))

	assert.Equal(t, map[string]string{RawKey: "8GB RAM, 256GB"}, ParseSpecification("8GB RAM, 256GB"))
	assert.Empty(t, ParseSpecification("  "))
	assert.True(t, ValidSpecification(""))
	assert.False(t, ValidSpecification("[1,2]"))

	out, err := SetSpecification(`{"ram":"8"}`, "Waterproof", "y")
	require.NoError(t, err)
	assert.Equal(t, "Yes", gjson.Get(out, "waterproof").String())

	out, err = SetSpecification(out, "waterproof", "no")
	require.NoError(t, err)
	assert.False(t, gjson.Get(out, "waterproof").Exists())
	assert.Equal(t, "8", gjson.Get(out, "ram").String())
}

func TestNormalizeSpecification(t *testing.T) {
	out, err := NormalizeSpecification(`{"ram":"8"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"ram":"8"}`, out)

	out, err = NormalizeSpecification(" 8GB RAM ")
	require.NoError(t, err)
	assert.Equal(t, "8GB RAM", out)

	out, err = NormalizeSpecification("")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = NormalizeSpecification(`{"Screen Size":"6.1","Waterproof":"y","NFC":"no","Touch":false,"note":null}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Screen Size":"6.1","Waterproof":"Yes"}`, out)

	out, err = NormalizeSpecification(`{"RAM": 8, "Ports": ["USB-C","HDMI"], "Dual SIM": true, "box": {"charger": true}}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"RAM":8,"Ports":["USB-C","HDMI"],"Dual SIM":"Yes","box":{"charger":true}}`, out)
	assert.Equal(t, int64(8), gjson.Get(out, "RAM").Int())
	assert.True(t, gjson.Get(out, "Ports").IsArray())
}

func TestNormalizeSpecificationKeys(t *testing.T) {
	keys := []string{"wifi|bt", "a#b", "@this", "x.y", "50%", "a=b", "!x", "<>", "w*", "q?", ":forced", "[0]", "{k}"}
	for _, k := range keys {
		t.Run(k, func(t *testing.T) {
			out, err := NormalizeSpecification(`{"` + k + `":"v"}`)
			require.NoError(t, err)
			assert.Equal(t, map[string]string{k: "v"}, ParseSpecification(out))
		})
	}

	out, err := NormalizeSpecification(`{"back\\slash":"v"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{`back\slash`: "v"}, ParseSpecification(out))
}

func TestNormalizeSpecificationCollision(t *testing.T) {
	_, err := NormalizeSpecification(`{"RAM": 8, "ram": "16GB"}`)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "field_invalid", appErr.MessageID)
	assert.Equal(t, "specification", appErr.Field)
}

func TestMerge(t *testing.T) {
	dst := map[string]interface{}{"imei": "111", "color": "red", "waterproof": "Yes"}
	Merge(dst, map[string]interface{}{
		"color":       "blue",
		"waterproof":  "n",
		"nfc":         "y",
		"storage":     "",
		"is_trade_in": true,
	})
	assert.Equal(t, map[string]interface{}{
		"imei":        "111",
		"color":       "blue",
		"nfc":         "Yes",
		"is_trade_in": true,
	}, dst)

	dst = map[string]interface{}{"waterproof": "Yes"}
	Merge(dst, map[string]interface{}{"waterproof": false, "fingerprint": true, "weight": 180})
	assert.Equal(t, map[string]interface{}{"fingerprint": "Yes", "weight": 180}, dst)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"storage", "256", "256 GB"},
		{"ram", "8", "8 GB"},
		{"screen_size", "6.1", `6.1"`},
		{"weight", "1.4", "1.4 kg"},
		{"battery", "5000", "5000 mAh"},
		{"cpu_speed", "3.2", "3.2 GHz"},
		{"storage", "1TB", "1TB"},
		{"color", "12", "12"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"/"+tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.key, tt.value))
		})
	}
}
