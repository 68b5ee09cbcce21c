package stock

type AdjustmentKind string

const (
	AdjustIn  AdjustmentKind = "in"
	AdjustOut AdjustmentKind = "out"
	AdjustSet AdjustmentKind = "set"
)

func (k AdjustmentKind) Valid() bool {
	return k == AdjustIn || k == AdjustOut || k == AdjustSet
}

// NewLevel applies an adjustment to current. Removing more than is on hand floors at 0.
func NewLevel(current int, kind AdjustmentKind, quantity int) int {
	switch kind {
	case AdjustIn:
		return current + quantity
	case AdjustOut:
		if n := current - quantity; n > 0 {
			return n
		}
		return 0
	case AdjustSet:
		return quantity
	default:
		return current
	}
}

type LevelState string

const (
	LevelLow    LevelState = "low"
	LevelNormal LevelState = "normal"
	LevelHigh   LevelState = "high"
)

// Level compares a stock figure with the variant's min and optional max.
func Level(stock, minQuantity int, maxQuantity *int) LevelState {
	if stock <= minQuantity {
		return LevelLow
	}
	if maxQuantity != nil && *maxQuantity > 0 && stock >= *maxQuantity {
		return LevelHigh
	}
	return LevelNormal
}
