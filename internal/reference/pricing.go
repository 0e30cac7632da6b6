package reference

import (
	"github.com/barribox/barribox-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

var priceTable = map[enums.PackageSize]decimal.Decimal{
	enums.PackageSizeSmall:  decimal.RequireFromString("3.50"),
	enums.PackageSizeMedium: decimal.RequireFromString("5.50"),
	enums.PackageSizeLarge:  decimal.RequireFromString("8.50"),
}

var (
	// CourierFee is what a courier earns per completed delivery.
	CourierFee = decimal.RequireFromString("4.50")
	// DemoOrderPrice is the flat price of the seeded catalog.
	DemoOrderPrice = decimal.RequireFromString("4.50")
)

// PriceFor returns the estimated price of a size. Unknown sizes are priced
// as zero.
func PriceFor(size enums.PackageSize) decimal.Decimal {
	if price, ok := priceTable[size]; ok {
		return price
	}
	return decimal.Zero
}

// PriceTable returns the full size to price mapping.
func PriceTable() map[enums.PackageSize]decimal.Decimal {
	out := make(map[enums.PackageSize]decimal.Decimal, len(priceTable))
	for k, v := range priceTable {
		out[k] = v
	}
	return out
}

// Earnings computes courier earnings for a number of completed deliveries.
func Earnings(completed int) decimal.Decimal {
	return CourierFee.Mul(decimal.NewFromInt(int64(completed)))
}
