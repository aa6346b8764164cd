package basis

import (
	"time"

	"github.com/zhenliu/marketbrief/internal/calendar"
	"github.com/zhenliu/marketbrief/internal/contracts"
)

// spotIndexFor maps an index futures product to its underlying index code.
var spotIndexFor = map[string]string{
	"IF": "sh000300", // CSI 300
	"IC": "sh000905", // CSI 500
	"IM": "sh000852", // CSI 1000
	"IH": "sh000016", // SSE 50
}

// Pair joins futures quotes with their underlying spot quotes to build
// analyzer inputs. Contracts whose underlying index is absent from the
// spot data are skipped, not defaulted.
func Pair(futures []contracts.FuturesQuote, indices []contracts.IndexQuote, asOf time.Time) []Input {
	spots := make(map[string]contracts.IndexQuote, len(indices))
	for _, q := range indices {
		spots[q.Code] = q
	}

	inputs := make([]Input, 0, len(futures))
	for _, f := range futures {
		code, ok := spotIndexFor[f.Product]
		if !ok {
			continue
		}
		spot, ok := spots[code]
		if !ok {
			continue
		}

		expiry, err := time.Parse("2006-01-02", f.Expiry)
		if err != nil {
			// Fall back to the calendar rule when the feed omits
			// the expiry date.
			expiry = calendar.ContractExpiry(f.Month, asOf)
		}

		inputs = append(inputs, Input{
			Contract:     f.Contract,
			Product:      f.Product,
			IndexName:    spot.Name,
			SpotPrice:    spot.Price,
			FuturesPrice: f.Price,
			Expiry:       expiry,
		})
	}
	return inputs
}
