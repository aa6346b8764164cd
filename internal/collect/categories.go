package collect

import (
	"time"

	"github.com/zhenliu/marketbrief/internal/contracts"
)

// policyTable is the fixed per-category collection policy. It is static
// configuration: nothing mutates it at runtime and there is no per-call
// override.
var policyTable = map[contracts.Category]Policy{
	contracts.CategoryIndex:     {Priority: contracts.PriorityHigh, PerAttemptTimeout: 10 * time.Second, MaxAttempts: 3},
	contracts.CategoryCurrency:  {Priority: contracts.PriorityHigh, PerAttemptTimeout: 10 * time.Second, MaxAttempts: 3},
	contracts.CategoryCommodity: {Priority: contracts.PriorityMedium, PerAttemptTimeout: 15 * time.Second, MaxAttempts: 2},
	contracts.CategoryBond:      {Priority: contracts.PriorityLow, PerAttemptTimeout: 15 * time.Second, MaxAttempts: 2},
	contracts.CategoryFutures:   {Priority: contracts.PriorityLow, PerAttemptTimeout: 15 * time.Second, MaxAttempts: 2},
	contracts.CategoryNews:      {Priority: contracts.PriorityLow, PerAttemptTimeout: 15 * time.Second, MaxAttempts: 2},
}

// PolicyFor returns the fixed policy for a category. Unknown categories
// get the most conservative tier.
func PolicyFor(category contracts.Category) Policy {
	if p, ok := policyTable[category]; ok {
		return p
	}
	return Policy{Priority: contracts.PriorityLow, PerAttemptTimeout: 15 * time.Second, MaxAttempts: 2}
}
