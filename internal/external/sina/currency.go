package sina

import (
	"context"
	"fmt"
	"strconv"

	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

// watchedPairs is the fixed currency board, in display order.
var watchedPairs = []struct {
	Symbol string
	Pair   string
	Name   string
}{
	{"fx_susdcny", "USD/CNY", "美元/人民币"},
	{"fx_seurcny", "EUR/CNY", "欧元/人民币"},
	{"fx_sjpycny", "JPY/CNY", "日元/人民币"},
	{"fx_shkdcny", "HKD/CNY", "港元/人民币"},
}

// Currency feed field positions: spot rate and previous close.
const (
	fxFieldRate      = 1
	fxFieldPrevClose = 3
	fxMinFields      = 4
)

// CurrencyAdapter collects CNY cross rates from the Sina quote feed.
type CurrencyAdapter struct {
	client *Client
	logger *logger.Logger
}

// NewCurrencyAdapter creates the adapter.
func NewCurrencyAdapter(client *Client, log *logger.Logger) *CurrencyAdapter {
	return &CurrencyAdapter{
		client: client,
		logger: log.WithField("source", "sina_fx"),
	}
}

// Category identifies the adapter.
func (a *CurrencyAdapter) Category() contracts.Category {
	return contracts.CategoryCurrency
}

// Fetch requests the whole currency board in one batched call.
func (a *CurrencyAdapter) Fetch(ctx context.Context) (contracts.Payload, error) {
	symbols := make([]string, len(watchedPairs))
	for i, p := range watchedPairs {
		symbols[i] = p.Symbol
	}

	quotes, err := a.client.FetchList(ctx, symbols)
	if err != nil {
		return contracts.Payload{}, &contracts.TransientFetchError{Source: "sina_fx", Err: err}
	}

	var currencies []contracts.CurrencyQuote
	for _, p := range watchedPairs {
		fields, ok := quotes[p.Symbol]
		if !ok || len(fields) < fxMinFields {
			continue
		}
		rate, err := strconv.ParseFloat(fields[fxFieldRate], 64)
		if err != nil || rate <= 0 {
			continue
		}

		quote := contracts.CurrencyQuote{Pair: p.Pair, Name: p.Name, Rate: rate}
		if prev, err := strconv.ParseFloat(fields[fxFieldPrevClose], 64); err == nil && prev > 0 {
			quote.ChangePercent = (rate - prev) / prev * 100
		}
		currencies = append(currencies, quote)
	}

	if len(currencies) == 0 {
		return contracts.Payload{}, &contracts.TransientFetchError{
			Source: "sina_fx",
			Err:    fmt.Errorf("quote feed returned no parseable pairs"),
		}
	}

	payload := contracts.Payload{Currencies: currencies}
	if len(currencies) < len(watchedPairs) {
		a.logger.Warnf("Partial currency board: %d of %d", len(currencies), len(watchedPairs))
		return payload, contracts.ErrPartialData
	}
	return payload, nil
}
