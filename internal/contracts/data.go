package contracts

import "time"

// Category identifies one kind of market data with its own collection policy.
type Category string

const (
	CategoryIndex     Category = "index"
	CategoryCommodity Category = "commodity"
	CategoryCurrency  Category = "currency"
	CategoryBond      Category = "bond"
	CategoryFutures   Category = "futures"
	CategoryNews      Category = "news"
)

// Priority orders categories for collection and defect reporting.
// Lower values run and report first.
type Priority int

const (
	PriorityHigh Priority = iota
	PriorityMedium
	PriorityLow
)

// String returns the priority name.
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}

// categoryPriorities is the fixed priority assignment per category.
var categoryPriorities = map[Category]Priority{
	CategoryIndex:     PriorityHigh,
	CategoryCurrency:  PriorityHigh,
	CategoryCommodity: PriorityMedium,
	CategoryBond:      PriorityLow,
	CategoryFutures:   PriorityLow,
	CategoryNews:      PriorityLow,
}

// Priority returns the fixed collection priority of the category.
func (c Category) Priority() Priority {
	if p, ok := categoryPriorities[c]; ok {
		return p
	}
	return PriorityLow
}

// Categories returns every known category in deterministic order:
// priority first, then name. Snapshot assembly and defect ordering both
// depend on this order being stable.
func Categories() []Category {
	return []Category{
		CategoryCurrency,
		CategoryIndex,
		CategoryCommodity,
		CategoryBond,
		CategoryFutures,
		CategoryNews,
	}
}

// Status is the terminal state of one category's collection.
type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// IndexQuote is one equity index quote.
type IndexQuote struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
	Currency      string  `json:"currency"`
}

// CommodityQuote is one commodity price point.
type CommodityQuote struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Unit     string  `json:"unit"`
	Currency string  `json:"currency"`
}

// CurrencyQuote is one currency pair quote.
type CurrencyQuote struct {
	Pair          string  `json:"pair"`
	Name          string  `json:"name"`
	Rate          float64 `json:"rate"`
	ChangePercent float64 `json:"change_percent"`
}

// BondYield is one point on a government yield curve.
type BondYield struct {
	Name      string  `json:"name"`
	TermYears float64 `json:"term_years"`
	Yield     float64 `json:"yield"` // percent
}

// FuturesQuote is one stock index futures contract quote.
type FuturesQuote struct {
	Product       string  `json:"product"`  // IF, IC, IM, IH
	Name          string  `json:"name"`     // underlying index name
	Contract      string  `json:"contract"` // e.g. IF2609
	Month         string  `json:"month"`    // current, next_month, next_quarter
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
	Expiry        string  `json:"expiry"` // ISO date
}

// NewsItem is one classified headline.
type NewsItem struct {
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Source     string    `json:"source"`
	Category   string    `json:"category"`
	Importance string    `json:"importance"` // high, medium, low
	Timestamp  time.Time `json:"timestamp"`
}

// Payload carries one category's structured data. Only the slice matching
// the result's category is populated; the rest stay nil and are omitted
// from serialization.
type Payload struct {
	Indices     []IndexQuote     `json:"indices,omitempty"`
	Commodities []CommodityQuote `json:"commodities,omitempty"`
	Currencies  []CurrencyQuote  `json:"currencies,omitempty"`
	Bonds       []BondYield      `json:"bonds,omitempty"`
	Futures     []FuturesQuote   `json:"futures,omitempty"`
	News        []NewsItem       `json:"news,omitempty"`
}

// IsEmpty reports whether the payload holds no data at all.
func (p Payload) IsEmpty() bool {
	return len(p.Indices) == 0 &&
		len(p.Commodities) == 0 &&
		len(p.Currencies) == 0 &&
		len(p.Bonds) == 0 &&
		len(p.Futures) == 0 &&
		len(p.News) == 0
}

// CollectionResult is the terminal outcome of one category's collection.
// Immutable once produced by the policy wrapper.
type CollectionResult struct {
	Category Category      `json:"category"`
	Status   Status        `json:"status"`
	Payload  Payload       `json:"payload"`
	Attempts int           `json:"attempts"`
	Latency  time.Duration `json:"latency"`
	Error    string        `json:"error,omitempty"`
}

// Defect is one human-readable quality finding.
type Defect struct {
	Category Category `json:"category"`
	Message  string   `json:"message"`
}

// BasisRecord is the derived annualized basis for one futures contract.
// Recomputed each run, persisted only inside a MarketSnapshot.
type BasisRecord struct {
	Contract            string  `json:"contract"`
	Product             string  `json:"product"`
	IndexName           string  `json:"index_name"`
	SpotPrice           float64 `json:"spot_price"`
	FuturesPrice        float64 `json:"futures_price"`
	ExpiryDate          string  `json:"expiry_date"`
	TradingDaysToExpiry int     `json:"trading_days_to_expiry"`
	Basis               float64 `json:"basis"`
	BasisPercent        float64 `json:"basis_percent"`
	AnnualizedBasisRate float64 `json:"annualized_basis_rate"`
}

// QualityBar is the fixed pass/fail threshold for the composite score.
const QualityBar = 70

// MarketSnapshot is the daily aggregate: exactly one CollectionResult per
// known category, the composite quality verdict, and derived basis records.
// Immutable after assembly; re-running a date replaces the whole snapshot.
type MarketSnapshot struct {
	Date           string                        `json:"date"` // ISO calendar date
	Results        map[Category]CollectionResult `json:"results"`
	QualityScore   int                           `json:"quality_score"`
	QualityDefects []Defect                      `json:"quality_defects"`
	Basis          []BasisRecord                 `json:"basis"`
	CollectedAt    time.Time                     `json:"collected_at"`
}

// MeetsQualityBar reports whether the snapshot passed the quality gate.
// A failing snapshot is still persisted; the gate only flags it.
func (s MarketSnapshot) MeetsQualityBar() bool {
	return s.QualityScore >= QualityBar
}

// Result returns the collection result for a category. The bool is false
// only for unknown categories: an assembled snapshot always carries one
// result per known category, even on total failure.
func (s MarketSnapshot) Result(c Category) (CollectionResult, bool) {
	r, ok := s.Results[c]
	return r, ok
}
