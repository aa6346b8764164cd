package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zhenliu/marketbrief/internal/contracts"
)

// RecordType tags every persisted daily record.
const RecordType = "macro"

// categoryRecord is one category's persisted slice of the record: the
// terminal collection outcome plus its payload.
type categoryRecord struct {
	Status    contracts.Status  `json:"status"`
	Attempts  int               `json:"attempts"`
	LatencyMS int64             `json:"latency_ms"`
	Error     string            `json:"error,omitempty"`
	Payload   contracts.Payload `json:"payload"`
}

// recordData is the data section of the persisted envelope. Category keys
// sit alongside the derived fields so a record stays readable on its own.
type recordData struct {
	Index     *categoryRecord `json:"index,omitempty"`
	Commodity *categoryRecord `json:"commodity,omitempty"`
	Currency  *categoryRecord `json:"currency,omitempty"`
	Bond      *categoryRecord `json:"bond,omitempty"`
	Futures   *categoryRecord `json:"futures,omitempty"`
	News      *categoryRecord `json:"news,omitempty"`

	Basis          []contracts.BasisRecord `json:"basis,omitempty"`
	QualityScore   int                     `json:"quality_score"`
	QualityDefects []contracts.Defect      `json:"quality_defects,omitempty"`
}

// record is the persisted envelope for one daily snapshot.
type record struct {
	Date      string     `json:"date"`
	Type      string     `json:"type"`
	Timestamp time.Time  `json:"timestamp"`
	Data      recordData `json:"data"`
}

func (d *recordData) slot(category contracts.Category) **categoryRecord {
	switch category {
	case contracts.CategoryIndex:
		return &d.Index
	case contracts.CategoryCommodity:
		return &d.Commodity
	case contracts.CategoryCurrency:
		return &d.Currency
	case contracts.CategoryBond:
		return &d.Bond
	case contracts.CategoryFutures:
		return &d.Futures
	case contracts.CategoryNews:
		return &d.News
	}
	return nil
}

// Encode serializes a snapshot into the persisted envelope.
func Encode(snap contracts.MarketSnapshot) ([]byte, error) {
	rec := record{
		Date:      snap.Date,
		Type:      RecordType,
		Timestamp: snap.CollectedAt,
		Data: recordData{
			Basis:          snap.Basis,
			QualityScore:   snap.QualityScore,
			QualityDefects: snap.QualityDefects,
		},
	}

	for category, result := range snap.Results {
		slot := rec.Data.slot(category)
		if slot == nil {
			return nil, fmt.Errorf("unknown category %q in snapshot", category)
		}
		*slot = &categoryRecord{
			Status:    result.Status,
			Attempts:  result.Attempts,
			LatencyMS: result.Latency.Milliseconds(),
			Error:     result.Error,
			Payload:   result.Payload,
		}
	}

	return json.MarshalIndent(rec, "", "  ")
}

// Decode rebuilds a snapshot from its persisted envelope.
func Decode(data []byte) (contracts.MarketSnapshot, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return contracts.MarketSnapshot{}, fmt.Errorf("decode snapshot record: %w", err)
	}
	if rec.Type != RecordType {
		return contracts.MarketSnapshot{}, fmt.Errorf("unexpected record type %q", rec.Type)
	}

	snap := contracts.MarketSnapshot{
		Date:           rec.Date,
		Results:        make(map[contracts.Category]contracts.CollectionResult),
		QualityScore:   rec.Data.QualityScore,
		QualityDefects: rec.Data.QualityDefects,
		Basis:          rec.Data.Basis,
		CollectedAt:    rec.Timestamp,
	}

	for _, category := range contracts.Categories() {
		slot := rec.Data.slot(category)
		if slot == nil || *slot == nil {
			continue
		}
		cr := **slot
		snap.Results[category] = contracts.CollectionResult{
			Category: category,
			Status:   cr.Status,
			Payload:  cr.Payload,
			Attempts: cr.Attempts,
			Latency:  time.Duration(cr.LatencyMS) * time.Millisecond,
			Error:    cr.Error,
		}
	}

	return snap, nil
}
