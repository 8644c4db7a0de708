package application

import (
	"context"
	"encoding/json"

	"github.com/docvision/docvision/internal/domain/model"
	"github.com/docvision/docvision/internal/domain/port/driven"
)

// MaxMatchEntries caps a single product matching request.
const MaxMatchEntries = 250

// matchTypes enumerates the accepted matching keys.
var matchTypes = map[string]bool{
	"Code":    true,
	"Name":    true,
	"Articul": true,
	"Barcode": true,
}

// vatRuToEn translates the Russian VAT calculation labels accepted on
// the API surface to the English values the ERP expects.
var vatRuToEn = map[string]string{
	"Не начислять": "No",
	"В сумме":      "Exclude",
	"Сверху":       "Include",
}

// MatchEntry is one product in a matching request.
type MatchEntry struct {
	Index string `json:"index"`
	Value string `json:"value"`
}

// CatalogService validates ERP requests and forwards them to REGOS.
// Request bodies stay loosely typed on purpose: REGOS accepts many
// optional fields and the gateway only enforces the documented required
// ones, passing everything else through untouched.
type CatalogService struct {
	regos driven.RegosClient
}

// NewCatalogService creates a CatalogService with the required dependencies.
func NewCatalogService(regos driven.RegosClient) *CatalogService {
	return &CatalogService{regos: regos}
}

// MatchItems resolves products to ERP item IDs by the given key. At
// most MaxMatchEntries entries per request; every entry needs a
// non-empty index and value.
func (s *CatalogService) MatchItems(ctx context.Context, matchType string, entries []MatchEntry) (json.RawMessage, error) {
	if !matchTypes[matchType] {
		return nil, model.NewValidationError("match type must be one of Code, Name, Articul, Barcode; got %q", matchType)
	}
	if len(entries) == 0 {
		return nil, model.NewValidationError("at least one product is required")
	}
	if len(entries) > MaxMatchEntries {
		return nil, model.NewValidationError("maximum %d products allowed per request", MaxMatchEntries)
	}
	for i, e := range entries {
		if e.Index == "" || e.Value == "" {
			return nil, model.NewValidationError("product %d must have index and value", i)
		}
	}

	return s.regos.Call(ctx, "Item/Match", map[string]any{
		"type": matchType,
		"data": entries,
	})
}

// AddItem creates an item. group_id, vat_id and unit_id are required;
// the rest of the payload passes through as-is.
func (s *CatalogService) AddItem(ctx context.Context, item map[string]any) (json.RawMessage, error) {
	if err := requireFields(item, "group_id", "vat_id", "unit_id"); err != nil {
		return nil, err
	}
	return s.regos.Call(ctx, "Item/Add", item)
}

// AddPartner creates a counterparty. All fields are optional on the ERP
// side, so the payload passes through untouched.
func (s *CatalogService) AddPartner(ctx context.Context, partner map[string]any) (json.RawMessage, error) {
	return s.regos.Call(ctx, "Partner/Add", nonNil(partner))
}

// GetPartners lists counterparties matching the given filter.
func (s *CatalogService) GetPartners(ctx context.Context, filter map[string]any) (json.RawMessage, error) {
	return s.regos.Call(ctx, "Partner/Get", nonNil(filter))
}

// GetPartnerGroups lists counterparty groups matching the given filter.
func (s *CatalogService) GetPartnerGroups(ctx context.Context, filter map[string]any) (json.RawMessage, error) {
	return s.regos.Call(ctx, "PartnerGroup/Get", nonNil(filter))
}

// GetStocks lists warehouses matching the given filter.
func (s *CatalogService) GetStocks(ctx context.Context, filter map[string]any) (json.RawMessage, error) {
	return s.regos.Call(ctx, "Stock/Get", nonNil(filter))
}

// GetCurrencies lists the ERP currencies.
func (s *CatalogService) GetCurrencies(ctx context.Context) (json.RawMessage, error) {
	return s.regos.Call(ctx, "Currency/Get", map[string]any{})
}

// GetPriceTypes lists the ERP price types.
func (s *CatalogService) GetPriceTypes(ctx context.Context) (json.RawMessage, error) {
	return s.regos.Call(ctx, "PriceType/Get", map[string]any{})
}

// GetItemGroups lists the ERP item groups.
func (s *CatalogService) GetItemGroups(ctx context.Context) (json.RawMessage, error) {
	return s.regos.Call(ctx, "ItemGroup/Get", map[string]any{})
}

// AddDocPurchase creates a purchase document. The documented required
// fields are enforced and vat_calculation_type is translated from the
// Russian labels to the English enum the ERP expects.
func (s *CatalogService) AddDocPurchase(ctx context.Context, doc map[string]any) (json.RawMessage, error) {
	if err := requireFields(doc, "date", "partner_id", "stock_id", "currency_id", "attached_user_id"); err != nil {
		return nil, err
	}

	if vat, ok := doc["vat_calculation_type"].(string); ok {
		if en, known := vatRuToEn[vat]; known {
			doc["vat_calculation_type"] = en
		}
	}

	return s.regos.Call(ctx, "DocPurchase/Add", doc)
}

// AddPurchaseOperations creates receipt operations for a purchase
// document. The ERP takes an array body; each operation needs the
// documented required fields.
func (s *CatalogService) AddPurchaseOperations(ctx context.Context, operations []map[string]any) (json.RawMessage, error) {
	if len(operations) == 0 {
		return nil, model.NewValidationError("at least one operation is required")
	}
	for i, op := range operations {
		if err := requireFields(op, "document_id", "item_id", "quantity", "cost", "vat_value"); err != nil {
			return nil, model.NewValidationError("operation %d: %s", i, err.Error())
		}
	}

	return s.regos.Call(ctx, "PurchaseOperation/Add", operations)
}

// requireFields checks that every named key is present and non-nil.
func requireFields(m map[string]any, keys ...string) error {
	for _, key := range keys {
		if v, ok := m[key]; !ok || v == nil {
			return model.NewValidationError("field %q is required", key)
		}
	}
	return nil
}

// nonNil substitutes an empty object for a nil map so the ERP always
// receives a JSON object, never null.
func nonNil(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
