package application

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docvision/docvision/internal/domain/model"
)

func TestMatchItems_Success(t *testing.T) {
	regos := &mockRegosClient{result: json.RawMessage(`{"ok":true,"result":[]}`)}
	svc := NewCatalogService(regos)

	entries := []MatchEntry{{Index: "1", Value: "4780000000001"}}
	raw, err := svc.MatchItems(context.Background(), "Barcode", entries)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"result":[]}`, string(raw))

	assert.Equal(t, "Item/Match", regos.operation)
	payload, ok := regos.payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Barcode", payload["type"])
	assert.Equal(t, entries, payload["data"])
}

func TestMatchItems_BadType(t *testing.T) {
	regos := &mockRegosClient{}
	svc := NewCatalogService(regos)

	var valErr *model.ValidationError
	_, err := svc.MatchItems(context.Background(), "Color", []MatchEntry{{Index: "1", Value: "x"}})
	assert.ErrorAs(t, err, &valErr)
	assert.Empty(t, regos.operation)
}

func TestMatchItems_TooManyEntries(t *testing.T) {
	regos := &mockRegosClient{}
	svc := NewCatalogService(regos)

	entries := make([]MatchEntry, MaxMatchEntries+1)
	for i := range entries {
		entries[i] = MatchEntry{Index: fmt.Sprint(i), Value: "v"}
	}

	var valErr *model.ValidationError
	_, err := svc.MatchItems(context.Background(), "Code", entries)
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, err.Error(), "250")
	assert.Empty(t, regos.operation)
}

func TestMatchItems_ExactlyAtCap(t *testing.T) {
	regos := &mockRegosClient{result: json.RawMessage(`{"ok":true,"result":[]}`)}
	svc := NewCatalogService(regos)

	entries := make([]MatchEntry, MaxMatchEntries)
	for i := range entries {
		entries[i] = MatchEntry{Index: fmt.Sprint(i), Value: "v"}
	}

	_, err := svc.MatchItems(context.Background(), "Name", entries)
	assert.NoError(t, err)
}

func TestMatchItems_EmptyEntryFields(t *testing.T) {
	svc := NewCatalogService(&mockRegosClient{})

	var valErr *model.ValidationError
	_, err := svc.MatchItems(context.Background(), "Code", []MatchEntry{{Index: "", Value: "v"}})
	assert.ErrorAs(t, err, &valErr)

	_, err = svc.MatchItems(context.Background(), "Code", []MatchEntry{{Index: "1", Value: ""}})
	assert.ErrorAs(t, err, &valErr)

	_, err = svc.MatchItems(context.Background(), "Code", nil)
	assert.ErrorAs(t, err, &valErr)
}

func TestAddItem_RequiredFields(t *testing.T) {
	regos := &mockRegosClient{result: json.RawMessage(`{"ok":true,"result":{"new_id":9}}`)}
	svc := NewCatalogService(regos)

	item := map[string]any{"group_id": 1, "vat_id": 2, "unit_id": 3, "name": "Widget"}
	_, err := svc.AddItem(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, "Item/Add", regos.operation)

	var valErr *model.ValidationError
	_, err = svc.AddItem(context.Background(), map[string]any{"group_id": 1, "vat_id": 2})
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, err.Error(), "unit_id")
}

func TestGetOperations_EmptyBodies(t *testing.T) {
	regos := &mockRegosClient{result: json.RawMessage(`{"ok":true,"result":[]}`)}
	svc := NewCatalogService(regos)

	cases := []struct {
		name      string
		call      func() (json.RawMessage, error)
		operation string
	}{
		{"partners", func() (json.RawMessage, error) { return svc.GetPartners(context.Background(), nil) }, "Partner/Get"},
		{"partner groups", func() (json.RawMessage, error) { return svc.GetPartnerGroups(context.Background(), nil) }, "PartnerGroup/Get"},
		{"stocks", func() (json.RawMessage, error) { return svc.GetStocks(context.Background(), nil) }, "Stock/Get"},
		{"currencies", func() (json.RawMessage, error) { return svc.GetCurrencies(context.Background()) }, "Currency/Get"},
		{"price types", func() (json.RawMessage, error) { return svc.GetPriceTypes(context.Background()) }, "PriceType/Get"},
		{"item groups", func() (json.RawMessage, error) { return svc.GetItemGroups(context.Background()) }, "ItemGroup/Get"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.call()
			require.NoError(t, err)
			assert.Equal(t, tc.operation, regos.operation)
			// A nil filter still serializes as {} rather than null.
			assert.NotNil(t, regos.payload)
		})
	}
}

func TestGetPartners_FilterPassthrough(t *testing.T) {
	regos := &mockRegosClient{result: json.RawMessage(`{"ok":true,"result":[]}`)}
	svc := NewCatalogService(regos)

	filter := map[string]any{"search": "OOO Test", "limit": 10}
	_, err := svc.GetPartners(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, filter, regos.payload)
}

func TestAddPartner_Passthrough(t *testing.T) {
	regos := &mockRegosClient{result: json.RawMessage(`{"ok":true,"result":{"new_id":4}}`)}
	svc := NewCatalogService(regos)

	partner := map[string]any{"name": "OOO Test", "tin": "306691996"}
	_, err := svc.AddPartner(context.Background(), partner)
	require.NoError(t, err)
	assert.Equal(t, "Partner/Add", regos.operation)
	assert.Equal(t, partner, regos.payload)
}

func TestAddDocPurchase_Success(t *testing.T) {
	regos := &mockRegosClient{result: json.RawMessage(`{"ok":true,"result":{"new_id":12}}`)}
	svc := NewCatalogService(regos)

	doc := map[string]any{
		"date":             1756500000,
		"partner_id":       4,
		"stock_id":         1,
		"currency_id":      1,
		"attached_user_id": 2,
	}
	_, err := svc.AddDocPurchase(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "DocPurchase/Add", regos.operation)
}

func TestAddDocPurchase_MissingRequired(t *testing.T) {
	svc := NewCatalogService(&mockRegosClient{})

	var valErr *model.ValidationError
	_, err := svc.AddDocPurchase(context.Background(), map[string]any{"date": 1756500000})
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, err.Error(), "partner_id")
}

func TestAddDocPurchase_TranslatesVAT(t *testing.T) {
	regos := &mockRegosClient{result: json.RawMessage(`{"ok":true,"result":{}}`)}
	svc := NewCatalogService(regos)

	cases := map[string]string{
		"Не начислять": "No",
		"В сумме":      "Exclude",
		"Сверху":       "Include",
		"Include":      "Include", // already-English values pass through
	}
	for ru, en := range cases {
		doc := map[string]any{
			"date": 1, "partner_id": 2, "stock_id": 3, "currency_id": 4, "attached_user_id": 5,
			"vat_calculation_type": ru,
		}
		_, err := svc.AddDocPurchase(context.Background(), doc)
		require.NoError(t, err)

		sent := regos.payload.(map[string]any)
		assert.Equal(t, en, sent["vat_calculation_type"])
	}
}

func TestAddPurchaseOperations_Success(t *testing.T) {
	regos := &mockRegosClient{result: json.RawMessage(`{"ok":true,"result":{"row_affected":2,"ids":[10,11]}}`)}
	svc := NewCatalogService(regos)

	ops := []map[string]any{
		{"document_id": 12, "item_id": 1, "quantity": 2, "cost": 100, "vat_value": 12},
		{"document_id": 12, "item_id": 2, "quantity": 1, "cost": 50, "vat_value": 12},
	}
	_, err := svc.AddPurchaseOperations(context.Background(), ops)
	require.NoError(t, err)
	assert.Equal(t, "PurchaseOperation/Add", regos.operation)
	// The array travels as-is; no object wrapper is added.
	assert.Equal(t, ops, regos.payload)
}

func TestAddPurchaseOperations_Validation(t *testing.T) {
	svc := NewCatalogService(&mockRegosClient{})

	var valErr *model.ValidationError
	_, err := svc.AddPurchaseOperations(context.Background(), nil)
	assert.ErrorAs(t, err, &valErr)

	ops := []map[string]any{
		{"document_id": 12, "item_id": 1, "quantity": 2, "cost": 100, "vat_value": 12},
		{"document_id": 12, "item_id": 2},
	}
	_, err = svc.AddPurchaseOperations(context.Background(), ops)
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, err.Error(), "operation 1")
}

func TestCatalog_ProviderErrorPassthrough(t *testing.T) {
	regos := &mockRegosClient{err: &model.ProviderError{Kind: model.ProviderRejected, Code: "E1"}}
	svc := NewCatalogService(regos)

	_, err := svc.GetCurrencies(context.Background())
	var provErr *model.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, model.ProviderRejected, provErr.Kind)
}
