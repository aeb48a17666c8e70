package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"grocer/internal/grocy"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGrocy is a minimal Grocy API double shared by the handler tests. It
// records write requests so tests can assert on the payloads the handlers
// build.
type fakeGrocy struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]interface{}
}

func newFakeGrocy(t *testing.T) *fakeGrocy {
	t.Helper()

	f := &fakeGrocy{}
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(v); err != nil {
			t.Errorf("encode fixture: %v", err)
		}
	}

	record := func(r *http.Request) {
		var body map[string]interface{}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: body})
		f.mu.Unlock()
	}

	mux.HandleFunc("GET /api/objects/products", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]interface{}{
			{"id": "1", "name": "Oat Milk", "location_id": "2", "qu_id_stock": "3"},
			{"id": "2", "name": "Whole Milk", "location_id": "2", "qu_id_stock": "3"},
			{"id": "3", "name": "Bread", "location_id": "1", "qu_id_stock": "4"},
		})
	})
	mux.HandleFunc("GET /api/stock", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]interface{}{
			{"product_id": "1", "amount": "4"},
			{"product_id": "3", "amount": "1"},
		})
	})
	mux.HandleFunc("GET /api/objects/locations", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]interface{}{
			{"id": "1", "name": "Pantry"},
			{"id": "2", "name": "Fridge"},
		})
	})
	mux.HandleFunc("GET /api/objects/quantity_units", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]interface{}{{"id": "3", "name": "Liter"}, {"id": "4", "name": "Loaf"}})
	})
	mux.HandleFunc("GET /api/objects/product_groups", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]interface{}{{"id": "1", "name": "Dairy"}})
	})
	mux.HandleFunc("GET /api/objects/shopping_lists", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]interface{}{{"id": "1", "name": "Weekly"}})
	})
	mux.HandleFunc("GET /api/objects/shopping_list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]interface{}{
			{"id": "10", "shopping_list_id": "1", "product_id": "1", "amount": "2"},
			{"id": "11", "shopping_list_id": "2", "product_id": "3", "amount": "1"},
		})
	})
	mux.HandleFunc("GET /api/stock/products/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"product": map[string]interface{}{"id": "1"}, "stock_amount": "4"})
	})
	mux.HandleFunc("GET /api/stock/products/3", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"product": map[string]interface{}{"id": "3"}, "stock_amount": 0})
	})
	mux.HandleFunc("POST /api/stock/products/{id}/add", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		if r.PathValue("id") == "99" {
			http.Error(w, `{"error_message":"product does not exist"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, []map[string]interface{}{{"id": 100}})
	})
	mux.HandleFunc("POST /api/stock/products/{id}/consume", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		writeJSON(w, []map[string]interface{}{{"id": 101}})
	})
	mux.HandleFunc("POST /api/stock/products/{id}/inventory", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		writeJSON(w, []map[string]interface{}{{"id": 102}})
	})
	mux.HandleFunc("DELETE /api/objects/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/objects/shopping_list", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		writeJSON(w, map[string]interface{}{"created_object_id": "12"})
	})
	mux.HandleFunc("DELETE /api/objects/shopping_list/{id}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/stock/shoppinglist/add-missing-products", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/stock/volatile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"missing_products": []interface{}{map[string]interface{}{"id": "2"}}})
	})
	mux.HandleFunc("GET /api/system/info", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"grocy_version": map[string]interface{}{"Version": "4.0.3"}})
	})
	mux.HandleFunc("GET /api/system/db-changed-time", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"changed_time": "2024-05-01 10:00:00"})
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGrocy) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

type staticTokens struct{}

func (staticTokens) Token(ctx context.Context) (string, error) { return "session-token", nil }
func (staticTokens) Invalidate()                               {}

func newTestServer(t *testing.T) (*GrocyServer, *fakeGrocy) {
	t.Helper()

	fake := newFakeGrocy(t)
	client := grocy.NewClient(grocy.ClientOptions{
		BaseURL:        fake.server.URL + "/api",
		APIKey:         "test-key",
		Tokens:         staticTokens{},
		RequestTimeout: 5 * time.Second,
		RetryAttempts:  1,
	})
	return New(grocy.NewRepository(client), Config{Host: "localhost", Port: 8010, Transport: "sse"}), fake
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: struct {
			Name      string    `json:"name"`
			Arguments any       `json:"arguments,omitempty"`
			Meta      *mcp.Meta `json:"_meta,omitempty"`
		}{
			Arguments: args,
		},
	}
}

// decodeEnvelope parses the ToolResponse JSON out of a successful tool
// result.
func decodeEnvelope(t *testing.T, result *mcp.CallToolResult) ToolResponse {
	t.Helper()

	require.False(t, result.IsError)
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)

	var response ToolResponse
	require.NoError(t, json.Unmarshal([]byte(text.Text), &response))
	return response
}

func TestSearchProductsTool(t *testing.T) {
	s, _ := newTestServer(t)

	t.Run("matches case-insensitively", func(t *testing.T) {
		result, err := s.handleSearchProducts(context.Background(), callRequest(map[string]interface{}{"query": "milk"}))
		require.NoError(t, err)

		response := decodeEnvelope(t, result)
		assert.Equal(t, float64(2), response.Data["count"])
		assert.Contains(t, response.Summary, "milk")
		assert.Contains(t, response.Next, "add_stock")
	})

	t.Run("no matches suggests create_product", func(t *testing.T) {
		result, err := s.handleSearchProducts(context.Background(), callRequest(map[string]interface{}{"query": "caviar"}))
		require.NoError(t, err)

		response := decodeEnvelope(t, result)
		assert.Equal(t, float64(0), response.Data["count"])
		assert.Contains(t, response.Next, "create_product")
	})

	t.Run("missing query is a tool error", func(t *testing.T) {
		result, err := s.handleSearchProducts(context.Background(), callRequest(map[string]interface{}{}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestAddStockToolBatch(t *testing.T) {
	s, fake := newTestServer(t)

	items := []interface{}{
		map[string]interface{}{"product_id": float64(1), "amount": float64(2), "best_before_date": "2026-09-01"},
		map[string]interface{}{"product_id": float64(3), "amount": float64(-1)},
		map[string]interface{}{"amount": float64(1)},
		map[string]interface{}{"product_id": float64(99), "amount": float64(1)},
	}

	result, err := s.handleAddStock(context.Background(), callRequest(map[string]interface{}{"items": items}))
	require.NoError(t, err)

	response := decodeEnvelope(t, result)
	added := response.Data["added"].([]interface{})
	failed := response.Data["failed"].([]interface{})
	assert.Len(t, added, 1)
	assert.Len(t, failed, 3)
	assert.Contains(t, response.Summary, "1 of 4")

	// Only the valid item and the upstream-rejected one reach Grocy.
	var addCalls []recordedRequest
	for _, req := range fake.recorded() {
		if req.Method == http.MethodPost {
			addCalls = append(addCalls, req)
		}
	}
	require.Len(t, addCalls, 2)
	assert.Equal(t, "/api/stock/products/1/add", addCalls[0].Path)
	assert.Equal(t, "2026-09-01", addCalls[0].Body["best_before_date"])
	assert.Equal(t, "purchase", addCalls[0].Body["transaction_type"])
}

func TestAddStockToolRejectsEmptyBatch(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleAddStock(context.Background(), callRequest(map[string]interface{}{"items": []interface{}{}}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestConsumeStockTool(t *testing.T) {
	s, fake := newTestServer(t)

	result, err := s.handleConsumeStock(context.Background(), callRequest(map[string]interface{}{
		"product_id": float64(1),
		"amount":     float64(1.5),
		"spoiled":    true,
	}))
	require.NoError(t, err)

	response := decodeEnvelope(t, result)
	assert.Contains(t, response.Summary, "Spoiled")

	requests := fake.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, "/api/stock/products/1/consume", requests[0].Path)
	assert.Equal(t, true, requests[0].Body["spoiled"])
	assert.Equal(t, float64(1.5), requests[0].Body["amount"])
}

func TestConsumeStockToolValidation(t *testing.T) {
	s, fake := newTestServer(t)

	result, err := s.handleConsumeStock(context.Background(), callRequest(map[string]interface{}{
		"product_id": float64(1),
		"amount":     float64(0),
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Empty(t, fake.recorded())
}

func TestSetInventoryLevelsTool(t *testing.T) {
	s, fake := newTestServer(t)

	result, err := s.handleSetInventoryLevels(context.Background(), callRequest(map[string]interface{}{
		"product_id": float64(1),
		"new_amount": float64(6),
		"note":       "pantry recount",
	}))
	require.NoError(t, err)

	response := decodeEnvelope(t, result)
	assert.Contains(t, response.Summary, "product 1")

	requests := fake.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, "/api/stock/products/1/inventory", requests[0].Path)
	assert.Equal(t, float64(6), requests[0].Body["new_amount"])
	assert.Equal(t, "pantry recount", requests[0].Body["note"])
}

func TestDeleteProductTool(t *testing.T) {
	t.Run("refuses when stock remains", func(t *testing.T) {
		s, fake := newTestServer(t)

		result, err := s.handleDeleteProduct(context.Background(), callRequest(map[string]interface{}{
			"product_id": float64(1),
		}))
		require.NoError(t, err)

		response := decodeEnvelope(t, result)
		assert.Contains(t, response.Summary, "cleanup_stock")
		assert.Equal(t, float64(4), response.Data["stock_amount"])
		assert.Empty(t, fake.recorded())
	})

	t.Run("cleanup consumes then deletes", func(t *testing.T) {
		s, fake := newTestServer(t)

		result, err := s.handleDeleteProduct(context.Background(), callRequest(map[string]interface{}{
			"product_id":    float64(1),
			"cleanup_stock": true,
		}))
		require.NoError(t, err)

		response := decodeEnvelope(t, result)
		assert.Contains(t, response.Summary, "Deleted product 1")
		assert.Equal(t, true, response.Data["cleaned_stock"])

		requests := fake.recorded()
		require.Len(t, requests, 2)
		assert.Equal(t, "/api/stock/products/1/consume", requests[0].Path)
		assert.Equal(t, true, requests[0].Body["spoiled"])
		assert.Equal(t, float64(4), requests[0].Body["amount"])
		assert.Equal(t, http.MethodDelete, requests[1].Method)
		assert.Equal(t, "/api/objects/products/1", requests[1].Path)
	})

	t.Run("deletes directly when stock is empty", func(t *testing.T) {
		s, fake := newTestServer(t)

		result, err := s.handleDeleteProduct(context.Background(), callRequest(map[string]interface{}{
			"product_id": float64(3),
		}))
		require.NoError(t, err)

		response := decodeEnvelope(t, result)
		assert.Contains(t, response.Summary, "Deleted product 3")

		requests := fake.recorded()
		require.Len(t, requests, 1)
		assert.Equal(t, http.MethodDelete, requests[0].Method)
	})
}

func TestUpdateShoppingListTool(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		s, fake := newTestServer(t)

		result, err := s.handleUpdateShoppingList(context.Background(), callRequest(map[string]interface{}{
			"action":     "add",
			"list_id":    float64(1),
			"product_id": float64(2),
			"amount":     float64(3),
			"note":       "low fat",
		}))
		require.NoError(t, err)

		response := decodeEnvelope(t, result)
		assert.Contains(t, response.Summary, "Added")

		requests := fake.recorded()
		require.Len(t, requests, 1)
		assert.Equal(t, "/api/objects/shopping_list", requests[0].Path)
		assert.Equal(t, float64(2), requests[0].Body["product_id"])
		assert.Equal(t, float64(1), requests[0].Body["shopping_list_id"])
		assert.Equal(t, "low fat", requests[0].Body["note"])
	})

	t.Run("remove", func(t *testing.T) {
		s, fake := newTestServer(t)

		result, err := s.handleUpdateShoppingList(context.Background(), callRequest(map[string]interface{}{
			"action":     "remove",
			"list_id":    float64(1),
			"product_id": float64(10),
			"amount":     float64(1),
		}))
		require.NoError(t, err)

		response := decodeEnvelope(t, result)
		assert.Contains(t, response.Summary, "Removed item 10")

		requests := fake.recorded()
		require.Len(t, requests, 1)
		assert.Equal(t, http.MethodDelete, requests[0].Method)
		assert.Equal(t, "/api/objects/shopping_list/10", requests[0].Path)
	})

	t.Run("unknown action", func(t *testing.T) {
		s, _ := newTestServer(t)

		result, err := s.handleUpdateShoppingList(context.Background(), callRequest(map[string]interface{}{
			"action":     "replace",
			"list_id":    float64(1),
			"product_id": float64(2),
			"amount":     float64(1),
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestGetShoppingListItemsTool(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleGetShoppingListItems(context.Background(), callRequest(map[string]interface{}{
		"list_id": float64(1),
	}))
	require.NoError(t, err)

	response := decodeEnvelope(t, result)
	assert.Equal(t, float64(1), response.Data["count"])
}

func TestBuildShoppingListFromVolatileStockTool(t *testing.T) {
	s, fake := newTestServer(t)

	result, err := s.handleBuildShoppingListFromVolatileStock(context.Background(), callRequest(nil))
	require.NoError(t, err)

	response := decodeEnvelope(t, result)
	assert.Contains(t, response.Summary, "missing products")
	assert.NotNil(t, response.Data["volatile_stock"])

	requests := fake.recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, "/api/stock/shoppinglist/add-missing-products", requests[0].Path)
}

func TestInspectEntityTool(t *testing.T) {
	s, _ := newTestServer(t)

	t.Run("reads allowlisted entity", func(t *testing.T) {
		result, err := s.handleInspectEntity(context.Background(), callRequest(map[string]interface{}{
			"entity": "locations",
		}))
		require.NoError(t, err)

		response := decodeEnvelope(t, result)
		assert.Equal(t, float64(2), response.Data["count"])
		assert.Equal(t, float64(inspectDefaultLimit), response.Data["limit"])
	})

	t.Run("rejects entities outside the allowlist", func(t *testing.T) {
		result, err := s.handleInspectEntity(context.Background(), callRequest(map[string]interface{}{
			"entity": "users",
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("clamps the limit", func(t *testing.T) {
		result, err := s.handleInspectEntity(context.Background(), callRequest(map[string]interface{}{
			"entity": "products",
			"limit":  float64(10000),
		}))
		require.NoError(t, err)

		response := decodeEnvelope(t, result)
		assert.Equal(t, float64(inspectMaxLimit), response.Data["limit"])
	})
}

func TestGetSystemStatusTool(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleGetSystemStatus(context.Background(), callRequest(nil))
	require.NoError(t, err)

	response := decodeEnvelope(t, result)
	assert.Contains(t, response.Summary, "reachable")
	assert.NotNil(t, response.Data["system_info"])
	assert.NotNil(t, response.Data["db_changed_time"])
}

func TestGetMasterDataOverviewTool(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.handleGetMasterDataOverview(context.Background(), callRequest(nil))
	require.NoError(t, err)

	response := decodeEnvelope(t, result)
	assert.Contains(t, response.Summary, "3 products")
	assert.Contains(t, response.Summary, "2 locations")
}

func TestProductsResource(t *testing.T) {
	s, _ := newTestServer(t)

	request := mcp.ReadResourceRequest{}
	request.Params.URI = "grocy://products"

	contents, err := s.readProductsResource(context.Background(), request)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "grocy://products", text.URI)
	assert.Equal(t, "application/json", text.MIMEType)

	var products []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &products))
	assert.Len(t, products, 3)
}

func TestMasterDataResource(t *testing.T) {
	s, _ := newTestServer(t)

	request := mcp.ReadResourceRequest{}
	request.Params.URI = "grocy://master-data"

	contents, err := s.readMasterDataResource(context.Background(), request)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)

	var overview map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &overview))
	assert.Contains(t, overview, "products")
	assert.Contains(t, overview, "locations")
	assert.Contains(t, overview, "quantity_units")
	assert.Contains(t, overview, "product_groups")
}
