package grocy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Repository exposes the Grocy API surface used by the MCP tools. Payloads
// pass through untouched except where a tool needs structured fields
// (products, locations).
type Repository struct {
	client *Client
}

// NewRepository creates a repository backed by the given client.
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

// System helpers

// SystemInfo returns Grocy system information (version, features, etc.).
func (r *Repository) SystemInfo(ctx context.Context) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodGet, "system/info", nil, nil)
}

// DBChangedTime returns the last database changed time.
func (r *Repository) DBChangedTime(ctx context.Context) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodGet, "system/db-changed-time", nil, nil)
}

// SystemConfig returns all Grocy config settings.
func (r *Repository) SystemConfig(ctx context.Context) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodGet, "system/config", nil, nil)
}

// Product helpers

// Products returns all products with basic metadata, joined with current
// stock amounts from the stock overview.
func (r *Repository) Products(ctx context.Context) ([]ProductCandidate, error) {
	rawProducts, err := r.client.Do(ctx, http.MethodGet, "objects/products", nil, nil)
	if err != nil {
		return nil, err
	}
	products, err := decodeRows(rawProducts)
	if err != nil {
		return nil, fmt.Errorf("could not decode product list: %w", err)
	}

	rawStock, err := r.client.Do(ctx, http.MethodGet, "stock", nil, nil)
	if err != nil {
		return nil, err
	}
	stockRows, err := decodeRows(rawStock)
	if err != nil {
		return nil, fmt.Errorf("could not decode stock overview: %w", err)
	}

	stockByProduct := make(map[int]float64, len(stockRows))
	for _, entry := range stockRows {
		pid, ok := coerceInt(entry["product_id"])
		if !ok {
			continue
		}
		amount, ok := coerceFloat(entry["amount"])
		if !ok {
			amount = 0
		}
		stockByProduct[pid] = amount
	}

	result := make([]ProductCandidate, 0, len(products))
	for _, p := range products {
		pid, ok := coerceInt(p["id"])
		if !ok {
			continue
		}
		candidate := ProductCandidate{ID: pid}
		if name, ok := p["name"].(string); ok {
			candidate.Name = name
		}
		if v, ok := coerceInt(p["location_id"]); ok {
			candidate.LocationID = &v
		}
		if v, ok := coerceInt(p["qu_id_stock"]); ok {
			candidate.QuIDStock = &v
		}
		if v, ok := coerceInt(p["qu_id_purchase"]); ok {
			candidate.QuIDPurchase = &v
		}
		if amount, ok := stockByProduct[pid]; ok {
			candidate.StockAmount = &amount
		}
		result = append(result, candidate)
	}
	return result, nil
}

// SearchProducts returns products whose name contains the query,
// case-insensitively.
func (r *Repository) SearchProducts(ctx context.Context, query string) ([]ProductCandidate, error) {
	products, err := r.Products(ctx)
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	var matches []ProductCandidate
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), queryLower) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// CreateProduct creates a product via POST /objects/products.
func (r *Repository) CreateProduct(ctx context.Context, payload Row) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodPost, "objects/products", nil, payload)
}

// UpdateProduct updates a product via PUT /objects/products/{id}.
func (r *Repository) UpdateProduct(ctx context.Context, productID int, payload Row) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodPut, "objects/products/"+strconv.Itoa(productID), nil, payload)
}

// DeleteProduct deletes a product via DELETE /objects/products/{id}.
func (r *Repository) DeleteProduct(ctx context.Context, productID int) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodDelete, "objects/products/"+strconv.Itoa(productID), nil, nil)
}

// ProductStockDetails returns detailed stock information for a product.
func (r *Repository) ProductStockDetails(ctx context.Context, productID int) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodGet, "stock/products/"+strconv.Itoa(productID), nil, nil)
}

// ProductStockHistory returns recent stock log entries for a product.
func (r *Repository) ProductStockHistory(ctx context.Context, productID, limit int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	return r.client.Do(ctx, http.MethodGet, "stock/products/"+strconv.Itoa(productID)+"/log", params, nil)
}

// Master data helpers

// Locations returns all locations defined in Grocy.
func (r *Repository) Locations(ctx context.Context) ([]Location, error) {
	raw, err := r.client.Do(ctx, http.MethodGet, "objects/locations", nil, nil)
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows(raw)
	if err != nil {
		return nil, fmt.Errorf("could not decode location list: %w", err)
	}

	result := make([]Location, 0, len(rows))
	for _, row := range rows {
		id, ok := coerceInt(row["id"])
		if !ok {
			continue
		}
		name, ok := row["name"].(string)
		if !ok {
			continue
		}
		result = append(result, Location{ID: id, Name: name})
	}
	return result, nil
}

// QuantityUnits returns all quantity units.
func (r *Repository) QuantityUnits(ctx context.Context) ([]Row, error) {
	raw, err := r.client.Do(ctx, http.MethodGet, "objects/quantity_units", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeRows(raw)
}

// ProductGroups returns all product groups.
func (r *Repository) ProductGroups(ctx context.Context) ([]Row, error) {
	raw, err := r.client.Do(ctx, http.MethodGet, "objects/product_groups", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeRows(raw)
}

// CreateQuantityUnit creates a quantity unit via POST /objects/quantity_units.
func (r *Repository) CreateQuantityUnit(ctx context.Context, payload Row) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodPost, "objects/quantity_units", nil, payload)
}

// DeleteLocation deletes a location by id.
func (r *Repository) DeleteLocation(ctx context.Context, locationID int) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodDelete, "objects/locations/"+strconv.Itoa(locationID), nil, nil)
}

// DeleteQuantityUnit deletes a quantity unit by id.
func (r *Repository) DeleteQuantityUnit(ctx context.Context, quID int) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodDelete, "objects/quantity_units/"+strconv.Itoa(quID), nil, nil)
}

// DeleteProductGroup deletes a product group by id.
func (r *Repository) DeleteProductGroup(ctx context.Context, groupID int) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodDelete, "objects/product_groups/"+strconv.Itoa(groupID), nil, nil)
}

// Objects reads rows from a generic /objects/{entity} endpoint (read-only).
func (r *Repository) Objects(ctx context.Context, entity string, limit, offset int) ([]Row, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	raw, err := r.client.Do(ctx, http.MethodGet, "objects/"+entity, params, nil)
	if err != nil {
		return nil, err
	}
	return decodeRows(raw)
}

// Stock helpers

// StockOverview returns Grocy's stock overview list from GET /stock.
func (r *Repository) StockOverview(ctx context.Context) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodGet, "stock", nil, nil)
}

// StockVolatile returns the volatile stock overview (expiring/missing
// products).
func (r *Repository) StockVolatile(ctx context.Context) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodGet, "stock/volatile", nil, nil)
}

// AddStock books a purchase for a product.
func (r *Repository) AddStock(ctx context.Context, item StockItem) (json.RawMessage, error) {
	payload := Row{
		"amount":           item.Amount,
		"transaction_type": "purchase",
	}
	if item.BestBeforeDate != "" {
		payload["best_before_date"] = item.BestBeforeDate
	}
	if item.Price != nil {
		payload["price"] = *item.Price
	}
	if item.LocationID != nil {
		payload["location_id"] = *item.LocationID
	}

	return r.client.Do(ctx, http.MethodPost, "stock/products/"+strconv.Itoa(item.ProductID)+"/add", nil, payload)
}

// ConsumeStock books a consume (or spoil) for a product.
func (r *Repository) ConsumeStock(ctx context.Context, item ConsumeItem) (json.RawMessage, error) {
	payload := Row{
		"amount":           item.Amount,
		"transaction_type": "consume",
		"spoiled":          item.Spoiled,
	}
	if item.LocationID != nil {
		payload["location_id"] = *item.LocationID
	}

	return r.client.Do(ctx, http.MethodPost, "stock/products/"+strconv.Itoa(item.ProductID)+"/consume", nil, payload)
}

// Inventory sets the absolute stock amount for a product.
func (r *Repository) Inventory(ctx context.Context, item InventoryItem) (json.RawMessage, error) {
	payload := Row{"new_amount": item.NewAmount}
	if item.BestBeforeDate != "" {
		payload["best_before_date"] = item.BestBeforeDate
	}
	if item.LocationID != nil {
		payload["location_id"] = *item.LocationID
	}
	if item.Price != nil {
		payload["price"] = *item.Price
	}
	if item.Note != "" {
		payload["note"] = item.Note
	}

	return r.client.Do(ctx, http.MethodPost, "stock/products/"+strconv.Itoa(item.ProductID)+"/inventory", nil, payload)
}

// UndoBooking undoes a specific stock booking.
func (r *Repository) UndoBooking(ctx context.Context, bookingID int) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodPost, "stock/bookings/"+strconv.Itoa(bookingID)+"/undo", nil, nil)
}

// UndoTransaction undoes a complete stock transaction.
func (r *Repository) UndoTransaction(ctx context.Context, transactionID string) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodPost, "stock/transactions/"+transactionID+"/undo", nil, nil)
}

// Barcode helpers

// ProductByBarcode resolves a product from a barcode.
func (r *Repository) ProductByBarcode(ctx context.Context, barcode string) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodGet, "stock/products/by-barcode/"+barcode, nil, nil)
}

// AddStockByBarcode books a purchase identified by barcode.
func (r *Repository) AddStockByBarcode(ctx context.Context, barcode string, item StockItem) (json.RawMessage, error) {
	payload := Row{
		"amount":           item.Amount,
		"transaction_type": "purchase",
	}
	if item.BestBeforeDate != "" {
		payload["best_before_date"] = item.BestBeforeDate
	}
	if item.Price != nil {
		payload["price"] = *item.Price
	}
	if item.LocationID != nil {
		payload["location_id"] = *item.LocationID
	}

	return r.client.Do(ctx, http.MethodPost, "stock/products/by-barcode/"+barcode+"/add", nil, payload)
}

// ConsumeStockByBarcode books a consume identified by barcode.
func (r *Repository) ConsumeStockByBarcode(ctx context.Context, barcode string, item ConsumeItem) (json.RawMessage, error) {
	payload := Row{
		"amount":           item.Amount,
		"transaction_type": "consume",
		"spoiled":          item.Spoiled,
	}
	if item.LocationID != nil {
		payload["location_id"] = *item.LocationID
	}

	return r.client.Do(ctx, http.MethodPost, "stock/products/by-barcode/"+barcode+"/consume", nil, payload)
}

// LinkBarcode creates a product-barcode link.
func (r *Repository) LinkBarcode(ctx context.Context, productID int, barcode, note string) (json.RawMessage, error) {
	payload := Row{"product_id": productID, "barcode": barcode}
	if note != "" {
		payload["note"] = note
	}

	return r.client.Do(ctx, http.MethodPost, "objects/product_barcodes", nil, payload)
}

// Shopping list helpers

// ShoppingLists returns all shopping list definitions.
func (r *Repository) ShoppingLists(ctx context.Context) ([]Row, error) {
	raw, err := r.client.Do(ctx, http.MethodGet, "objects/shopping_lists", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeRows(raw)
}

// ShoppingListItems returns all items belonging to a specific shopping
// list. Items live in objects/shopping_list with a shopping_list_id field.
func (r *Repository) ShoppingListItems(ctx context.Context, listID int) ([]Row, error) {
	raw, err := r.client.Do(ctx, http.MethodGet, "objects/shopping_list", nil, nil)
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows(raw)
	if err != nil {
		return nil, err
	}

	var items []Row
	for _, row := range rows {
		id, ok := coerceInt(row["shopping_list_id"])
		if ok && id == listID {
			items = append(items, row)
		}
	}
	return items, nil
}

// AddShoppingListItem adds an item to a shopping list.
func (r *Repository) AddShoppingListItem(ctx context.Context, listID, productID int, amount float64, note string) (json.RawMessage, error) {
	payload := Row{
		"product_id":       productID,
		"amount":           amount,
		"shopping_list_id": listID,
	}
	if note != "" {
		payload["note"] = note
	}

	return r.client.Do(ctx, http.MethodPost, "objects/shopping_list", nil, payload)
}

// RemoveShoppingListItem removes a single shopping list item by its id.
func (r *Repository) RemoveShoppingListItem(ctx context.Context, itemID int) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodDelete, "objects/shopping_list/"+strconv.Itoa(itemID), nil, nil)
}

// ClearShoppingList removes all items from a specific shopping list.
func (r *Repository) ClearShoppingList(ctx context.Context, listID int) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodPost, "stock/shoppinglist/"+strconv.Itoa(listID)+"/clear", nil, nil)
}

// AddMissingProducts adds all products below their minimum stock amount to
// the default shopping list.
func (r *Repository) AddMissingProducts(ctx context.Context) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodPost, "stock/shoppinglist/add-missing-products", nil, nil)
}

// DeleteShoppingList deletes a shopping list definition by its id.
func (r *Repository) DeleteShoppingList(ctx context.Context, listID int) (json.RawMessage, error) {
	return r.client.Do(ctx, http.MethodDelete, "objects/shopping_lists/"+strconv.Itoa(listID), nil, nil)
}
