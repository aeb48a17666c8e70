package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"grocer/internal/grocy"
	"grocer/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

// handleAddStock books a batch of purchases. Items are validated
// individually so one bad entry does not block the rest of a receipt.
func (s *GrocyServer) handleAddStock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	rawItems, ok := args["items"].([]interface{})
	if !ok || len(rawItems) == 0 {
		return mcp.NewToolResultError("items must be a non-empty array of stock items"), nil
	}

	added := make([]map[string]interface{}, 0, len(rawItems))
	var failed []map[string]interface{}

	for i, rawItem := range rawItems {
		item, ok := rawItem.(map[string]interface{})
		if !ok {
			failed = append(failed, map[string]interface{}{
				"index": i,
				"error": "item must be an object",
			})
			continue
		}

		stockItem, err := parseStockItem(item)
		if err != nil {
			failed = append(failed, map[string]interface{}{
				"index": i,
				"item":  item,
				"error": err.Error(),
			})
			continue
		}

		if _, err := s.repo.AddStock(ctx, stockItem); err != nil {
			logging.Warn("Tools", "add_stock failed for product %d: %v", stockItem.ProductID, err)
			failed = append(failed, map[string]interface{}{
				"index":      i,
				"product_id": stockItem.ProductID,
				"error":      err.Error(),
			})
			continue
		}

		added = append(added, map[string]interface{}{
			"product_id": stockItem.ProductID,
			"amount":     stockItem.Amount,
		})
	}

	data := map[string]interface{}{
		"added":  added,
		"failed": failed,
	}
	summary := fmt.Sprintf("Added %d of %d stock items", len(added), len(rawItems))
	if len(failed) > 0 {
		return toolResult(data, summary, "search_products"), nil
	}
	return toolResult(data, summary, "get_shopping_lists"), nil
}

// parseStockItem validates a single add_stock entry.
func parseStockItem(item map[string]interface{}) (grocy.StockItem, error) {
	productID, ok := argInt(item, "product_id")
	if !ok {
		return grocy.StockItem{}, fmt.Errorf("product_id is required and must be an integer")
	}
	amount, ok := argFloat(item, "amount")
	if !ok {
		return grocy.StockItem{}, fmt.Errorf("amount is required and must be a number")
	}
	if amount <= 0 {
		return grocy.StockItem{}, fmt.Errorf("amount must be positive, got %v", amount)
	}

	stockItem := grocy.StockItem{
		ProductID:  productID,
		Amount:     amount,
		Price:      optionalFloatPtr(item, "price"),
		LocationID: optionalIntPtr(item, "location_id"),
	}
	if bbd, ok := argString(item, "best_before_date"); ok {
		stockItem.BestBeforeDate = bbd
	}
	if key, ok := argString(item, "idempotency_key"); ok {
		stockItem.IdempotencyKey = key
	}
	return stockItem, nil
}

// handleConsumeStock books a single consume or spoil.
func (s *GrocyServer) handleConsumeStock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	productID, ok := argInt(args, "product_id")
	if !ok {
		return mcp.NewToolResultError("product_id is required and must be an integer"), nil
	}
	amount, ok := argFloat(args, "amount")
	if !ok || amount <= 0 {
		return mcp.NewToolResultError("amount is required and must be a positive number"), nil
	}

	spoiled, _ := argBool(args, "spoiled")
	item := grocy.ConsumeItem{
		ProductID:  productID,
		Amount:     amount,
		Spoiled:    spoiled,
		LocationID: optionalIntPtr(args, "location_id"),
	}
	if key, ok := argString(args, "idempotency_key"); ok {
		item.IdempotencyKey = key
	}

	result, err := s.repo.ConsumeStock(ctx, item)
	if err != nil {
		return failureResult(
			map[string]interface{}{"product_id": productID},
			fmt.Sprintf("Could not consume %v of product %d", amount, productID),
			err,
			"search_products",
		), nil
	}

	data := map[string]interface{}{
		"product_id": productID,
		"amount":     amount,
		"spoiled":    spoiled,
		"bookings":   rawJSON(result),
	}
	verb := "Consumed"
	if spoiled {
		verb = "Spoiled"
	}
	return toolResult(data, fmt.Sprintf("%s %v of product %d", verb, amount, productID)), nil
}

// handleSetInventoryLevels sets the absolute stock amount for a product.
func (s *GrocyServer) handleSetInventoryLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	productID, ok := argInt(args, "product_id")
	if !ok {
		return mcp.NewToolResultError("product_id is required and must be an integer"), nil
	}
	newAmount, ok := argFloat(args, "new_amount")
	if !ok || newAmount < 0 {
		return mcp.NewToolResultError("new_amount is required and must be zero or positive"), nil
	}

	item := grocy.InventoryItem{
		ProductID:  productID,
		NewAmount:  newAmount,
		LocationID: optionalIntPtr(args, "location_id"),
		Price:      optionalFloatPtr(args, "price"),
	}
	if bbd, ok := argString(args, "best_before_date"); ok {
		item.BestBeforeDate = bbd
	}
	if note, ok := argString(args, "note"); ok {
		item.Note = note
	}

	result, err := s.repo.Inventory(ctx, item)
	if err != nil {
		return failureResult(
			map[string]interface{}{"product_id": productID},
			fmt.Sprintf("Could not inventory product %d", productID),
			err,
		), nil
	}

	data := map[string]interface{}{
		"product_id": productID,
		"new_amount": newAmount,
		"bookings":   rawJSON(result),
	}
	return toolResult(data, fmt.Sprintf("Set stock of product %d to %v", productID, newAmount)), nil
}

// handleDeleteProduct deletes a product. Products with remaining stock are
// refused unless cleanup_stock is set, in which case the remainder is
// consumed as spoiled first.
func (s *GrocyServer) handleDeleteProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	productID, ok := argInt(args, "product_id")
	if !ok {
		return mcp.NewToolResultError("product_id is required and must be an integer"), nil
	}
	cleanupStock, _ := argBool(args, "cleanup_stock")

	details, err := s.repo.ProductStockDetails(ctx, productID)
	if err != nil {
		return failureResult(
			map[string]interface{}{"product_id": productID},
			fmt.Sprintf("Could not read stock details for product %d", productID),
			err,
			"search_products",
		), nil
	}

	stockAmount, err := stockAmountFromDetails(details)
	if err != nil {
		return failureResult(
			map[string]interface{}{"product_id": productID},
			fmt.Sprintf("Could not interpret stock details for product %d", productID),
			err,
		), nil
	}

	if stockAmount > 0 {
		if !cleanupStock {
			data := map[string]interface{}{
				"product_id":   productID,
				"stock_amount": stockAmount,
			}
			summary := fmt.Sprintf("Product %d still has %v in stock; pass cleanup_stock=true to consume it before deletion", productID, stockAmount)
			return toolResult(data, summary, "consume_stock"), nil
		}

		consumeItem := grocy.ConsumeItem{
			ProductID: productID,
			Amount:    stockAmount,
			Spoiled:   true,
		}
		if _, err := s.repo.ConsumeStock(ctx, consumeItem); err != nil {
			return failureResult(
				map[string]interface{}{"product_id": productID, "stock_amount": stockAmount},
				fmt.Sprintf("Could not clean up remaining stock of product %d", productID),
				err,
			), nil
		}
		logging.Info("Tools", "Cleaned up %v remaining stock of product %d before deletion", stockAmount, productID)
	}

	if _, err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return failureResult(
			map[string]interface{}{"product_id": productID},
			fmt.Sprintf("Could not delete product %d", productID),
			err,
		), nil
	}

	data := map[string]interface{}{
		"product_id":    productID,
		"cleaned_stock": stockAmount > 0 && cleanupStock,
	}
	return toolResult(data, fmt.Sprintf("Deleted product %d", productID)), nil
}

// stockAmountFromDetails extracts stock_amount from GET /stock/products/{id}.
// Grocy serves numeric fields as numbers or numeric strings depending on
// version.
func stockAmountFromDetails(details json.RawMessage) (float64, error) {
	var decoded map[string]interface{}
	if err := json.Unmarshal(details, &decoded); err != nil {
		return 0, err
	}

	switch value := decoded["stock_amount"].(type) {
	case float64:
		return value, nil
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("unexpected stock_amount %q", value)
		}
		return parsed, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected stock_amount type %T", value)
	}
}

// rawJSON re-decodes a raw repository payload so that it embeds as JSON
// instead of a base64 string.
func rawJSON(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return string(raw)
	}
	return decoded
}
