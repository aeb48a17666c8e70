package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *GrocyServer) handleGetShoppingLists(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lists, err := s.repo.ShoppingLists(ctx)
	if err != nil {
		return failureResult(nil, "Could not load shopping lists", err), nil
	}

	data := map[string]interface{}{
		"shopping_lists": lists,
		"count":          len(lists),
	}
	return toolResult(data, fmt.Sprintf("Found %d shopping lists", len(lists)), "get_shopping_list_items"), nil
}

func (s *GrocyServer) handleGetShoppingListItems(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	listID, ok := argInt(request.GetArguments(), "list_id")
	if !ok {
		return mcp.NewToolResultError("list_id is required and must be an integer"), nil
	}

	items, err := s.repo.ShoppingListItems(ctx, listID)
	if err != nil {
		return failureResult(
			map[string]interface{}{"list_id": listID},
			fmt.Sprintf("Could not load items of shopping list %d", listID),
			err,
		), nil
	}

	data := map[string]interface{}{
		"list_id": listID,
		"items":   items,
		"count":   len(items),
	}
	return toolResult(data, fmt.Sprintf("Shopping list %d has %d items", listID, len(items)), "update_shopping_list"), nil
}

// handleUpdateShoppingList adds or removes a single entry. For "remove" the
// caller passes the item id from get_shopping_list_items as product_id.
func (s *GrocyServer) handleUpdateShoppingList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	action, ok := argString(args, "action")
	if !ok || (action != "add" && action != "remove") {
		return mcp.NewToolResultError("action is required and must be \"add\" or \"remove\""), nil
	}
	listID, ok := argInt(args, "list_id")
	if !ok {
		return mcp.NewToolResultError("list_id is required and must be an integer"), nil
	}
	productID, ok := argInt(args, "product_id")
	if !ok {
		return mcp.NewToolResultError("product_id is required and must be an integer"), nil
	}

	if action == "remove" {
		if _, err := s.repo.RemoveShoppingListItem(ctx, productID); err != nil {
			return failureResult(
				map[string]interface{}{"list_id": listID, "item_id": productID},
				fmt.Sprintf("Could not remove item %d from shopping list %d", productID, listID),
				err,
				"get_shopping_list_items",
			), nil
		}
		data := map[string]interface{}{"list_id": listID, "item_id": productID}
		return toolResult(data, fmt.Sprintf("Removed item %d from shopping list %d", productID, listID)), nil
	}

	amount, ok := argFloat(args, "amount")
	if !ok || amount <= 0 {
		return mcp.NewToolResultError("amount is required and must be a positive number"), nil
	}
	note, _ := argString(args, "note")

	if _, err := s.repo.AddShoppingListItem(ctx, listID, productID, amount, note); err != nil {
		return failureResult(
			map[string]interface{}{"list_id": listID, "product_id": productID},
			fmt.Sprintf("Could not add product %d to shopping list %d", productID, listID),
			err,
			"search_products",
		), nil
	}

	data := map[string]interface{}{
		"list_id":    listID,
		"product_id": productID,
		"amount":     amount,
	}
	return toolResult(data, fmt.Sprintf("Added %v of product %d to shopping list %d", amount, productID, listID)), nil
}

func (s *GrocyServer) handleBuildShoppingListFromVolatileStock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.repo.AddMissingProducts(ctx); err != nil {
		return failureResult(nil, "Could not add missing products to the shopping list", err), nil
	}

	volatile, err := s.repo.StockVolatile(ctx)
	if err != nil {
		return failureResult(nil, "Missing products were added but the volatile stock overview could not be loaded", err), nil
	}

	data := map[string]interface{}{
		"volatile_stock": rawJSON(volatile),
	}
	return toolResult(data, "Added all missing products to the default shopping list", "get_shopping_list_items"), nil
}

func (s *GrocyServer) handleDeleteShoppingList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	listID, ok := argInt(request.GetArguments(), "list_id")
	if !ok {
		return mcp.NewToolResultError("list_id is required and must be an integer"), nil
	}

	if _, err := s.repo.DeleteShoppingList(ctx, listID); err != nil {
		return failureResult(
			map[string]interface{}{"list_id": listID},
			fmt.Sprintf("Could not delete shopping list %d", listID),
			err,
			"get_shopping_lists",
		), nil
	}

	data := map[string]interface{}{"list_id": listID}
	return toolResult(data, fmt.Sprintf("Deleted shopping list %d", listID)), nil
}
