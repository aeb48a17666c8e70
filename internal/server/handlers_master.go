package server

import (
	"context"
	"fmt"

	"grocer/internal/grocy"

	"github.com/mark3labs/mcp-go/mcp"
)

// inspectableEntities is the allowlist for the generic inspect_entity tool.
// Only harmless, read-only object tables are exposed.
var inspectableEntities = map[string]bool{
	"products":       true,
	"locations":      true,
	"quantity_units": true,
	"product_groups": true,
	"tasks":          true,
	"chores":         true,
}

const (
	inspectDefaultLimit = 50
	inspectMaxLimit     = 200
)

func (s *GrocyServer) handleSearchProducts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	matches, searchErr := s.repo.SearchProducts(ctx, query)
	if searchErr != nil {
		return failureResult(
			map[string]interface{}{"query": query},
			fmt.Sprintf("Search for %q failed", query),
			searchErr,
		), nil
	}

	data := map[string]interface{}{
		"query":      query,
		"candidates": matches,
		"count":      len(matches),
	}
	if len(matches) == 0 {
		return toolResult(data, fmt.Sprintf("No products match %q", query), "create_product"), nil
	}
	return toolResult(data, fmt.Sprintf("Found %d products matching %q", len(matches), query), "add_stock", "consume_stock"), nil
}

func (s *GrocyServer) handleGetSystemStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := s.repo.SystemInfo(ctx)
	if err != nil {
		return failureResult(nil, "Could not reach the Grocy system", err), nil
	}

	data := map[string]interface{}{
		"system_info": rawJSON(info),
	}

	// The DB change time is informational, a failure here is not fatal.
	if changed, err := s.repo.DBChangedTime(ctx); err == nil {
		data["db_changed_time"] = rawJSON(changed)
	}

	return toolResult(data, "Grocy system is reachable"), nil
}

func (s *GrocyServer) handleGetMasterDataOverview(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	products, err := s.repo.Products(ctx)
	if err != nil {
		return failureResult(nil, "Could not load products", err), nil
	}
	locations, err := s.repo.Locations(ctx)
	if err != nil {
		return failureResult(nil, "Could not load locations", err), nil
	}
	units, err := s.repo.QuantityUnits(ctx)
	if err != nil {
		return failureResult(nil, "Could not load quantity units", err), nil
	}
	groups, err := s.repo.ProductGroups(ctx)
	if err != nil {
		return failureResult(nil, "Could not load product groups", err), nil
	}

	data := map[string]interface{}{
		"products":       products,
		"locations":      locations,
		"quantity_units": units,
		"product_groups": groups,
	}
	summary := fmt.Sprintf("Master data: %d products, %d locations, %d quantity units, %d product groups",
		len(products), len(locations), len(units), len(groups))
	return toolResult(data, summary, "create_product", "create_quantity_unit"), nil
}

func (s *GrocyServer) handleCreateProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	quIDStock, ok := argInt(args, "qu_id_stock")
	if !ok {
		return mcp.NewToolResultError("qu_id_stock is required and must be an integer"), nil
	}

	payload := grocy.Row{
		"name":                        name,
		"qu_id_stock":                 quIDStock,
		"qu_id_purchase":              quIDStock,
		"qu_factor_purchase_to_stock": 1,
	}
	if v, ok := argInt(args, "qu_id_purchase"); ok {
		payload["qu_id_purchase"] = v
	}
	if v, ok := argInt(args, "location_id"); ok {
		payload["location_id"] = v
	}
	if v, ok := argInt(args, "product_group_id"); ok {
		payload["product_group_id"] = v
	}
	if v, ok := argFloat(args, "min_stock_amount"); ok {
		payload["min_stock_amount"] = v
	}
	if v, ok := argString(args, "description"); ok {
		payload["description"] = v
	}

	result, createErr := s.repo.CreateProduct(ctx, payload)
	if createErr != nil {
		return failureResult(
			map[string]interface{}{"name": name},
			fmt.Sprintf("Could not create product %q", name),
			createErr,
			"get_master_data_overview",
		), nil
	}

	data := map[string]interface{}{
		"name":    name,
		"created": rawJSON(result),
	}
	return toolResult(data, fmt.Sprintf("Created product %q", name), "add_stock"), nil
}

func (s *GrocyServer) handleUpdateProductMasterData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	productID, ok := argInt(args, "product_id")
	if !ok {
		return mcp.NewToolResultError("product_id is required and must be an integer"), nil
	}

	payload := grocy.Row{}
	if v, ok := argString(args, "name"); ok {
		payload["name"] = v
	}
	if v, ok := argInt(args, "qu_id_stock"); ok {
		payload["qu_id_stock"] = v
	}
	if v, ok := argInt(args, "qu_id_purchase"); ok {
		payload["qu_id_purchase"] = v
	}
	if v, ok := argInt(args, "location_id"); ok {
		payload["location_id"] = v
	}
	if v, ok := argInt(args, "product_group_id"); ok {
		payload["product_group_id"] = v
	}
	if v, ok := argFloat(args, "min_stock_amount"); ok {
		payload["min_stock_amount"] = v
	}
	if v, ok := argString(args, "description"); ok {
		payload["description"] = v
	}

	if len(payload) == 0 {
		return mcp.NewToolResultError("at least one field to update must be provided"), nil
	}

	if _, err := s.repo.UpdateProduct(ctx, productID, payload); err != nil {
		return failureResult(
			map[string]interface{}{"product_id": productID},
			fmt.Sprintf("Could not update product %d", productID),
			err,
			"search_products",
		), nil
	}

	data := map[string]interface{}{
		"product_id": productID,
		"updated":    payload,
	}
	return toolResult(data, fmt.Sprintf("Updated product %d", productID)), nil
}

func (s *GrocyServer) handleCreateQuantityUnit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	payload := grocy.Row{"name": name}
	if v, ok := argString(args, "name_plural"); ok {
		payload["name_plural"] = v
	}
	if v, ok := argString(args, "description"); ok {
		payload["description"] = v
	}

	result, createErr := s.repo.CreateQuantityUnit(ctx, payload)
	if createErr != nil {
		return failureResult(
			map[string]interface{}{"name": name},
			fmt.Sprintf("Could not create quantity unit %q", name),
			createErr,
		), nil
	}

	data := map[string]interface{}{
		"name":    name,
		"created": rawJSON(result),
	}
	return toolResult(data, fmt.Sprintf("Created quantity unit %q", name), "create_product"), nil
}

func (s *GrocyServer) handleInspectEntity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	entity, err := request.RequireString("entity")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !inspectableEntities[entity] {
		return mcp.NewToolResultError(fmt.Sprintf("entity %q is not inspectable; allowed: products, locations, quantity_units, product_groups, tasks, chores", entity)), nil
	}

	limit, ok := argInt(args, "limit")
	if !ok || limit <= 0 {
		limit = inspectDefaultLimit
	}
	if limit > inspectMaxLimit {
		limit = inspectMaxLimit
	}
	offset, ok := argInt(args, "offset")
	if !ok || offset < 0 {
		offset = 0
	}

	rows, readErr := s.repo.Objects(ctx, entity, limit, offset)
	if readErr != nil {
		return failureResult(
			map[string]interface{}{"entity": entity},
			fmt.Sprintf("Could not read entity %q", entity),
			readErr,
		), nil
	}

	data := map[string]interface{}{
		"entity": entity,
		"rows":   rows,
		"count":  len(rows),
		"limit":  limit,
		"offset": offset,
	}
	return toolResult(data, fmt.Sprintf("Read %d rows from %s", len(rows), entity)), nil
}

func (s *GrocyServer) handleDeleteLocation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	locationID, ok := argInt(request.GetArguments(), "location_id")
	if !ok {
		return mcp.NewToolResultError("location_id is required and must be an integer"), nil
	}

	if _, err := s.repo.DeleteLocation(ctx, locationID); err != nil {
		return failureResult(
			map[string]interface{}{"location_id": locationID},
			fmt.Sprintf("Could not delete location %d", locationID),
			err,
			"get_master_data_overview",
		), nil
	}

	data := map[string]interface{}{"location_id": locationID}
	return toolResult(data, fmt.Sprintf("Deleted location %d", locationID)), nil
}

func (s *GrocyServer) handleDeleteQuantityUnit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	quID, ok := argInt(request.GetArguments(), "qu_id")
	if !ok {
		return mcp.NewToolResultError("qu_id is required and must be an integer"), nil
	}

	if _, err := s.repo.DeleteQuantityUnit(ctx, quID); err != nil {
		return failureResult(
			map[string]interface{}{"qu_id": quID},
			fmt.Sprintf("Could not delete quantity unit %d", quID),
			err,
			"get_master_data_overview",
		), nil
	}

	data := map[string]interface{}{"qu_id": quID}
	return toolResult(data, fmt.Sprintf("Deleted quantity unit %d", quID)), nil
}

func (s *GrocyServer) handleDeleteProductGroup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groupID, ok := argInt(request.GetArguments(), "group_id")
	if !ok {
		return mcp.NewToolResultError("group_id is required and must be an integer"), nil
	}

	if _, err := s.repo.DeleteProductGroup(ctx, groupID); err != nil {
		return failureResult(
			map[string]interface{}{"group_id": groupID},
			fmt.Sprintf("Could not delete product group %d", groupID),
			err,
			"get_master_data_overview",
		), nil
	}

	data := map[string]interface{}{"group_id": groupID}
	return toolResult(data, fmt.Sprintf("Deleted product group %d", groupID)), nil
}
