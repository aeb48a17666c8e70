package server

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools registers the full Grocy tool catalog.
func (s *GrocyServer) registerTools() {
	// Stock operations
	addStockTool := mcp.NewTool("add_stock",
		mcp.WithDescription("Batch add multiple stock items in one operation. Use this after a shopping trip or parsed receipt. Each item must specify a valid product_id and positive amount."),
		mcp.WithArray("items",
			mcp.Required(),
			mcp.Description("Stock items to add. Each item: product_id (int, required), amount (number, required, > 0), best_before_date (YYYY-MM-DD, optional), price (number, optional), location_id (int, optional), idempotency_key (string, optional)"),
			mcp.Items(map[string]interface{}{"type": "object"}),
		),
	)
	s.mcpServer.AddTool(addStockTool, s.handleAddStock)

	consumeStockTool := mcp.NewTool("consume_stock",
		mcp.WithDescription("Consume or spoil a single stock item. Use this when a product is used, eaten, spoiled, or otherwise removed from inventory."),
		mcp.WithNumber("product_id",
			mcp.Required(),
			mcp.Description("The unique ID of the product to consume"),
		),
		mcp.WithNumber("amount",
			mcp.Required(),
			mcp.Description("The quantity to consume (must be positive)"),
		),
		mcp.WithBoolean("spoiled",
			mcp.Description("Set to true if the item was spoiled/wasted"),
		),
		mcp.WithNumber("location_id",
			mcp.Description("Specific location ID to consume from (optional)"),
		),
		mcp.WithString("idempotency_key",
			mcp.Description("Unique key to prevent duplicate operations"),
		),
	)
	s.mcpServer.AddTool(consumeStockTool, s.handleConsumeStock)

	setInventoryTool := mcp.NewTool("set_inventory_levels",
		mcp.WithDescription("Set the absolute stock amount for a product (inventory adjustment)."),
		mcp.WithNumber("product_id",
			mcp.Required(),
			mcp.Description("The unique ID of the product to inventory"),
		),
		mcp.WithNumber("new_amount",
			mcp.Required(),
			mcp.Description("The absolute new quantity for the product"),
		),
		mcp.WithString("best_before_date",
			mcp.Description("ISO 8601 date string (YYYY-MM-DD) for expiration"),
		),
		mcp.WithNumber("location_id",
			mcp.Description("ID of the location where this stock is stored"),
		),
		mcp.WithNumber("price",
			mcp.Description("Price per unit"),
		),
		mcp.WithString("note",
			mcp.Description("Optional note for the inventory entry"),
		),
	)
	s.mcpServer.AddTool(setInventoryTool, s.handleSetInventoryLevels)

	// Product discovery
	searchProductsTool := mcp.NewTool("search_products",
		mcp.WithDescription("Search products by name and return candidate matches with IDs. Use this before any state-changing operation if you only know the human name of a product."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Product name or name fragment to search for"),
		),
	)
	s.mcpServer.AddTool(searchProductsTool, s.handleSearchProducts)

	systemStatusTool := mcp.NewTool("get_system_status",
		mcp.WithDescription("Get basic Grocy system status (version, DB change time, etc.)."),
	)
	s.mcpServer.AddTool(systemStatusTool, s.handleGetSystemStatus)

	// Shopping lists
	getShoppingListsTool := mcp.NewTool("get_shopping_lists",
		mcp.WithDescription("Get an overview of all shopping lists."),
	)
	s.mcpServer.AddTool(getShoppingListsTool, s.handleGetShoppingLists)

	getShoppingListItemsTool := mcp.NewTool("get_shopping_list_items",
		mcp.WithDescription("Get all items for a specific shopping list."),
		mcp.WithNumber("list_id",
			mcp.Required(),
			mcp.Description("ID of the shopping list"),
		),
	)
	s.mcpServer.AddTool(getShoppingListItemsTool, s.handleGetShoppingListItems)

	updateShoppingListTool := mcp.NewTool("update_shopping_list",
		mcp.WithDescription("Add or remove items from a shopping list. action must be \"add\" or \"remove\". For remove, pass the item id from get_shopping_list_items as product_id."),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Either \"add\" or \"remove\""),
		),
		mcp.WithNumber("list_id",
			mcp.Required(),
			mcp.Description("ID of the shopping list"),
		),
		mcp.WithNumber("product_id",
			mcp.Required(),
			mcp.Description("Product ID to add, or item ID to remove"),
		),
		mcp.WithNumber("amount",
			mcp.Required(),
			mcp.Description("Quantity to add (must be positive)"),
		),
		mcp.WithString("note",
			mcp.Description("Optional note for the list entry"),
		),
	)
	s.mcpServer.AddTool(updateShoppingListTool, s.handleUpdateShoppingList)

	buildShoppingListTool := mcp.NewTool("build_shopping_list_from_volatile_stock",
		mcp.WithDescription("Add all missing products (below min stock) to the default shopping list."),
	)
	s.mcpServer.AddTool(buildShoppingListTool, s.handleBuildShoppingListFromVolatileStock)

	deleteShoppingListTool := mcp.NewTool("delete_shopping_list",
		mcp.WithDescription("Delete a shopping list definition by its id."),
		mcp.WithNumber("list_id",
			mcp.Required(),
			mcp.Description("ID of the shopping list to delete"),
		),
	)
	s.mcpServer.AddTool(deleteShoppingListTool, s.handleDeleteShoppingList)

	// Master data
	masterDataOverviewTool := mcp.NewTool("get_master_data_overview",
		mcp.WithDescription("Get an overview of key Grocy master data (products, locations, units, groups)."),
	)
	s.mcpServer.AddTool(masterDataOverviewTool, s.handleGetMasterDataOverview)

	createProductTool := mcp.NewTool("create_product",
		mcp.WithDescription("Create a new product with essential master data fields."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the product"),
		),
		mcp.WithNumber("qu_id_stock",
			mcp.Required(),
			mcp.Description("Quantity unit ID for stock"),
		),
		mcp.WithNumber("qu_id_purchase",
			mcp.Description("Quantity unit ID for purchase (defaults to qu_id_stock)"),
		),
		mcp.WithNumber("location_id",
			mcp.Description("Default location ID for the product"),
		),
		mcp.WithNumber("product_group_id",
			mcp.Description("Product group ID"),
		),
		mcp.WithNumber("min_stock_amount",
			mcp.Description("Minimum stock amount before the product counts as missing"),
		),
		mcp.WithString("description",
			mcp.Description("Product description"),
		),
	)
	s.mcpServer.AddTool(createProductTool, s.handleCreateProduct)

	updateProductTool := mcp.NewTool("update_product_master_data",
		mcp.WithDescription("Update selected master data fields for an existing product."),
		mcp.WithNumber("product_id",
			mcp.Required(),
			mcp.Description("ID of the product to update"),
		),
		mcp.WithString("name",
			mcp.Description("New product name"),
		),
		mcp.WithNumber("qu_id_stock",
			mcp.Description("Quantity unit ID for stock"),
		),
		mcp.WithNumber("qu_id_purchase",
			mcp.Description("Quantity unit ID for purchase"),
		),
		mcp.WithNumber("location_id",
			mcp.Description("Default location ID"),
		),
		mcp.WithNumber("product_group_id",
			mcp.Description("Product group ID"),
		),
		mcp.WithNumber("min_stock_amount",
			mcp.Description("Minimum stock amount"),
		),
		mcp.WithString("description",
			mcp.Description("Product description"),
		),
	)
	s.mcpServer.AddTool(updateProductTool, s.handleUpdateProductMasterData)

	createQuantityUnitTool := mcp.NewTool("create_quantity_unit",
		mcp.WithDescription("Create a new quantity unit for use with products and stock."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the quantity unit"),
		),
		mcp.WithString("name_plural",
			mcp.Description("Plural name of the quantity unit"),
		),
		mcp.WithString("description",
			mcp.Description("Description of the quantity unit"),
		),
	)
	s.mcpServer.AddTool(createQuantityUnitTool, s.handleCreateQuantityUnit)

	inspectEntityTool := mcp.NewTool("inspect_entity",
		mcp.WithDescription("Inspect rows from a generic /objects/{entity} endpoint (read-only). The entity name is restricted to a safe allowlist."),
		mcp.WithString("entity",
			mcp.Required(),
			mcp.Description("Entity name (one of: products, locations, quantity_units, product_groups, tasks, chores)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum rows to return (default 50, max 200)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Row offset for pagination (default 0)"),
		),
	)
	s.mcpServer.AddTool(inspectEntityTool, s.handleInspectEntity)

	deleteProductTool := mcp.NewTool("delete_product",
		mcp.WithDescription("Delete a product by its id. If the product has existing stock this fails unless cleanup_stock is true."),
		mcp.WithNumber("product_id",
			mcp.Required(),
			mcp.Description("ID of the product to delete"),
		),
		mcp.WithBoolean("cleanup_stock",
			mcp.Description("Consume remaining stock as spoiled before deleting"),
		),
	)
	s.mcpServer.AddTool(deleteProductTool, s.handleDeleteProduct)

	deleteLocationTool := mcp.NewTool("delete_location",
		mcp.WithDescription("Delete a location by its id."),
		mcp.WithNumber("location_id",
			mcp.Required(),
			mcp.Description("ID of the location to delete"),
		),
	)
	s.mcpServer.AddTool(deleteLocationTool, s.handleDeleteLocation)

	deleteQuantityUnitTool := mcp.NewTool("delete_quantity_unit",
		mcp.WithDescription("Delete a quantity unit by its id."),
		mcp.WithNumber("qu_id",
			mcp.Required(),
			mcp.Description("ID of the quantity unit to delete"),
		),
	)
	s.mcpServer.AddTool(deleteQuantityUnitTool, s.handleDeleteQuantityUnit)

	deleteProductGroupTool := mcp.NewTool("delete_product_group",
		mcp.WithDescription("Delete a product group by its id."),
		mcp.WithNumber("group_id",
			mcp.Required(),
			mcp.Description("ID of the product group to delete"),
		),
	)
	s.mcpServer.AddTool(deleteProductGroupTool, s.handleDeleteProductGroup)
}
