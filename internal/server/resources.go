package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerResources exposes read-only Grocy views as MCP resources so that
// assistants can ground conversations without burning tool calls.
func (s *GrocyServer) registerResources() {
	s.mcpServer.AddResource(
		mcp.NewResource("grocy://products", "All products with current stock amounts"),
		s.readProductsResource,
	)
	s.mcpServer.AddResource(
		mcp.NewResource("grocy://locations", "All storage locations"),
		s.readLocationsResource,
	)
	s.mcpServer.AddResource(
		mcp.NewResource("grocy://stock/volatile", "Expiring, expired and missing products"),
		s.readVolatileStockResource,
	)
	s.mcpServer.AddResource(
		mcp.NewResource("grocy://stock/overview", "Current stock overview"),
		s.readStockOverviewResource,
	)
	s.mcpServer.AddResource(
		mcp.NewResource("grocy://shopping-lists", "All shopping list definitions"),
		s.readShoppingListsResource,
	)
	s.mcpServer.AddResource(
		mcp.NewResource("grocy://master-data", "Products, locations, quantity units and product groups"),
		s.readMasterDataResource,
	)
	s.mcpServer.AddResource(
		mcp.NewResource("grocy://system/config", "Grocy system configuration"),
		s.readSystemConfigResource,
	)
}

// resourceContents wraps a value as the single JSON document of a resource.
func resourceContents(uri string, value interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("could not encode resource %s: %w", uri, err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

func (s *GrocyServer) readProductsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	products, err := s.repo.Products(ctx)
	if err != nil {
		return nil, err
	}
	return resourceContents(request.Params.URI, products)
}

func (s *GrocyServer) readLocationsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	locations, err := s.repo.Locations(ctx)
	if err != nil {
		return nil, err
	}
	return resourceContents(request.Params.URI, locations)
}

func (s *GrocyServer) readVolatileStockResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	volatile, err := s.repo.StockVolatile(ctx)
	if err != nil {
		return nil, err
	}
	return resourceContents(request.Params.URI, rawJSON(volatile))
}

func (s *GrocyServer) readStockOverviewResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	overview, err := s.repo.StockOverview(ctx)
	if err != nil {
		return nil, err
	}
	return resourceContents(request.Params.URI, rawJSON(overview))
}

func (s *GrocyServer) readShoppingListsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	lists, err := s.repo.ShoppingLists(ctx)
	if err != nil {
		return nil, err
	}
	return resourceContents(request.Params.URI, lists)
}

func (s *GrocyServer) readMasterDataResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	products, err := s.repo.Products(ctx)
	if err != nil {
		return nil, err
	}
	locations, err := s.repo.Locations(ctx)
	if err != nil {
		return nil, err
	}
	units, err := s.repo.QuantityUnits(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.repo.ProductGroups(ctx)
	if err != nil {
		return nil, err
	}

	overview := map[string]interface{}{
		"products":       products,
		"locations":      locations,
		"quantity_units": units,
		"product_groups": groups,
	}
	return resourceContents(request.Params.URI, overview)
}

func (s *GrocyServer) readSystemConfigResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	cfg, err := s.repo.SystemConfig(ctx)
	if err != nil {
		return nil, err
	}
	return resourceContents(request.Params.URI, rawJSON(cfg))
}
