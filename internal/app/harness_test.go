package app

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/hearth/internal/common"
	"github.com/bobmcallan/hearth/internal/models"
)

// mockPlannerService records calls and delegates to the configured funcs.
type mockPlannerService struct {
	forecastFn func(ctx context.Context, req models.ForecastRequest) (*models.ForecastReport, error)
	chartFn    func(ctx context.Context, report *models.ForecastReport) ([]byte, error)
	listingsFn func(ctx context.Context, city string, targetPrice float64, years int) (*models.ListingSearch, error)
	warmFn     func(ctx context.Context, years int) (int, error)

	lastRequest *models.ForecastRequest
	chartCalls  int
	warmCalls   atomic.Int32
}

func (m *mockPlannerService) Forecast(ctx context.Context, req models.ForecastRequest) (*models.ForecastReport, error) {
	m.lastRequest = &req
	if m.forecastFn != nil {
		return m.forecastFn(ctx, req)
	}
	return &models.ForecastReport{RunID: "run-1", Request: req, Outcome: &models.AffordabilityOutcome{Tier: models.TierInsufficient}}, nil
}

func (m *mockPlannerService) RenderChart(ctx context.Context, report *models.ForecastReport) ([]byte, error) {
	m.chartCalls++
	if m.chartFn != nil {
		return m.chartFn(ctx, report)
	}
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

func (m *mockPlannerService) WarmHistory(ctx context.Context, years int) (int, error) {
	m.warmCalls.Add(1)
	if m.warmFn != nil {
		return m.warmFn(ctx, years)
	}
	return 0, nil
}

func (m *mockPlannerService) SearchListings(ctx context.Context, city string, targetPrice float64, years int) (*models.ListingSearch, error) {
	if m.listingsFn != nil {
		return m.listingsFn(ctx, city, targetPrice, years)
	}
	return &models.ListingSearch{City: city, TargetPrice: targetPrice, Years: years}, nil
}

// testHarness provides an in-process MCP client connected to a Hearth server
// with a mock planner. Tests can configure mock behavior before calling tools.
type testHarness struct {
	t           *testing.T
	client      *client.Client
	mcpServer   *server.MCPServer
	mockPlanner *mockPlannerService
	logger      *common.Logger
}

// newTestHarness creates a Hearth MCP server with mock services and an in-process client.
// The client is already initialized and ready to call tools.
func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	logger := common.NewSilentLogger()
	mockPS := &mockPlannerService{}

	mcpServer := server.NewMCPServer(
		"hearth-test",
		"test",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createGetVersionTool(), handleGetVersion())
	mcpServer.AddTool(createForecastPurchaseTool(), handleForecastPurchase(mockPS, logger))
	mcpServer.AddTool(createSearchListingsTool(), handleSearchListings(mockPS, logger))

	c, err := newInProcessClient(t, mcpServer)
	if err != nil {
		t.Fatalf("Failed to create in-process client: %v", err)
	}

	h := &testHarness{
		t:           t,
		client:      c,
		mcpServer:   mcpServer,
		mockPlanner: mockPS,
		logger:      logger,
	}

	t.Cleanup(h.close)
	return h
}

// callTool invokes an MCP tool by name with the given arguments.
func (h *testHarness) callTool(name string, args map[string]any) (*mcp.CallToolResult, error) {
	h.t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return h.client.CallTool(context.Background(), req)
}

// getTextContent extracts text from a content block at the given index.
// Fails the test if index is out of range or content is not text.
func (h *testHarness) getTextContent(result *mcp.CallToolResult, index int) string {
	h.t.Helper()
	if index >= len(result.Content) {
		h.t.Fatalf("Content index %d out of range (have %d blocks)", index, len(result.Content))
	}
	tc, ok := mcp.AsTextContent(result.Content[index])
	if !ok {
		h.t.Fatalf("Content[%d] is %T, not TextContent", index, result.Content[index])
	}
	return tc.Text
}

func (h *testHarness) close() {
	if h.client != nil {
		h.client.Close()
	}
}
