package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"shate-rag-be/internal/dto"
	"shate-rag-be/internal/pkg/logger"
	"shate-rag-be/internal/pkg/serverutils"
	"shate-rag-be/pkg/graph"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatService struct {
	res *dto.ChatResponse
	err error
	got string
}

func (s *stubChatService) Ask(_ context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	s.got = req.Question
	return s.res, s.err
}

type stubSystemService struct{}

func (stubSystemService) Health(context.Context) *dto.HealthResponse {
	return &dto.HealthResponse{AppName: "Shate Shop RAG System", Status: "active", Database: "connected"}
}

func (stubSystemService) Schema(context.Context) (*dto.SchemaResponse, error) {
	return &dto.SchemaResponse{Collections: []string{"products"}, Schema: "Collection: products\n"}, nil
}

func (stubSystemService) GetLogs(context.Context, *dto.GetSystemLogsRequest) ([]logger.LogEntry, error) {
	return []logger.LogEntry{{Level: "info", Message: "Question answered"}}, nil
}

func (stubSystemService) GetChatLogs(context.Context, *dto.GetChatLogsRequest) (*dto.GetChatLogsResponse, error) {
	return &dto.GetChatLogsResponse{Total: 0, Items: []*dto.ChatLogResponse{}}, nil
}

func newTestApp(chat *stubChatService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewChatController(chat).RegisterRoutes(api)
	NewSystemController(stubSystemService{}).RegisterRoutes(app, api)
	return app
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestChatController_Ask(t *testing.T) {
	chat := &stubChatService{res: &dto.ChatResponse{Generation: "Xin chào!", Documents: []string{"Hello! How can I assist you today?"}}}
	app := newTestApp(chat)

	req := httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(`{"question":"Xin chào"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decode(t, resp.Body)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Xin chào!", data["generation"])
	assert.Equal(t, []interface{}{"Hello! How can I assist you today?"}, data["documents"])
	assert.Equal(t, "Xin chào", chat.got)
}

func TestChatController_Validation(t *testing.T) {
	app := newTestApp(&stubChatService{})

	req := httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(`{"question":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decode(t, resp.Body)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "question")
}

func TestChatController_ServiceErrorIsMapped(t *testing.T) {
	app := newTestApp(&stubChatService{err: graph.ErrSynthesis})

	req := httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(`{"question":"q"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "the answer model is unavailable, please try again", decode(t, resp.Body)["message"])
}

func TestSystemController_Routes(t *testing.T) {
	app := newTestApp(&stubChatService{})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	health := decode(t, resp.Body)
	assert.Equal(t, "active", health["status"])
	assert.Equal(t, "connected", health["database"])

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/schema", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/logs?level=verbose", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "go_goroutines")
}
