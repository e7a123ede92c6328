package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"usersvc/internal/database"
	"usersvc/internal/handlers"
	"usersvc/internal/middleware"
	"usersvc/internal/repositories"
	"usersvc/internal/security"
	"usersvc/internal/services"
	"usersvc/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// envelope mirrors handlers.Response with raw data for per-test decoding.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code        int                    `json:"code"`
		Description string                 `json:"description"`
		Details     []validation.Violation `json:"details"`
	} `json:"error"`
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, database.MemoryDSN(uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	logger := zap.NewNop()
	repo := repositories.NewGORMUserRepository(db, logger)
	v := validation.New()
	hasher := security.NewBcryptHasher(security.MinCost, 4)
	userService := services.NewUserService(repo, v, hasher, nil, logger, 5*time.Second)
	orderService := services.NewOrderService(repo, v, nil, logger, 5*time.Second)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(logger)})
	api := app.Group("/api")
	handlers.NewUserHandler(userService).RegisterRoutes(api)
	handlers.NewOrderHandler(orderService).RegisterRoutes(api)
	return app
}

func userPayload(id int64, username string) map[string]any {
	return map[string]any{
		"userId":   id,
		"username": username,
		"password": "password123",
		"fullName": map[string]any{"firstName": "John", "lastName": "Doe"},
		"age":      30,
		"email":    username + "@example.com",
		"isActive": true,
		"hobbies":  []string{"chess", "hiking"},
		"address":  map[string]any{"street": "1 Main St", "city": "Dhaka", "country": "Bangladesh"},
	}
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (int, envelope, string) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	return resp.StatusCode, env, string(raw)
}

func TestCreateUser(t *testing.T) {
	app := setupApp(t)

	status, env, _ := do(t, app, http.MethodPost, "/api/users", userPayload(1, "jdoe"))
	assert.Equal(t, http.StatusCreated, status)
	assert.True(t, env.Success)
	assert.Equal(t, "User created successfully!", env.Message)

	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "********", created["password"])
	assert.Equal(t, float64(1), created["userId"])
	assert.Equal(t, []any{}, created["orders"])

	// Duplicate userId is rejected and nothing else is stored.
	status, env, _ = do(t, app, http.MethodPost, "/api/users", userPayload(1, "other"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, 400, env.Error.Code)
	assert.Equal(t, "User ID or username already exists", env.Error.Description)

	status, env, _ = do(t, app, http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusOK, status)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &users))
	assert.Len(t, users, 1)
}

func TestCreateUser_ValidationError(t *testing.T) {
	app := setupApp(t)

	payload := userPayload(1, "jdoe")
	payload["fullName"] = map[string]any{"firstName": "john", "lastName": "Doe"}
	status, env, raw := do(t, app, http.MethodPost, "/api/users", payload)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation error", env.Message)
	assert.Equal(t, "Failed to create user", env.Error.Description)
	require.NotEmpty(t, env.Error.Details)
	assert.Equal(t, "fullName.firstName", env.Error.Details[0].Field)
	assert.Contains(t, raw, `"data":null`)

	status, _, _ = do(t, app, http.MethodGet, "/api/users/1", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGetUsers_NeverExposesPassword(t *testing.T) {
	app := setupApp(t)
	for i, name := range []string{"jdoe", "asmith", "bwayne"} {
		status, _, _ := do(t, app, http.MethodPost, "/api/users", userPayload(int64(i+1), name))
		require.Equal(t, http.StatusCreated, status)
	}

	status, env, raw := do(t, app, http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Users fetched successfully!", env.Message)
	assert.NotContains(t, raw, "password")

	var users []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &users))
	require.Len(t, users, 3)
	for _, u := range users {
		assert.ElementsMatch(t, []string{"username", "fullName", "age", "email", "address"}, mapKeys(u))
	}
}

func TestGetUserByID(t *testing.T) {
	app := setupApp(t)
	status, _, _ := do(t, app, http.MethodPost, "/api/users", userPayload(7, "jdoe"))
	require.Equal(t, http.StatusCreated, status)

	status, env, raw := do(t, app, http.MethodGet, "/api/users/7", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User fetched successfully!", env.Message)
	assert.NotContains(t, raw, "password")

	var user map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "jdoe", user["username"])
	assert.Equal(t, true, user["isActive"])

	status, env, _ = do(t, app, http.MethodGet, "/api/users/8", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", env.Message)
	assert.Equal(t, 404, env.Error.Code)

	status, env, _ = do(t, app, http.MethodGet, "/api/users/abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Validation error", env.Message)
}

func TestUpdateUser(t *testing.T) {
	app := setupApp(t)
	status, _, _ := do(t, app, http.MethodPost, "/api/users", userPayload(1, "jdoe"))
	require.Equal(t, http.StatusCreated, status)

	payload := userPayload(1, "jdoe")
	payload["age"] = 42
	payload["hobbies"] = []string{"go"}
	status, env, raw := do(t, app, http.MethodPut, "/api/users/1", payload)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User updated successfully!", env.Message)
	assert.NotContains(t, raw, "password")

	var updated map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, float64(42), updated["age"])
	assert.Equal(t, []any{"go"}, updated["hobbies"])

	// A document missing a required field is rejected and the stored record is untouched.
	_, before, _ := do(t, app, http.MethodGet, "/api/users/1", nil)
	invalid := userPayload(1, "jdoe")
	delete(invalid, "address")
	status, env, _ = do(t, app, http.MethodPut, "/api/users/1", invalid)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Failed to update user", env.Error.Description)
	_, after, _ := do(t, app, http.MethodGet, "/api/users/1", nil)
	assert.JSONEq(t, string(before.Data), string(after.Data))

	status, _, _ = do(t, app, http.MethodPut, "/api/users/2", userPayload(2, "nobody"))
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteUser(t *testing.T) {
	app := setupApp(t)
	status, _, _ := do(t, app, http.MethodPost, "/api/users", userPayload(1, "jdoe"))
	require.Equal(t, http.StatusCreated, status)

	status, env, raw := do(t, app, http.MethodDelete, "/api/users/1", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "User deleted successfully!", env.Message)
	assert.Contains(t, raw, `"data":null`)

	status, _, _ = do(t, app, http.MethodGet, "/api/users/1", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = do(t, app, http.MethodDelete, "/api/users/1", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestOrders(t *testing.T) {
	app := setupApp(t)
	status, _, _ := do(t, app, http.MethodPost, "/api/users", userPayload(1, "jdoe"))
	require.Equal(t, http.StatusCreated, status)

	totalPrice := func() string {
		status, env, _ := do(t, app, http.MethodGet, "/api/users/1/orders/total-price", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Total price calculated successfully!", env.Message)
		var data struct {
			TotalPrice string `json:"totalPrice"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		return data.TotalPrice
	}

	assert.Equal(t, "N/A", totalPrice())

	status, env, _ := do(t, app, http.MethodGet, "/api/users/1/orders", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"orders":[]}`, string(env.Data))

	for _, order := range []map[string]any{
		{"productName": "Pen", "price": 10, "quantity": 2},
		{"productName": "Book", "price": 5, "quantity": 3},
	} {
		status, env, raw := do(t, app, http.MethodPut, "/api/users/1/orders", order)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Order created successfully!", env.Message)
		assert.Contains(t, raw, `"data":null`)
	}

	status, env, _ = do(t, app, http.MethodGet, "/api/users/1/orders", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Orders fetched successfully!", env.Message)
	assert.JSONEq(t, `{"orders":[
		{"productName":"Pen","price":10,"quantity":2},
		{"productName":"Book","price":5,"quantity":3}
	]}`, string(env.Data))

	assert.Equal(t, "35.00", totalPrice())

	// Invalid orders are rejected without touching the stored ones.
	status, env, _ = do(t, app, http.MethodPut, "/api/users/1/orders", map[string]any{"productName": "", "price": 1, "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Failed to create order", env.Error.Description)
	assert.Equal(t, "35.00", totalPrice())
}

func TestOrders_UnknownUser(t *testing.T) {
	app := setupApp(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPut, "/api/users/9/orders"},
		{http.MethodGet, "/api/users/9/orders"},
		{http.MethodGet, "/api/users/9/orders/total-price"},
	} {
		t.Run(fmt.Sprintf("%s %s", tc.method, tc.path), func(t *testing.T) {
			var body any
			if tc.method == http.MethodPut {
				body = map[string]any{"productName": "Pen", "price": 1, "quantity": 1}
			}
			status, env, _ := do(t, app, tc.method, tc.path, body)
			assert.Equal(t, http.StatusNotFound, status)
			assert.Equal(t, "User not found!", env.Error.Description)
		})
	}
}

func mapKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
