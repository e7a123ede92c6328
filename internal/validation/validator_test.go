package validation_test

import (
	"encoding/json"
	"strings"
	"testing"

	"usersvc/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validUser() map[string]any {
	return map[string]any{
		"userId":   1,
		"username": "jdoe",
		"password": "secret",
		"fullName": map[string]any{"firstName": "John", "lastName": "Doe"},
		"age":      30,
		"email":    "john@example.com",
		"isActive": false,
		"hobbies":  []string{"chess", "hiking"},
		"address":  map[string]any{"street": "1 Main St", "city": "Dhaka", "country": "Bangladesh"},
	}
}

func encode(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func violationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	out := make(map[string]string, len(verr.Violations))
	for _, v := range verr.Violations {
		out[v.Field] = v.Constraint
	}
	return out
}

func TestValidator_User_Valid(t *testing.T) {
	v := validation.New()

	user, err := v.User(encode(t, validUser()))
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.UserID)
	assert.Equal(t, "jdoe", user.Username)
	assert.Equal(t, "secret", user.Password)
	assert.Equal(t, "John", user.FullName.FirstName)
	assert.False(t, user.IsActive)
	assert.Equal(t, []string{"chess", "hiking"}, user.Hobbies)
	assert.Equal(t, "Dhaka", user.Address.City)
	assert.Nil(t, user.Orders)
}

func TestValidator_User_TrimsNames(t *testing.T) {
	payload := validUser()
	payload["fullName"] = map[string]any{"firstName": "  John ", "lastName": "Doe\t"}

	user, err := validation.New().User(encode(t, payload))
	require.NoError(t, err)
	assert.Equal(t, "John", user.FullName.FirstName)
	assert.Equal(t, "Doe", user.FullName.LastName)
}

func TestValidator_User_ZeroValuesAccepted(t *testing.T) {
	payload := validUser()
	payload["age"] = 0
	payload["hobbies"] = []string{}

	user, err := validation.New().User(encode(t, payload))
	require.NoError(t, err)
	assert.Zero(t, user.Age)
	assert.Empty(t, user.Hobbies)
}

func TestValidator_User_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(p map[string]any)
		field      string
		constraint string
	}{
		{"lowercase first name", func(p map[string]any) {
			p["fullName"] = map[string]any{"firstName": "john", "lastName": "Doe"}
		}, "fullName.firstName", "capitalized"},
		{"lowercase last name", func(p map[string]any) {
			p["fullName"] = map[string]any{"firstName": "John", "lastName": "doe"}
		}, "fullName.lastName", "capitalized"},
		{"leading space hides lowercase", func(p map[string]any) {
			p["fullName"] = map[string]any{"firstName": " john", "lastName": "Doe"}
		}, "fullName.firstName", "capitalized"},
		{"blank last name", func(p map[string]any) {
			p["fullName"] = map[string]any{"firstName": "John", "lastName": "   "}
		}, "fullName.lastName", "min"},
		{"first name too long", func(p map[string]any) {
			p["fullName"] = map[string]any{"firstName": "A" + strings.Repeat("b", 20), "lastName": "Doe"}
		}, "fullName.firstName", "max"},
		{"missing userId", func(p map[string]any) { delete(p, "userId") }, "userId", "required"},
		{"missing password", func(p map[string]any) { delete(p, "password") }, "password", "required"},
		{"password too long", func(p map[string]any) { p["password"] = strings.Repeat("x", 73) }, "password", "max"},
		{"empty username", func(p map[string]any) { p["username"] = "" }, "username", "min"},
		{"missing isActive", func(p map[string]any) { delete(p, "isActive") }, "isActive", "required"},
		{"missing hobbies", func(p map[string]any) { delete(p, "hobbies") }, "hobbies", "required"},
		{"bad email", func(p map[string]any) { p["email"] = "not-an-email" }, "email", "email"},
		{"empty city", func(p map[string]any) {
			p["address"] = map[string]any{"street": "1 Main St", "city": "", "country": "Bangladesh"}
		}, "address.city", "min"},
		{"missing address", func(p map[string]any) { delete(p, "address") }, "address", "required"},
		{"age as string", func(p map[string]any) { p["age"] = "thirty" }, "age", "type"},
		{"isActive as string", func(p map[string]any) { p["isActive"] = "yes" }, "isActive", "type"},
		{"null hobby", func(p map[string]any) { p["hobbies"] = []any{"chess", nil} }, "hobbies[1]", "required"},
		{"hobbies of numbers", func(p map[string]any) { p["hobbies"] = []int{1, 2} }, "hobbies", "type"},
	}

	v := validation.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validUser()
			tt.mutate(payload)

			_, err := v.User(encode(t, payload))
			require.Error(t, err)
			fields := violationFields(t, err)
			assert.Equal(t, tt.constraint, fields[tt.field], "violations: %v", fields)
		})
	}
}

func TestValidator_User_ReportsEveryViolation(t *testing.T) {
	payload := validUser()
	delete(payload, "username")
	payload["email"] = "nope"

	_, err := validation.New().User(encode(t, payload))
	fields := violationFields(t, err)
	assert.Equal(t, "required", fields["username"])
	assert.Equal(t, "email", fields["email"])
}

func TestValidator_MalformedBody(t *testing.T) {
	v := validation.New()

	for name, body := range map[string]string{
		"empty":    "",
		"syntax":   `{"userId":`,
		"trailing": `{} {}`,
		"array":    `[]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.User([]byte(body))
			fields := violationFields(t, err)
			assert.Contains(t, fields, "body")
		})
	}
}

func TestValidator_Order(t *testing.T) {
	v := validation.New()

	order, err := v.Order([]byte(`{"productName":"Pen","price":10,"quantity":2}`))
	require.NoError(t, err)
	assert.Equal(t, "Pen", order.ProductName)
	assert.Equal(t, 10.0, order.Price)
	assert.Equal(t, 2.0, order.Quantity)

	_, err = v.Order([]byte(`{"productName":"","price":10,"quantity":2}`))
	assert.Equal(t, "min", violationFields(t, err)["productName"])

	_, err = v.Order([]byte(`{"productName":"Pen","price":"10"}`))
	assert.Equal(t, "type", violationFields(t, err)["price"])

	_, err = v.Order([]byte(`{"productName":"Pen","price":10}`))
	assert.Equal(t, "required", violationFields(t, err)["quantity"])
}

func TestNew_RegistersRules(t *testing.T) {
	assert.NotPanics(t, func() { validation.New() })
}
