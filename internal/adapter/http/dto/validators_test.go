package dto

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func bindContext(body string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c
}

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := RegisterRequest{
		FirstName: "  Alice  ",
		LastName:  " Smith ",
		Email:     " alice@example.com ",
		Password:  "  pass1234  ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "Alice", req.FirstName)
	assert.Equal(t, "Smith", req.LastName)
	assert.Equal(t, "alice@example.com", req.Email)
	assert.Equal(t, "  pass1234  ", req.Password, "passwords are never altered")
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	var req struct {
		Note string
	}
	req.Note = "dinner <script>alert('x')</script>"
	SanitizeStruct(&req)

	assert.Contains(t, req.Note, "&lt;script&gt;")
	assert.NotContains(t, req.Note, "<script>")
}

func TestSanitizeStruct_DescriptionKeptVerbatim(t *testing.T) {
	req := SendMoneyRequest{Description: "  Tom & Jerry's <lunch>  "}
	SanitizeStruct(&req)

	assert.Equal(t, "Tom & Jerry's <lunch>", req.Description)
}

func TestBindJSON_DescriptionLengthCountsRawText(t *testing.T) {
	desc := strings.Repeat("a&", 100)
	body := `{"receiverId":"6f1c3a52-2b8e-4a8e-9a8b-1f2c3d4e5f60","amount":1,"description":"` + desc + `"}`

	var req SendMoneyRequest
	require.Nil(t, BindJSON(bindContext(body), &req))
	assert.Equal(t, desc, req.Description)
}

func TestSanitizeStruct_TrimModeKeepsMarkup(t *testing.T) {
	req := RegisterRequest{FirstName: " <b>Bob</b> "}
	SanitizeStruct(&req)

	assert.Equal(t, "<b>Bob</b>", req.FirstName)
}

func TestSanitizeStruct_HandlesPointerString(t *testing.T) {
	note := "  hello  "
	req := struct {
		Note *string
	}{Note: &note}
	SanitizeStruct(&req)

	assert.Equal(t, "hello", *req.Note)
}

func TestSanitizeStruct_IgnoresNonPointer(t *testing.T) {
	req := RegisterRequest{FirstName: "  Alice  "}
	SanitizeStruct(req)

	assert.Equal(t, "  Alice  ", req.FirstName)
}

// --- BindJSON tests ---

func TestBindJSON_Register_Valid(t *testing.T) {
	var req RegisterRequest
	appErr := BindJSON(bindContext(`{"firstName":" Alice ","lastName":"Smith","email":"alice@example.com","password":"secret1"}`), &req)

	require.Nil(t, appErr)
	assert.Equal(t, "Alice", req.FirstName)
}

func TestBindJSON_Register_FieldErrors(t *testing.T) {
	var req RegisterRequest
	appErr := BindJSON(bindContext(`{"firstName":"   ","lastName":"Smith","email":"not-an-email","password":"123"}`), &req)

	require.NotNil(t, appErr)
	assert.Equal(t, "VAL_001", appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)

	messages := map[string]string{}
	for _, f := range appErr.Fields {
		messages[f.Path] = f.Message
	}
	assert.Equal(t, "First name is required", messages["firstName"])
	assert.Equal(t, "Please enter a valid email address", messages["email"])
	assert.Equal(t, "Password must be at least 6 characters", messages["password"])
	assert.NotContains(t, messages, "lastName")
}

func TestBindJSON_Register_RejectsMarkupInNames(t *testing.T) {
	var req RegisterRequest
	appErr := BindJSON(bindContext(`{"firstName":"<b>Al</b>","lastName":"Smith","email":"a@example.com","password":"secret1"}`), &req)

	require.NotNil(t, appErr)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "firstName", appErr.Fields[0].Path)
	assert.Equal(t, "First name must not contain HTML", appErr.Fields[0].Message)
}

func TestBindJSON_Register_NameTooLong(t *testing.T) {
	var req RegisterRequest
	body := `{"firstName":"` + strings.Repeat("a", 51) + `","lastName":"Smith","email":"a@example.com","password":"secret1"}`
	appErr := BindJSON(bindContext(body), &req)

	require.NotNil(t, appErr)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "First name must not exceed 50 characters", appErr.Fields[0].Message)
}

func TestBindJSON_SendMoney(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		path    string
		message string
	}{
		{"valid number", `{"receiverId":"6f1c3a52-2b8e-4a8e-9a8b-1f2c3d4e5f60","amount":12.5}`, "", ""},
		{"valid string amount", `{"receiverId":"6f1c3a52-2b8e-4a8e-9a8b-1f2c3d4e5f60","amount":"0.01"}`, "", ""},
		{"bad id", `{"receiverId":"abc","amount":10}`, "receiverId", "Invalid ID format"},
		{"missing id", `{"amount":10}`, "receiverId", "Receiver ID is required"},
		{"zero amount", `{"receiverId":"6f1c3a52-2b8e-4a8e-9a8b-1f2c3d4e5f60","amount":0}`, "amount", "Amount must be positive"},
		{"negative amount", `{"receiverId":"6f1c3a52-2b8e-4a8e-9a8b-1f2c3d4e5f60","amount":-3}`, "amount", "Amount must be positive"},
		{"missing amount", `{"receiverId":"6f1c3a52-2b8e-4a8e-9a8b-1f2c3d4e5f60"}`, "amount", "Amount must be positive"},
		{"long description", `{"receiverId":"6f1c3a52-2b8e-4a8e-9a8b-1f2c3d4e5f60","amount":1,"description":"` + strings.Repeat("x", 201) + `"}`, "description", "Description must not exceed 200 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req SendMoneyRequest
			appErr := BindJSON(bindContext(tt.body), &req)
			if tt.path == "" {
				require.Nil(t, appErr)
				return
			}
			require.NotNil(t, appErr)
			require.Len(t, appErr.Fields, 1)
			assert.Equal(t, tt.path, appErr.Fields[0].Path)
			assert.Equal(t, tt.message, appErr.Fields[0].Message)
		})
	}
}

func TestBindJSON_SendMoney_KeepsPrecisionForEngine(t *testing.T) {
	var req SendMoneyRequest
	appErr := BindJSON(bindContext(`{"receiverId":"6f1c3a52-2b8e-4a8e-9a8b-1f2c3d4e5f60","amount":0.001}`), &req)

	require.Nil(t, appErr)
	assert.True(t, req.Amount.Equal(decimal.RequireFromString("0.001")))
}

func TestBindJSON_RespondAction(t *testing.T) {
	var ok RespondRequest
	require.Nil(t, BindJSON(bindContext(`{"action":"ACCEPT"}`), &ok))

	var bad RespondRequest
	appErr := BindJSON(bindContext(`{"action":"MAYBE"}`), &bad)
	require.NotNil(t, appErr)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "action", appErr.Fields[0].Path)
	assert.Equal(t, "Action must be either ACCEPT or REJECT", appErr.Fields[0].Message)
}

func TestBindJSON_InvalidJSON(t *testing.T) {
	var req LoginRequest
	appErr := BindJSON(bindContext(`{"email":`), &req)

	require.NotNil(t, appErr)
	assert.Equal(t, "Invalid JSON payload", appErr.Message)
}

func TestBindJSON_WrongType(t *testing.T) {
	var req LoginRequest
	appErr := BindJSON(bindContext(`{"email":42,"password":"x"}`), &req)

	require.NotNil(t, appErr)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "email", appErr.Fields[0].Path)
}

func TestBindJSON_BodyTooLarge(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"`+strings.Repeat("a", 64)+`"}`))
	c.Request.Body = http.MaxBytesReader(w, c.Request.Body, 16)

	var req LoginRequest
	appErr := BindJSON(c, &req)

	require.NotNil(t, appErr)
	assert.Equal(t, "VAL_002", appErr.Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, appErr.HTTPStatus)
}

// --- Response tests ---

func TestMoney_MarshalsTwoDecimals(t *testing.T) {
	out, err := json.Marshal(struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}{Money(decimal.NewFromInt(1000)), Money(decimal.RequireFromString("12.5"))})

	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1000.00,"b":12.50}`, string(out))
	assert.Contains(t, string(out), `"a":1000.00`)
}

func TestMoney_Unmarshal(t *testing.T) {
	var m Money
	require.NoError(t, json.Unmarshal([]byte(`999.50`), &m))
	assert.True(t, m.Decimal().Equal(decimal.RequireFromString("999.5")))
}
