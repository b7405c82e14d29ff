package fixture_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/earsip/internal/config"
	"github.com/straye-as/earsip/internal/fixture"
	"github.com/straye-as/earsip/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixtureClient struct {
	t     *testing.T
	http  *http.Client
	token string
}

func newFixtureClient(t *testing.T, letters int) (*fixtureClient, *fixture.Store) {
	t.Helper()
	cfg := &config.MockConfig{Enabled: true, Seed: 7, Letters: letters, Email: "admin@earsip.local", Password: "rahasia"}
	store, err := fixture.NewStore(cfg, func() time.Time { return fixedNow }, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	handler, err := fixture.NewHandler(store, cfg, zap.NewNop())
	require.NoError(t, err)
	return &fixtureClient{t: t, http: &http.Client{Transport: fixture.NewTransport(handler)}}, store
}

func (c *fixtureClient) do(method, path string, body any) (*http.Response, []byte) {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, fixture.BaseURL+path, reader)
	require.NoError(c.t, err)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, data
}

func (c *fixtureClient) login() {
	c.t.Helper()
	resp, data := c.do(http.MethodPost, "/login", map[string]string{"email": "Admin@earsip.local", "password": "rahasia"})
	require.Equal(c.t, http.StatusOK, resp.StatusCode)

	payload := decode(c.t, data)
	result, err := transform.NormalizeLogin(payload)
	require.NoError(c.t, err)
	assert.Equal(c.t, "admin@earsip.local", result.User.Email)
	c.token = result.Token
}

func decode(t *testing.T, data []byte) any {
	t.Helper()
	payload, err := transform.Decode(data)
	require.NoError(t, err)
	return payload
}

func TestHandler_Auth(t *testing.T) {
	c, _ := newFixtureClient(t, 0)

	t.Run("protected routes need a token", func(t *testing.T) {
		resp, _ := c.do(http.MethodGet, "/user", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong password is a validation error", func(t *testing.T) {
		resp, data := c.do(http.MethodPost, "/login", map[string]string{"email": "admin@earsip.local", "password": "salah"})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, string(data), "These credentials do not match our records.")
	})

	t.Run("login, current user and logout", func(t *testing.T) {
		c.login()

		resp, data := c.do(http.MethodGet, "/user", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		user, err := transform.NormalizeUser(decode(t, data))
		require.NoError(t, err)
		assert.Equal(t, "Admin Arsip", user.Name)
		assert.Equal(t, "admin", user.Role)

		resp, _ = c.do(http.MethodPost, "/logout", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp, _ = c.do(http.MethodGet, "/user", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestHandler_IncomingLettersSpeakLaravel(t *testing.T) {
	c, _ := newFixtureClient(t, 12)
	c.login()

	resp, data := c.do(http.MethodGet, "/surat-masuk?per_page=5&page=2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var raw struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw.Data, "current_page")
	assert.Contains(t, raw.Data, "data")

	page, err := transform.NormalizeIncomingPage(decode(t, data), transform.PageRequest{Page: 2, PerPage: 5})
	require.NoError(t, err)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, 12, page.Meta.Total)
	assert.Equal(t, 3, page.Meta.LastPage)
	require.NotNil(t, page.Meta.From)
	assert.Equal(t, 6, *page.Meta.From)
	assert.Equal(t, 10, *page.Meta.To)

	letter := page.Data[0]
	require.NotNil(t, letter.Category)
	assert.Equal(t, letter.CategoryID, letter.Category.ID)
	assert.NotEmpty(t, letter.Category.Name)
	assert.True(t, strings.HasSuffix(letter.LetterDate, "T00:00:00+07:00"), letter.LetterDate)
}

func TestHandler_OutgoingLettersSpeakMeta(t *testing.T) {
	c, _ := newFixtureClient(t, 4)
	c.login()

	resp, data := c.do(http.MethodGet, "/surat-keluar?limit=3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page, err := transform.NormalizeOutgoingPage(decode(t, data), transform.PageRequest{Page: 1, PerPage: 3})
	require.NoError(t, err)
	assert.Len(t, page.Data, 3)
	assert.Equal(t, 4, page.Meta.Total)
	assert.Equal(t, 3, page.Meta.PerPage)
	assert.Equal(t, 2, page.Meta.LastPage)
	assert.Equal(t, 1, *page.Meta.From)
	assert.Equal(t, 3, *page.Meta.To)
	assert.Len(t, page.Data[0].LetterDate, len("2025-01-01"))
}

func TestHandler_IncomingLetterLifecycle(t *testing.T) {
	c, store := newFixtureClient(t, 0)
	c.login()
	category := firstCategory(t, store)

	t.Run("missing fields answer 422", func(t *testing.T) {
		resp, data := c.do(http.MethodPost, "/surat-masuk", map[string]any{"perihal": "Tanpa nomor"})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var body struct {
			Errors map[string][]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(data, &body))
		assert.Contains(t, body.Errors, "nomor_surat")
		assert.Contains(t, body.Errors, "tanggal_surat")
		assert.Contains(t, body.Errors, "kategori_id")
		assert.NotContains(t, body.Errors, "perihal")
	})

	t.Run("unknown category answers 422", func(t *testing.T) {
		resp, _ := c.do(http.MethodPost, "/surat-masuk", map[string]any{
			"nomor_surat": "1/A", "perihal": "x", "tanggal_surat": "2025-06-01", "category_id": 999,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	var id int64
	t.Run("create", func(t *testing.T) {
		resp, data := c.do(http.MethodPost, "/surat-masuk", map[string]any{
			"nomor_surat":   "005/UND/2025",
			"perihal":       "Undangan musyawarah",
			"pengirim":      "Camat Sungai Raya",
			"tanggal_surat": "2025-06-03",
			"category_id":   category.ID,
			"kecamatan":     "Sungai Raya",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		letter, err := transform.NormalizeIncoming(decode(t, data), "create")
		require.NoError(t, err)
		assert.Equal(t, "005/UND/2025", letter.LetterNumber)
		assert.Equal(t, "2025-06-03T00:00:00+07:00", letter.ReceivedDate)
		require.NotNil(t, letter.District)
		assert.Equal(t, "Sungai Raya", *letter.District)
		id = letter.ID
	})

	path := "/surat-masuk/" + jsonNumber(id)

	t.Run("update", func(t *testing.T) {
		resp, data := c.do(http.MethodPut, path, map[string]any{"perihal": "Undangan ulang", "kecamatan": nil})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		letter, err := transform.NormalizeIncoming(decode(t, data), "update")
		require.NoError(t, err)
		assert.Equal(t, "Undangan ulang", letter.Subject)
		assert.Nil(t, letter.District)
		assert.Equal(t, "005/UND/2025", letter.LetterNumber)
	})

	t.Run("delete", func(t *testing.T) {
		resp, data := c.do(http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Empty(t, data)

		resp, _ = c.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestHandler_Dashboard(t *testing.T) {
	c, _ := newFixtureClient(t, 10)
	c.login()

	resp, data := c.do(http.MethodGet, "/dashboard/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	metrics, err := transform.NormalizeDashboard(decode(t, data))
	require.NoError(t, err)
	assert.Equal(t, 10, metrics.TotalIncoming)
	assert.Equal(t, 10, metrics.TotalOutgoing)
	require.Len(t, metrics.Chart, 6)
	assert.Equal(t, "2025-06", metrics.Chart[5].Date)
}

func TestHandler_Reports(t *testing.T) {
	c, _ := newFixtureClient(t, 0)
	c.login()

	t.Run("summary", func(t *testing.T) {
		resp, data := c.do(http.MethodGet, "/reports/summary?period=yearly&year=2025", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		summary, err := transform.NormalizeReportsSummary(decode(t, data))
		require.NoError(t, err)
		assert.Equal(t, "Pada tahun 2025 tercatat 0 surat masuk dan 0 surat keluar.", summary.Summary)
		assert.Len(t, summary.Chart, 12)
	})

	t.Run("export", func(t *testing.T) {
		resp, data := c.do(http.MethodPost, "/reports/export", map[string]any{"entity": "incoming", "month": "2", "year": 2025})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Equal(t, `attachment; filename="laporan-incoming-2025-02.pdf"`, resp.Header.Get("Content-Disposition"))
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF-1.4")))
		assert.True(t, bytes.HasSuffix(data, []byte("%%EOF\n")))
		assert.Contains(t, string(data), "bulan Februari 2025")
	})
}

func TestTransport_HonoursCancelledContext(t *testing.T) {
	c, _ := newFixtureClient(t, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fixture.BaseURL+"/", nil)
	require.NoError(t, err)

	_, err = c.http.Do(req)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTransport_IgnoresCallerRouteContext(t *testing.T) {
	c, _ := newFixtureClient(t, 0)

	parent := chi.NewRouteContext()
	parent.RoutePath = "/api/auth/login"
	parent.URLParams.Add("id", "99")
	ctx := context.WithValue(context.Background(), chi.RouteCtxKey, parent)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fixture.BaseURL+"/", nil)
	require.NoError(t, err)
	resp, err := c.http.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := json.Marshal(map[string]string{"email": "admin@earsip.local", "password": "rahasia"})
	require.NoError(t, err)
	req, err = http.NewRequestWithContext(ctx, http.MethodPost, fixture.BaseURL+"/login", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err = c.http.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/api/auth/login", parent.RoutePath)
}

func jsonNumber(n int64) string {
	data, _ := json.Marshal(n)
	return string(data)
}
