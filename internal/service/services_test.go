package service_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"

	"github.com/straye-as/earsip/internal/apiclient"
	"github.com/straye-as/earsip/internal/config"
	"github.com/straye-as/earsip/internal/domain"
	"github.com/straye-as/earsip/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testEmail    = "admin@earsip.local"
	testPassword = "rahasia"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "e-arsip", Version: "test", Environment: "test"},
		Upstream: config.UpstreamConfig{
			BaseURL:          "http://upstream.invalid",
			Timeout:          5,
			CategoryCacheTTL: 300,
		},
		Mock: config.MockConfig{
			Enabled:  true,
			Seed:     11,
			Letters:  15,
			Email:    testEmail,
			Password: testPassword,
		},
		Pagination: config.PaginationConfig{DefaultPerPage: 10, MaxPerPage: 100},
		Auth:       config.AuthConfig{LoginPath: "/login", LogoutPath: "/logout", UserPath: "/user"},
	}
}

func setup(t *testing.T) *service.Services {
	t.Helper()
	svc, err := service.New(testConfig(), nil, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	require.True(t, svc.Mock())
	return svc
}

func login(t *testing.T, svc *service.Services) {
	t.Helper()
	_, err := svc.Auth.Login(context.Background(), domain.LoginInput{Email: testEmail, Password: testPassword})
	require.NoError(t, err)
}

func TestAuthService_Lifecycle(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	_, err := svc.Auth.Me(ctx)
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = svc.Auth.Login(ctx, domain.LoginInput{Email: testEmail, Password: "salah"})
	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.False(t, svc.Session.Authenticated())

	_, err = svc.Auth.Login(ctx, domain.LoginInput{Email: "not-an-email", Password: "x"})
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)

	result, err := svc.Auth.Login(ctx, domain.LoginInput{Email: testEmail, Password: testPassword})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, testEmail, result.User.Email)
	assert.Equal(t, result.Token, svc.Session.Token())

	me, err := svc.Auth.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Admin Arsip", me.Name)

	token := svc.Session.Token()
	require.NoError(t, svc.Auth.Logout(ctx))
	assert.False(t, svc.Session.Authenticated())
	require.NoError(t, svc.Auth.Logout(ctx))

	// A revoked token is rejected upstream and drops the session
	svc.Session.SetToken(token)
	_, err = svc.Auth.Me(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.False(t, svc.Session.Authenticated())
}

func TestIncomingLetterService_ListPages(t *testing.T) {
	svc := setup(t)
	login(t, svc)
	ctx := context.Background()

	first, err := svc.Incoming.List(ctx, domain.LetterFilter{})
	require.NoError(t, err)
	assert.Len(t, first.Data, 10)
	assert.Equal(t, 15, first.Meta.Total)
	assert.Equal(t, 2, first.Meta.LastPage)

	second, err := svc.Incoming.List(ctx, domain.LetterFilter{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second.Data, 5)
	require.NotNil(t, second.Meta.From)
	require.NotNil(t, second.Meta.To)
	assert.Equal(t, 11, *second.Meta.From)
	assert.Equal(t, 15, *second.Meta.To)

	for _, letter := range first.Data {
		assert.NotZero(t, letter.ID)
		assert.NotEmpty(t, letter.LetterNumber)
		assert.NotZero(t, letter.CategoryID)
	}
}

func TestIncomingLetterService_CreateRules(t *testing.T) {
	svc := setup(t)
	login(t, svc)
	ctx := context.Background()

	_, err := svc.Incoming.Create(ctx, domain.IncomingLetterInput{Subject: domain.StringPtr("Rapat")})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	fields := ve.Fields()
	assert.Contains(t, fields, "letter_number")
	assert.Contains(t, fields, "letter_date")
	assert.Contains(t, fields, "category_id")

	_, err = svc.Incoming.Create(ctx, domain.IncomingLetterInput{
		LetterNumber: domain.StringPtr("900/01/2025"),
		Subject:      domain.StringPtr("Rapat"),
		LetterDate:   domain.StringPtr("2025-05-02"),
		CategoryID:   domain.Int64Ptr(999),
	})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "category_id", ve.Path)

	_, err = svc.Incoming.Get(ctx, 0)
	assert.ErrorIs(t, err, service.ErrInvalidID)
}

func TestIncomingLetterService_CRUD(t *testing.T) {
	svc := setup(t)
	login(t, svc)
	ctx := context.Background()

	categories, err := svc.Categories.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, categories)
	categoryID := categories[0].ID

	created, err := svc.Incoming.Create(ctx, domain.IncomingLetterInput{
		LetterNumber: domain.StringPtr("900/77/2025"),
		Subject:      domain.StringPtr("Undangan musyawarah desa"),
		Sender:       domain.StringPtr("Kepala Desa Kapur"),
		LetterDate:   domain.StringPtr("2025-05-02"),
		CategoryID:   domain.Int64Ptr(categoryID),
		District:     domain.StringPtr("Sungai Raya"),
	})
	require.NoError(t, err)
	assert.Equal(t, "900/77/2025", created.LetterNumber)
	assert.Equal(t, categoryID, created.CategoryID)
	require.NotNil(t, created.Category)
	assert.Equal(t, categories[0].Name, created.Category.Name)

	updated, err := svc.Incoming.Update(ctx, created.ID, domain.IncomingLetterInput{Subject: domain.StringPtr("Undangan rapat")})
	require.NoError(t, err)
	assert.Equal(t, "Undangan rapat", updated.Subject)
	assert.Equal(t, "900/77/2025", updated.LetterNumber)

	got, err := svc.Incoming.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Undangan rapat", got.Subject)

	require.NoError(t, svc.Incoming.Delete(ctx, created.ID))

	_, err = svc.Incoming.Get(ctx, created.ID)
	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.True(t, errors.Is(err, apiclient.ErrHTTP))
}

func TestOutgoingLetterService_CreateAndList(t *testing.T) {
	svc := setup(t)
	login(t, svc)
	ctx := context.Background()

	categories, err := svc.Categories.List(ctx)
	require.NoError(t, err)

	created, err := svc.Outgoing.Create(ctx, domain.OutgoingLetterInput{
		LetterNumber: domain.StringPtr("005/12/2025"),
		Subject:      domain.StringPtr("Pemberitahuan jadwal"),
		Recipient:    domain.StringPtr("Camat Sungai Kakap"),
		LetterDate:   domain.StringPtr("2025-06-03"),
		CategoryID:   domain.Int64Ptr(categories[1].ID),
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-03", created.LetterDate)
	assert.Equal(t, "Camat Sungai Kakap", created.Recipient)

	page, err := svc.Outgoing.List(ctx, domain.LetterFilter{Q: "005/12/2025", PerPage: 5})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, created.ID, page.Data[0].ID)
	assert.Equal(t, 5, page.Meta.PerPage)
}

func TestCategoryService_DuplicateNameAndLabel(t *testing.T) {
	svc := setup(t)
	login(t, svc)
	ctx := context.Background()

	created, err := svc.Categories.Create(ctx, domain.CategoryInput{Name: "Arsip Lama"})
	require.NoError(t, err)
	assert.Equal(t, "Arsip Lama", svc.Categories.Label(ctx, created.ID))

	_, err = svc.Categories.Create(ctx, domain.CategoryInput{Name: "arsip lama"})
	var apiErr *apiclient.Error
	if assert.ErrorAs(t, err, &apiErr) {
		assert.GreaterOrEqual(t, apiErr.Status, 400)
	}

	require.NoError(t, svc.Categories.Delete(ctx, created.ID))
	assert.Equal(t, "#"+strconv.FormatInt(created.ID, 10), svc.Categories.Label(ctx, created.ID))
}

func TestDashboardService_Metrics(t *testing.T) {
	svc := setup(t)
	login(t, svc)

	metrics, err := svc.Dashboard.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15, metrics.TotalIncoming)
	assert.Equal(t, 15, metrics.TotalOutgoing)
	assert.Len(t, metrics.Chart, 6)
}

func TestReportService_SummaryAndExport(t *testing.T) {
	svc := setup(t)
	login(t, svc)
	ctx := context.Background()

	summary, err := svc.Reports.Summary(ctx, domain.ReportFilter{Period: domain.ReportPeriodYearly, Year: 2025})
	require.NoError(t, err)
	assert.Len(t, summary.Chart, 12)
	assert.Contains(t, summary.Summary, "2025")

	file, err := svc.Reports.Export(ctx, domain.ReportFilter{Entity: domain.ReportEntityOutgoing, Month: 2, Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, "laporan-outgoing-2025-02.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF-")))

	_, err = svc.Reports.Export(ctx, domain.ReportFilter{Entity: "everything"})
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestServices_ForkHasOwnSession(t *testing.T) {
	svc := setup(t)
	login(t, svc)

	fork := svc.Fork(nil)
	assert.True(t, fork.Mock())
	assert.False(t, fork.Session.Authenticated())

	_, err := fork.Dashboard.Metrics(context.Background())
	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	assert.True(t, svc.Session.Authenticated())
	assert.NoError(t, fork.Close())
}
