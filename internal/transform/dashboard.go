package transform

import (
	"github.com/straye-as/earsip/internal/domain"
)

// NormalizeDashboard maps a raw dashboard payload. Missing aggregates and counters
// degrade to zero; only a non-object payload is an error.
func NormalizeDashboard(payload any) (domain.DashboardMetrics, error) {
	rec, ok := unwrapData(payload)
	if !ok {
		return domain.DashboardMetrics{}, shapeError("dashboard", "dashboard metrics")
	}

	return domain.DashboardMetrics{
		TotalIncoming:     countOr(rec, TotalIncomingKeys),
		TotalOutgoing:     countOr(rec, TotalOutgoingKeys),
		IncomingThisMonth: countOr(rec, IncomingThisMonthKeys),
		OutgoingThisMonth: countOr(rec, OutgoingThisMonthKeys),
		Chart:             NormalizeChart(rec),
	}, nil
}

// NormalizeReportsSummary maps a raw report summary payload
func NormalizeReportsSummary(payload any) (domain.ReportsSummary, error) {
	rec, ok := unwrapData(payload)
	if !ok {
		return domain.ReportsSummary{}, shapeError("reports_summary", "reports summary")
	}

	return domain.ReportsSummary{
		Summary: stringOr(rec, SummaryKeys, ""),
		Chart:   NormalizeChart(rec),
	}, nil
}

// NormalizeChart locates the chart series among ChartKeys and maps its points.
// The first non-empty series wins, else the first series present, else none.
func NormalizeChart(rec map[string]any) []domain.ChartPoint {
	series, ok := Resolve(rec, Keys(NonEmptyArray, ChartKeys...))
	if !ok {
		series, _ = Resolve(rec, Keys(Array, ChartKeys...))
	}

	points := make([]domain.ChartPoint, 0, len(series))
	for _, raw := range series {
		p, ok := Object(raw)
		if !ok {
			continue
		}
		points = append(points, domain.ChartPoint{
			Date:          stringOr(p, PointDateKeys, ""),
			IncomingCount: countOr(p, PointIncomingKeys),
			OutgoingCount: countOr(p, PointOutgoingKeys),
		})
	}
	return points
}

// NormalizeUser maps a raw user payload, accepting {data: user}, {user} or a bare object
func NormalizeUser(payload any) (domain.User, error) {
	obj, ok := Object(payload)
	if !ok {
		return domain.User{}, shapeError("user", "current user")
	}
	rec, ok := Resolve(obj, Keys(userObject, UserKeys...))
	if !ok {
		rec = obj
	}

	email, err := requiredString(rec, UserEmailKeys, "email", "current user")
	if err != nil {
		return domain.User{}, err
	}
	id, _ := Resolve(rec, Ints(UserIDKeys...))

	return domain.User{
		ID:    id,
		Name:  stringOr(rec, UserNameKeys, email),
		Email: email,
		Role:  stringOr(rec, UserRoleKeys, ""),
	}, nil
}

// NormalizeLogin extracts the bearer token and user from a login response
func NormalizeLogin(payload any) (domain.LoginResult, error) {
	obj, ok := Object(payload)
	if !ok {
		return domain.LoginResult{}, shapeError("login", "login")
	}
	token, ok := Resolve(obj, Strings(TokenKeys...))
	if !ok {
		return domain.LoginResult{}, missingError("token", "login")
	}

	result := domain.LoginResult{Token: token}
	if user, err := NormalizeUser(obj); err == nil {
		result.User = user
	}
	return result, nil
}

// userObject accepts an object that looks like a user record
func userObject(v any) (map[string]any, bool) {
	obj, ok := Object(v)
	if !ok {
		return nil, false
	}
	_, hasEmail := Resolve(obj, Strings(UserEmailKeys...))
	return obj, hasEmail
}

func countOr(rec map[string]any, keys []string) int {
	n, _ := Resolve(rec, Keys(Count, keys...))
	return n
}
