package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/api/middleware"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

var operatorClaims = &ports.Claims{
	UserID:     "64b000000000000000000001",
	EmployeeID: "OP1",
	Name:       "Ravi Kumar",
	Role:       domain.RoleOperator,
	TokenID:    "tok-1",
}

// newCtx builds an echo context with the validator installed. Non-nil claims
// are injected the way the Auth middleware does.
func newCtx(method, target, body string, claims *ports.Claims) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claims != nil {
		c.Set(middleware.ClaimsKey, claims)
	}
	return c, rec
}

func withParams(c echo.Context, kv ...string) echo.Context {
	var names, values []string
	for i := 0; i+1 < len(kv); i += 2 {
		names = append(names, kv[i])
		values = append(values, kv[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c
}

func expectHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError %d, got %v", code, err)
	}
	if he.Code != code {
		t.Fatalf("expected status %d, got %d (%v)", code, he.Code, he.Message)
	}
}

// Stubs embed the port so each test only implements what it calls.

type stubAuthService struct {
	ports.AuthService
	loginFn          func(ctx context.Context, employeeID, password string) (string, *domain.User, error)
	logoutFn         func(ctx context.Context, claims *ports.Claims) error
	changePasswordFn func(ctx context.Context, actor ports.Actor, employeeID, newPassword string) error
}

func (s *stubAuthService) Login(ctx context.Context, employeeID, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, employeeID, password)
}

func (s *stubAuthService) Logout(ctx context.Context, claims *ports.Claims) error {
	return s.logoutFn(ctx, claims)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, actor ports.Actor, employeeID, newPassword string) error {
	return s.changePasswordFn(ctx, actor, employeeID, newPassword)
}

type stubUserService struct {
	ports.UserService
	getFn    func(ctx context.Context, id string) (*domain.User, error)
	createFn func(ctx context.Context, in ports.CreateUserInput) (*ports.CreatedUser, error)
	toggleFn func(ctx context.Context, actor ports.Actor, id string) (*domain.User, error)
	themeFn  func(ctx context.Context, actor ports.Actor, theme string) error
}

func (s *stubUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) Create(ctx context.Context, in ports.CreateUserInput) (*ports.CreatedUser, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) ToggleStatus(ctx context.Context, actor ports.Actor, id string) (*domain.User, error) {
	return s.toggleFn(ctx, actor, id)
}

func (s *stubUserService) SetTheme(ctx context.Context, actor ports.Actor, theme string) error {
	return s.themeFn(ctx, actor, theme)
}

type stubReportService struct {
	ports.ReportService
	listFn   func(ctx context.Context, kind domain.ReportKind, f ports.ReportFilter) ([]*domain.Report, error)
	createFn func(ctx context.Context, kind domain.ReportKind, in ports.ReportInput, actor ports.Actor) (*domain.Report, error)
	existsFn func(ctx context.Context, kind domain.ReportKind, name, excludeID string) (bool, error)
	signFn   func(ctx context.Context, kind domain.ReportKind, id, section string, actor ports.Actor) (*domain.Report, error)
	exportFn func(ctx context.Context, kind domain.ReportKind, id string, actor ports.Actor) (*ports.ExportFile, error)
}

func (s *stubReportService) List(ctx context.Context, kind domain.ReportKind, f ports.ReportFilter) ([]*domain.Report, error) {
	return s.listFn(ctx, kind, f)
}

func (s *stubReportService) Create(ctx context.Context, kind domain.ReportKind, in ports.ReportInput, actor ports.Actor) (*domain.Report, error) {
	return s.createFn(ctx, kind, in, actor)
}

func (s *stubReportService) NameExists(ctx context.Context, kind domain.ReportKind, name, excludeID string) (bool, error) {
	return s.existsFn(ctx, kind, name, excludeID)
}

func (s *stubReportService) Sign(ctx context.Context, kind domain.ReportKind, id, section string, actor ports.Actor) (*domain.Report, error) {
	return s.signFn(ctx, kind, id, section, actor)
}

func (s *stubReportService) ExportStored(ctx context.Context, kind domain.ReportKind, id string, actor ports.Actor) (*ports.ExportFile, error) {
	return s.exportFn(ctx, kind, id, actor)
}

type stubInspectionService struct {
	ports.InspectionService
	lineDataFn   func(ctx context.Context, line int, typ string, q ports.InspectionQuery) ([]ports.Document, error)
	combinedFn   func(ctx context.Context, typ string, q ports.InspectionQuery) ([]ports.Document, error)
	defectsFn    func(ctx context.Context, typ string, line, topN int) (*ports.DefectAnalysis, error)
	productionFn func(ctx context.Context, typ string, line int) (map[string]map[string]ports.LineProduction, error)
	seriesFn     func(ctx context.Context, r domain.DateRange, typ, metric string) (map[string]ports.MetricSeries, error)
}

func (s *stubInspectionService) LineData(ctx context.Context, line int, typ string, q ports.InspectionQuery) ([]ports.Document, error) {
	return s.lineDataFn(ctx, line, typ, q)
}

func (s *stubInspectionService) CombinedData(ctx context.Context, typ string, q ports.InspectionQuery) ([]ports.Document, error) {
	return s.combinedFn(ctx, typ, q)
}

func (s *stubInspectionService) DefectAnalysis(ctx context.Context, typ string, line, topN int) (*ports.DefectAnalysis, error) {
	return s.defectsFn(ctx, typ, line, topN)
}

func (s *stubInspectionService) Production(ctx context.Context, typ string, line int) (map[string]map[string]ports.LineProduction, error) {
	return s.productionFn(ctx, typ, line)
}

func (s *stubInspectionService) DateRangeSeries(ctx context.Context, r domain.DateRange, typ, metric string) (map[string]ports.MetricSeries, error) {
	return s.seriesFn(ctx, r, typ, metric)
}

type stubBGradeService struct {
	ports.BGradeService
	gradeFn  func(ctx context.Context, r domain.DateRange) (*domain.GradeAnalysis, error)
	reasonFn func(ctx context.Context, r domain.DateRange, topN int) (*domain.ReasonAnalysis, error)
	trendFn  func(ctx context.Context, r domain.DateRange, analysisType string) ([]domain.TrendPoint, error)
	pageFn   func(ctx context.Context, collection string, limit, skip int64) (*ports.RecordPage, error)
}

func (s *stubBGradeService) GradeAnalysis(ctx context.Context, r domain.DateRange) (*domain.GradeAnalysis, error) {
	return s.gradeFn(ctx, r)
}

func (s *stubBGradeService) DefectAnalysis(ctx context.Context, r domain.DateRange, topN int) (*domain.ReasonAnalysis, error) {
	return s.reasonFn(ctx, r, topN)
}

func (s *stubBGradeService) DailyTrend(ctx context.Context, r domain.DateRange, analysisType string) ([]domain.TrendPoint, error) {
	return s.trendFn(ctx, r, analysisType)
}

func (s *stubBGradeService) CollectionData(ctx context.Context, collection string, limit, skip int64) (*ports.RecordPage, error) {
	return s.pageFn(ctx, collection, limit, skip)
}

type stubPeelService struct {
	ports.PeelService
	dataFn        func(ctx context.Context, q domain.PeelQuery) ([]ports.Document, error)
	graphFn       func(ctx context.Context, q domain.GraphQuery) ([]domain.GraphPoint, error)
	collectionsFn func(ctx context.Context) (map[string]int64, error)
}

func (s *stubPeelService) Data(ctx context.Context, q domain.PeelQuery) ([]ports.Document, error) {
	return s.dataFn(ctx, q)
}

func (s *stubPeelService) Graph(ctx context.Context, q domain.GraphQuery) ([]domain.GraphPoint, error) {
	return s.graphFn(ctx, q)
}

func (s *stubPeelService) Collections(ctx context.Context) (map[string]int64, error) {
	return s.collectionsFn(ctx)
}

type stubIPQCService struct {
	ports.IPQCService
	listFn   func(ctx context.Context, includeData bool) ([]*domain.IPQCAudit, error)
	searchFn func(ctx context.Context, f domain.IPQCFilter) ([]*domain.IPQCAudit, error)
	existsFn func(ctx context.Context, name, excludeID string) (bool, error)
	createFn func(ctx context.Context, in ports.IPQCAuditInput, actor ports.Actor) (*domain.IPQCAudit, error)
	exportFn func(ctx context.Context, id string) (*ports.ExportFile, error)
}

func (s *stubIPQCService) List(ctx context.Context, includeData bool) ([]*domain.IPQCAudit, error) {
	return s.listFn(ctx, includeData)
}

func (s *stubIPQCService) Search(ctx context.Context, f domain.IPQCFilter) ([]*domain.IPQCAudit, error) {
	return s.searchFn(ctx, f)
}

func (s *stubIPQCService) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	return s.existsFn(ctx, name, excludeID)
}

func (s *stubIPQCService) Create(ctx context.Context, in ports.IPQCAuditInput, actor ports.Actor) (*domain.IPQCAudit, error) {
	return s.createFn(ctx, in, actor)
}

func (s *stubIPQCService) Export(ctx context.Context, id string) (*ports.ExportFile, error) {
	return s.exportFn(ctx, id)
}
