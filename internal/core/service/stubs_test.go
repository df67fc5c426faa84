package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

// withinRange reports whether the YYYY-MM-DD prefix of s lies in r.
func withinRange(r domain.DateRange, s string) bool {
	if r.IsZero() {
		return true
	}
	if len(s) < 10 {
		return false
	}
	d, err := time.Parse(domain.DateLayout, s[:10])
	if err != nil {
		return false
	}
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	return r.To.IsZero() || !d.After(r.To)
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users  map[string]*domain.User // keyed by employee id
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if _, exists := r.users[u.EmployeeID]; exists {
		return nil, domain.ErrUserExists
	}
	c := cloneUser(u)
	r.nextID++
	c.ID = fmt.Sprintf("u%d", r.nextID)
	r.users[c.EmployeeID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmployeeID(_ context.Context, employeeID string) (*domain.User, error) {
	u, ok := r.users[employeeID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := r.users[u.EmployeeID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[u.EmployeeID] = cloneUser(u)
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	for k, u := range r.users {
		if u.ID == id {
			delete(r.users, k)
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r *stubUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type stubTokenStore struct {
	revoked  map[string]time.Time
	users    map[string]time.Time
	checkErr error
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{revoked: make(map[string]time.Time), users: make(map[string]time.Time)}
}

func (s *stubTokenStore) RevokeUser(_ context.Context, userID string, at time.Time, _ time.Duration) error {
	s.users[userID] = at.Truncate(time.Second)
	return nil
}

func (s *stubTokenStore) RevokedBefore(_ context.Context, userID string) (time.Time, error) {
	if s.checkErr != nil {
		return time.Time{}, s.checkErr
	}
	return s.users[userID], nil
}

func (s *stubTokenStore) Revoke(_ context.Context, id string, until time.Time) error {
	s.revoked[id] = until
	return nil
}

func (s *stubTokenStore) IsRevoked(_ context.Context, id string) (bool, error) {
	if s.checkErr != nil {
		return false, s.checkErr
	}
	_, ok := s.revoked[id]
	return ok, nil
}

// ---------------------------------------------------------------------------
// Reports
// ---------------------------------------------------------------------------

type stubReportRepo struct {
	reports map[string]*domain.Report
	nextID  int
}

func newStubReportRepo() *stubReportRepo {
	return &stubReportRepo{reports: make(map[string]*domain.Report)}
}

func cloneReport(r *domain.Report) *domain.Report {
	c := *r
	c.FormData = make(map[string]any, len(r.FormData))
	for k, v := range r.FormData {
		c.FormData[k] = v
	}
	return &c
}

func (r *stubReportRepo) Create(_ context.Context, rep *domain.Report) error {
	r.nextID++
	rep.ID = fmt.Sprintf("r%d", r.nextID)
	r.reports[rep.ID] = cloneReport(rep)
	return nil
}

func (r *stubReportRepo) FindByID(_ context.Context, kind domain.ReportKind, id string) (*domain.Report, error) {
	rep, ok := r.reports[id]
	if !ok || rep.Kind != kind {
		return nil, domain.ErrReportNotFound
	}
	return cloneReport(rep), nil
}

func (r *stubReportRepo) List(_ context.Context, kind domain.ReportKind, f ports.ReportFilter) ([]*domain.Report, error) {
	var out []*domain.Report
	for _, rep := range r.reports {
		if rep.Kind != kind || !withinRange(f.Range, rep.Timestamp) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(rep.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, cloneReport(rep))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

func (r *stubReportRepo) Update(_ context.Context, rep *domain.Report) error {
	if _, ok := r.reports[rep.ID]; !ok {
		return domain.ErrReportNotFound
	}
	r.reports[rep.ID] = cloneReport(rep)
	return nil
}

func (r *stubReportRepo) Delete(_ context.Context, kind domain.ReportKind, id string) error {
	rep, ok := r.reports[id]
	if !ok || rep.Kind != kind {
		return domain.ErrReportNotFound
	}
	delete(r.reports, id)
	return nil
}

func (r *stubReportRepo) NameExists(_ context.Context, kind domain.ReportKind, name, excludeID string) (bool, error) {
	for id, rep := range r.reports {
		if rep.Kind == kind && rep.Name == name && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type stubExporter struct {
	exported []*domain.Report
}

func (e *stubExporter) Export(_ context.Context, r *domain.Report) (*ports.ExportFile, error) {
	e.exported = append(e.exported, r)
	return &ports.ExportFile{Name: r.Name + ".xlsx", Data: []byte("xlsx")}, nil
}

type stubRecorder struct {
	entries []*domain.AuditEntry
}

func (s *stubRecorder) Record(e *domain.AuditEntry) { s.entries = append(s.entries, e) }

func (s *stubRecorder) actions() []domain.AuditAction {
	out := make([]domain.AuditAction, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Action
	}
	return out
}

type stubAuditRepo struct {
	entries []*domain.AuditEntry
}

func (s *stubAuditRepo) Insert(_ context.Context, e *domain.AuditEntry) error {
	s.entries = append(s.entries, e)
	return nil
}

func (s *stubAuditRepo) ListByReport(_ context.Context, kind domain.ReportKind, id string) ([]*domain.AuditEntry, error) {
	var out []*domain.AuditEntry
	for _, e := range s.entries {
		if e.Kind == kind && e.ReportID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Analytics
// ---------------------------------------------------------------------------

type stubInspectionRepo struct {
	rows      map[string][]ports.Document
	summaries map[string]ports.Document
	replaced  map[string]domain.InspectionSummary
	queries   []ports.InspectionQuery
}

func newStubInspectionRepo() *stubInspectionRepo {
	return &stubInspectionRepo{
		rows:      make(map[string][]ports.Document),
		summaries: make(map[string]ports.Document),
		replaced:  make(map[string]domain.InspectionSummary),
	}
}

func (r *stubInspectionRepo) Rows(_ context.Context, coll string, q ports.InspectionQuery) ([]ports.Document, error) {
	rows, ok := r.rows[coll]
	if !ok {
		return nil, domain.ErrDatasetNotFound
	}
	r.queries = append(r.queries, q)
	var out []ports.Document
	for _, row := range rows {
		d, _ := row["Date"].(string)
		if !withinRange(q.Range, d) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *stubInspectionRepo) Summary(_ context.Context, coll string) (ports.Document, error) {
	s, ok := r.summaries[coll]
	if !ok {
		return nil, domain.ErrDatasetNotFound
	}
	return s, nil
}

func (r *stubInspectionRepo) Collections(_ context.Context) ([]string, error) {
	var out []string
	for k := range r.rows {
		out = append(out, k)
	}
	for k := range r.summaries {
		out = append(out, k)
	}
	return out, nil
}

func (r *stubInspectionRepo) ReplaceDataset(_ context.Context, dataColl string, rows []ports.Document, sumColl string, s domain.InspectionSummary) error {
	r.rows[dataColl] = rows
	r.replaced[sumColl] = s
	return nil
}

type bgradeRecord struct {
	date   string
	grade  string
	reason string
}

type stubBGradeRepo struct {
	colls   map[string][]bgradeRecord
	pages   []int64
	scanned []string
	upserts map[string][]ports.Document
}

func (r *stubBGradeRepo) Collections(_ context.Context) ([]string, error) {
	out := make([]string, 0, len(r.colls))
	for k := range r.colls {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

func (r *stubBGradeRepo) each(coll string, rng domain.DateRange, fn func(bgradeRecord)) {
	for _, rec := range r.colls[coll] {
		if withinRange(rng, rec.date) {
			fn(rec)
		}
	}
}

func (r *stubBGradeRepo) GradeCounts(_ context.Context, coll string, rng domain.DateRange) (map[string]int, error) {
	r.scanned = append(r.scanned, coll)
	out := map[string]int{}
	r.each(coll, rng, func(rec bgradeRecord) { out[rec.grade]++ })
	return out, nil
}

func (r *stubBGradeRepo) ReasonCounts(_ context.Context, coll string, rng domain.DateRange) (map[string]int, error) {
	out := map[string]int{}
	r.each(coll, rng, func(rec bgradeRecord) {
		if rec.grade == domain.GradeB {
			out[rec.reason]++
		}
	})
	return out, nil
}

func (r *stubBGradeRepo) Count(_ context.Context, coll string, rng domain.DateRange, grade string) (int, error) {
	n := 0
	r.each(coll, rng, func(rec bgradeRecord) {
		if grade == "" || rec.grade == grade {
			n++
		}
	})
	return n, nil
}

func (r *stubBGradeRepo) DailyTrend(_ context.Context, coll string, rng domain.DateRange, byReason bool) ([]domain.TrendPoint, error) {
	counts := map[[2]string]int{}
	r.each(coll, rng, func(rec bgradeRecord) {
		if byReason {
			if rec.grade == domain.GradeB {
				counts[[2]string{rec.date, rec.reason}]++
			}
			return
		}
		counts[[2]string{rec.date, rec.grade}]++
	})
	var out []domain.TrendPoint
	for k, n := range counts {
		out = append(out, domain.TrendPoint{Date: k[0], Key: k[1], Count: n})
	}
	return out, nil
}

func (r *stubBGradeRepo) Page(_ context.Context, coll string, limit, skip int64) ([]ports.Document, error) {
	r.pages = append(r.pages, limit, skip)
	return []ports.Document{{"collection": coll}}, nil
}

func (r *stubBGradeRepo) Upsert(_ context.Context, coll string, rows []ports.Document) (ports.UpsertResult, error) {
	return stubUpsert(&r.upserts, coll, rows), nil
}

// stubUpsert treats every row as updated once the collection has been
// written before.
func stubUpsert(dst *map[string][]ports.Document, coll string, rows []ports.Document) ports.UpsertResult {
	if *dst == nil {
		*dst = make(map[string][]ports.Document)
	}
	var res ports.UpsertResult
	for range rows {
		if len((*dst)[coll]) > 0 {
			res.Updated++
			continue
		}
		res.Inserted++
	}
	(*dst)[coll] = append((*dst)[coll], rows...)
	return res
}

type stubCache struct {
	values map[string]any
	gets   int
	hits   int
}

func newStubCache() *stubCache { return &stubCache{values: make(map[string]any)} }

func (c *stubCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.gets++
	v, ok := c.values[key]
	if !ok {
		return false, nil
	}
	c.hits++
	switch d := dst.(type) {
	case *domain.GradeAnalysis:
		*d = v.(domain.GradeAnalysis)
	case *domain.ReasonAnalysis:
		*d = v.(domain.ReasonAnalysis)
	case *[]domain.TrendPoint:
		*d = v.([]domain.TrendPoint)
	}
	return true, nil
}

func (c *stubCache) Set(_ context.Context, key string, v any, _ time.Duration) error {
	c.values[key] = v
	return nil
}

type stubPeelRepo struct {
	docs        map[string][]ports.Document
	lastFilter  domain.PeelQuery
	lastColl    string
	collections map[string]int64
	upserts     map[string][]ports.Document
}

func (r *stubPeelRepo) Upsert(_ context.Context, coll string, rows []ports.Document) (ports.UpsertResult, error) {
	return stubUpsert(&r.upserts, coll, rows), nil
}

func (r *stubPeelRepo) Collections(_ context.Context) (map[string]int64, error) {
	return r.collections, nil
}

func (r *stubPeelRepo) Find(_ context.Context, coll string, q domain.PeelQuery) ([]ports.Document, error) {
	r.lastColl, r.lastFilter = coll, q
	return r.docs[coll], nil
}

func (r *stubPeelRepo) ByStringer(_ context.Context, coll string, stringer int) ([]ports.Document, error) {
	r.lastColl = coll
	var out []ports.Document
	for _, d := range r.docs[coll] {
		if d["Stringer"] == stringer {
			out = append(out, d)
		}
	}
	return out, nil
}

type stubIPQCRepo struct {
	audits   map[string]*domain.IPQCAudit
	nextID   int
	lastList domain.IPQCFilter
	withData bool
}

func newStubIPQCRepo() *stubIPQCRepo {
	return &stubIPQCRepo{audits: make(map[string]*domain.IPQCAudit)}
}

func (r *stubIPQCRepo) Create(_ context.Context, a *domain.IPQCAudit) error {
	r.nextID++
	a.ID = fmt.Sprintf("a%d", r.nextID)
	cp := *a
	r.audits[a.ID] = &cp
	return nil
}

func (r *stubIPQCRepo) FindByID(_ context.Context, id string) (*domain.IPQCAudit, error) {
	a, ok := r.audits[id]
	if !ok {
		return nil, domain.ErrIPQCAuditNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *stubIPQCRepo) List(_ context.Context, f domain.IPQCFilter, withData bool) ([]*domain.IPQCAudit, error) {
	r.lastList, r.withData = f, withData
	out := []*domain.IPQCAudit{}
	for _, a := range r.audits {
		cp := *a
		if !withData {
			cp.Data = nil
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (r *stubIPQCRepo) Update(_ context.Context, a *domain.IPQCAudit) error {
	if _, ok := r.audits[a.ID]; !ok {
		return domain.ErrIPQCAuditNotFound
	}
	cp := *a
	r.audits[a.ID] = &cp
	return nil
}

func (r *stubIPQCRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.audits[id]; !ok {
		return domain.ErrIPQCAuditNotFound
	}
	delete(r.audits, id)
	return nil
}

func (r *stubIPQCRepo) NameExists(_ context.Context, name, excludeID string) (bool, error) {
	for id, a := range r.audits {
		if a.Name == name && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type stubIPQCExporter struct {
	exported []*domain.IPQCAudit
}

func (e *stubIPQCExporter) ExportAudit(_ context.Context, a *domain.IPQCAudit) (*ports.ExportFile, error) {
	e.exported = append(e.exported, a)
	return &ports.ExportFile{Name: a.ExportName(), Data: []byte("xlsx")}, nil
}
