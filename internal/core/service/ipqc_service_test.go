package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/domain"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
)

func auditInput(name string) ports.IPQCAuditInput {
	return ports.IPQCAuditInput{
		Name:      name,
		Timestamp: "2025-09-14T08:00:00Z",
		Data:      map[string]any{"lineNumber": "II", "date": "2025-09-14", "shift": "A"},
	}
}

func TestIPQCService_CreateAndRename(t *testing.T) {
	repo := newStubIPQCRepo()
	svc := NewIPQCService(repo, &stubIPQCExporter{}, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.Create(ctx, auditInput(" Audit A "), operator)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if first.ID == "" || first.Name != "Audit A" || first.CreatedAt.IsZero() {
		t.Fatalf("unexpected audit: %+v", first)
	}
	if _, err := svc.Create(ctx, auditInput("Audit A"), operator); !errors.Is(err, domain.ErrIPQCAuditNameTaken) {
		t.Fatalf("expected ErrIPQCAuditNameTaken, got %v", err)
	}

	second, _ := svc.Create(ctx, auditInput("Audit B"), operator)
	if _, err := svc.Update(ctx, second.ID, auditInput("Audit A"), operator); !errors.Is(err, domain.ErrIPQCAuditNameTaken) {
		t.Fatalf("expected rename clash, got %v", err)
	}

	in := auditInput("Audit B")
	in.Data["shift"] = "B"
	updated, err := svc.Update(ctx, second.ID, in, operator)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.CreatedAt != second.CreatedAt || updated.Data["shift"] != "B" {
		t.Errorf("unexpected update: %+v", updated)
	}
}

func TestIPQCService_Validation(t *testing.T) {
	svc := NewIPQCService(newStubIPQCRepo(), &stubIPQCExporter{}, zerolog.Nop())
	ctx := context.Background()

	cases := map[string]ports.IPQCAuditInput{
		"name":      {Timestamp: "t", Data: map[string]any{}},
		"timestamp": {Name: "A", Data: map[string]any{}},
		"data":      {Name: "A", Timestamp: "t"},
	}
	for field, in := range cases {
		if _, err := svc.Create(ctx, in, operator); !errors.Is(err, domain.ErrMissingField) {
			t.Errorf("missing %s: expected ErrMissingField, got %v", field, err)
		}
	}
	if _, err := svc.NameExists(ctx, "  ", ""); !errors.Is(err, domain.ErrMissingField) {
		t.Errorf("expected ErrMissingField for blank name, got %v", err)
	}
}

func TestIPQCService_ListAndSearch(t *testing.T) {
	repo := newStubIPQCRepo()
	svc := NewIPQCService(repo, &stubIPQCExporter{}, zerolog.Nop())
	ctx := context.Background()
	_, _ = svc.Create(ctx, auditInput("Audit A"), operator)

	list, _ := svc.List(ctx, false)
	if len(list) != 1 || list[0].Data != nil {
		t.Fatalf("expected metadata only, got %+v", list)
	}

	if _, err := svc.Search(ctx, domain.IPQCFilter{LineNumber: " II ", Shift: "A"}); err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if repo.lastList.LineNumber != "II" || !repo.withData {
		t.Errorf("search should trim filters and load data, got %+v withData=%v", repo.lastList, repo.withData)
	}
}

func TestIPQCService_Export(t *testing.T) {
	repo := newStubIPQCRepo()
	exporter := &stubIPQCExporter{}
	svc := NewIPQCService(repo, exporter, zerolog.Nop())
	ctx := context.Background()
	a, _ := svc.Create(ctx, auditInput("Audit A"), operator)

	f, err := svc.Export(ctx, a.ID)
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if f.Name != "Quality_Audit_LineII_20250914_ShiftA.xlsx" {
		t.Errorf("unexpected file name %q", f.Name)
	}
	if _, err := svc.Export(ctx, "missing"); !errors.Is(err, domain.ErrIPQCAuditNotFound) {
		t.Errorf("expected ErrIPQCAuditNotFound, got %v", err)
	}

	if _, err := svc.Generate(ctx, ports.IPQCAuditInput{}); !errors.Is(err, domain.ErrMissingField) {
		t.Errorf("generate without data: expected ErrMissingField, got %v", err)
	}
	if _, err := svc.Generate(ctx, auditInput("")); err != nil || len(exporter.exported) != 2 {
		t.Errorf("generate should render unsaved audits: err=%v exported=%d", err, len(exporter.exported))
	}
	if err := svc.Delete(ctx, a.ID, operator); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.Get(ctx, a.ID); !errors.Is(err, domain.ErrIPQCAuditNotFound) {
		t.Errorf("expected deleted audit to be gone, got %v", err)
	}
}
