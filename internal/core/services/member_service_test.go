package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"coop-backoffice/internal/adapters/persistence/models"
	"coop-backoffice/internal/adapters/persistence/repositories"
)

func newMemberService(t *testing.T, name string) *MemberService {
	db := setupTestDB(t, name)
	return NewMemberService(db, repositories.NewMemberRepository(db))
}

func TestMemberNumbering(t *testing.T) {
	svc := newMemberService(t, t.Name())
	ctx := testContext()

	year := time.Now().Format("2006")
	for i := 1; i <= 2; i++ {
		member, err := svc.Create(ctx, &CreateMemberInput{
			FirstName: "Moussa",
			LastName:  fmt.Sprintf("Ndiaye %d", i),
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		expected := fmt.Sprintf("COOP-%s-%04d", year, i)
		if member.MemberNumber != expected {
			t.Fatalf("expected number %s got %s", expected, member.MemberNumber)
		}
		if member.Status != models.MemberStatusActive {
			t.Fatalf("expected active status got %s", member.Status)
		}
	}
}

func TestMemberUpdateStatus(t *testing.T) {
	svc := newMemberService(t, t.Name())
	ctx := testContext()

	member, err := svc.Create(ctx, &CreateMemberInput{FirstName: "Aminata", LastName: "Fall"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	bad := "expelled"
	if _, err := svc.Update(ctx, member.ID, &UpdateMemberInput{Status: &bad}); !errors.Is(err, ErrInvalidMemberStatus) {
		t.Fatalf("expected ErrInvalidMemberStatus got %v", err)
	}

	suspended := models.MemberStatusSuspended
	updated, err := svc.Update(ctx, member.ID, &UpdateMemberInput{Status: &suspended})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != models.MemberStatusSuspended {
		t.Fatalf("expected suspended got %s", updated.Status)
	}
}

func TestMemberListFilters(t *testing.T) {
	svc := newMemberService(t, t.Name())
	ctx := testContext()

	if _, err := svc.Create(ctx, &CreateMemberInput{FirstName: "Cheikh", LastName: "Sarr"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Create(ctx, &CreateMemberInput{FirstName: "Mariama", LastName: "Ba"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	suspended := models.MemberStatusSuspended
	if _, err := svc.Update(ctx, second.ID, &UpdateMemberInput{Status: &suspended}); err != nil {
		t.Fatalf("suspend: %v", err)
	}

	members, total, err := svc.List(ctx, 0, 10, models.MemberStatusActive, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || members[0].LastName != "Sarr" {
		t.Fatalf("expected one active member, got %d", total)
	}

	members, total, err = svc.List(ctx, 0, 10, "", "Mariama")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 1 || members[0].FirstName != "Mariama" {
		t.Fatalf("expected search hit, got %d", total)
	}

	if err := svc.Delete(ctx, second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, second.ID); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound got %v", err)
	}
}
