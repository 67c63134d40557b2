package services

import (
	"testing"

	"coop-backoffice/internal/adapters/persistence/models"
)

func seedTestUser(t *testing.T, svc *AccessService, username string) *models.User {
	user := &models.User{
		Username: username,
		Email:    username + "@coop.local",
		Password: "hash",
		IsActive: true,
	}
	if err := svc.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestFlagsForRoleFallback(t *testing.T) {
	flags := FlagsForRole("intern")
	if !flags.CanViewDashboard || !flags.CanManageOwnProfile {
		t.Fatalf("expected member baseline for unknown role")
	}
	if flags.CanManageUsers || flags.CanViewFinances {
		t.Fatalf("unknown role must not gain elevated flags")
	}
}

func TestEnsureAndSyncWithRole(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewAccessService(db)
	ctx := testContext()
	user := seedTestUser(t, svc, "fatou")

	if err := svc.EnsureAccess(ctx, user.ID); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	// Idempotent
	if err := svc.EnsureAccess(ctx, user.ID); err != nil {
		t.Fatalf("ensure twice: %v", err)
	}

	access, err := svc.GetByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !access.CanViewDashboard || access.CanManageUsers {
		t.Fatalf("expected baseline flags only")
	}

	if err := svc.SyncWithRole(ctx, user.ID, models.RoleAccountant); err != nil {
		t.Fatalf("sync: %v", err)
	}
	access, err = svc.GetByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get after sync: %v", err)
	}
	if !access.CanValidateTransactions || !access.CanManageAccounts {
		t.Fatalf("expected accountant finance flags")
	}
	if access.CanManageStock || access.CanManageUsers {
		t.Fatalf("accountant must not manage stock or users")
	}

	// Demote back to member, elevated flags are withdrawn
	if err := svc.SyncWithRole(ctx, user.ID, models.RoleMember); err != nil {
		t.Fatalf("sync member: %v", err)
	}
	access, err = svc.GetByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get after demote: %v", err)
	}
	if access.CanValidateTransactions || access.CanManageAccounts {
		t.Fatalf("expected elevated flags withdrawn")
	}
}

func TestManagerMatrix(t *testing.T) {
	flags := FlagsForRole(models.RoleManager)
	if !flags.CanValidateTransactions {
		t.Fatalf("manager validates transactions")
	}
	if flags.CanManageAccounts || flags.CanCreateTransactions {
		t.Fatalf("manager does not manage the chart of accounts")
	}
	if flags.CanDeleteMembers || flags.CanManageUsers {
		t.Fatalf("manager has no user administration")
	}
}

func TestSyncWithoutAccessRowIsSilent(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewAccessService(db)
	ctx := testContext()
	user := seedTestUser(t, svc, "orphan")

	if err := svc.SyncWithRole(ctx, user.ID, models.RoleAdmin); err != nil {
		t.Fatalf("expected silent no-op got %v", err)
	}
	if _, err := svc.GetByUserID(ctx, user.ID); err != ErrAccessNotFound {
		t.Fatalf("expected no row created, got %v", err)
	}
}

func TestHasPermission(t *testing.T) {
	db := setupTestDB(t, t.Name())
	svc := NewAccessService(db)
	ctx := testContext()
	user := seedTestUser(t, svc, "ibrahima")

	// No access row means no permissions
	ok, err := svc.HasPermission(ctx, user.ID, "can_view_dashboard")
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if ok {
		t.Fatalf("expected false without access row")
	}

	if err := svc.EnsureAccess(ctx, user.ID); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	ok, err = svc.HasPermission(ctx, user.ID, "can_view_dashboard")
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if !ok {
		t.Fatalf("expected dashboard permission after ensure")
	}
	ok, err = svc.HasPermission(ctx, user.ID, "can_manage_users")
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if ok {
		t.Fatalf("baseline must not manage users")
	}
}
