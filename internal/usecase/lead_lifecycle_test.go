package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/edustride/crm-backend/internal/entity"
	"github.com/edustride/crm-backend/internal/infra/memory"
	"github.com/edustride/crm-backend/internal/usecase"
)

var (
	admin     = entity.Actor{UserID: "admin-1", Role: entity.RoleSuperAdmin}
	head      = entity.Actor{UserID: "head-1", Role: entity.RoleCounselorHead}
	counselor = entity.Actor{UserID: "coun-1", Role: entity.RoleCounselor}
	finance   = entity.Actor{UserID: "fin-1", Role: entity.RoleFinance}
)

type fixture struct {
	Leads    *memory.LeadRepository
	History  *memory.HistoryRepository
	Audit    *memory.AuditRepository
	Users    *memory.UserDirectory
	Payments *memory.PaymentRequestRepository
	Demos    *memory.DemoRequestRepository
	Students *memory.StudentRepository

	Lifecycle *usecase.LeadLifecycleUseCase
}

func newFixture() *fixture {
	f := &fixture{
		Leads:    memory.NewLeadRepository(),
		History:  memory.NewHistoryRepository(),
		Audit:    memory.NewAuditRepository(),
		Users:    memory.NewUserDirectory(),
		Payments: memory.NewPaymentRequestRepository(),
		Demos:    memory.NewDemoRequestRepository(),
		Students: memory.NewStudentRepository(),
	}
	f.Lifecycle = usecase.NewLeadLifecycleUseCase(f.Leads, f.History, f.Audit, f.Users, nil)
	return f
}

func (f *fixture) createLead(t *testing.T, input usecase.CreateLeadInput) *entity.Lead {
	t.Helper()
	lead, err := f.Lifecycle.Create(context.Background(), head, input)
	require.NoError(t, err)
	return lead
}

func TestCreateLead(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	lead, err := f.Lifecycle.Create(ctx, head, usecase.CreateLeadInput{
		StudentName: "Aarav",
		ContactNum:  "+919990001111",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StatusNew, lead.Status)
	assert.Equal(t, entity.StageCounselor, lead.OwnerStage)

	entries, err := f.History.ListByLead(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].FromStatus)
	assert.Equal(t, entity.StatusNew, entries[0].ToStatus)
	assert.Equal(t, head.UserID, entries[0].ChangedBy)
}

func TestCreateLeadValidation(t *testing.T) {
	f := newFixture()

	_, err := f.Lifecycle.Create(context.Background(), head, usecase.CreateLeadInput{StudentName: "   "})
	require.Error(t, err)
	assert.Equal(t, usecase.KindValidation, usecase.KindOf(err))
}

func TestCreateLeadDeniedForCounselor(t *testing.T) {
	f := newFixture()

	_, err := f.Lifecycle.Create(context.Background(), counselor, usecase.CreateLeadInput{StudentName: "Aarav"})
	require.Error(t, err)
	assert.Equal(t, usecase.KindAuthorization, usecase.KindOf(err))
}

func TestGetLeadVisibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cid := counselor.UserID
	mine := f.createLead(t, usecase.CreateLeadInput{StudentName: "Mine", CounselorID: &cid})
	other := f.createLead(t, usecase.CreateLeadInput{StudentName: "Other"})

	got, err := f.Lifecycle.Get(ctx, counselor, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)

	// Another counselor's lead must read as not-found, never as data
	// and never as a bare forbidden, so existence does not leak.
	_, err = f.Lifecycle.Get(ctx, counselor, other.ID)
	require.Error(t, err)
	assert.Equal(t, usecase.KindNotFound, usecase.KindOf(err))

	// Roles outside the pipeline get a plain denial.
	_, err = f.Lifecycle.Get(ctx, entity.Actor{UserID: "t-1", Role: entity.RoleTeacher}, mine.ID)
	require.Error(t, err)
	assert.Equal(t, usecase.KindAuthorization, usecase.KindOf(err))
}

func TestListScopes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cid := counselor.UserID
	f.createLead(t, usecase.CreateLeadInput{StudentName: "A", CounselorID: &cid})
	f.createLead(t, usecase.CreateLeadInput{StudentName: "B"})

	all, err := f.Lifecycle.List(ctx, head, usecase.ScopeAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Counselors are always forced to their own leads even when they
	// ask for everything.
	mine, err := f.Lifecycle.List(ctx, counselor, usecase.ScopeAll)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "A", mine[0].StudentName)

	_, err = f.Lifecycle.List(ctx, finance, usecase.ScopeAll)
	require.Error(t, err)
	assert.Equal(t, usecase.KindAuthorization, usecase.KindOf(err))
}

func TestSoftDeleteHidesLead(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	lead := f.createLead(t, usecase.CreateLeadInput{StudentName: "Gone"})

	deleted, err := f.Lifecycle.SoftDelete(ctx, head, lead.ID, "duplicate entry")
	require.NoError(t, err)
	require.NotNil(t, deleted.DeletedAt)
	assert.Equal(t, head.UserID, *deleted.DeletedBy)
	assert.Equal(t, lead.Status, deleted.Status)

	_, err = f.Lifecycle.Get(ctx, admin, lead.ID)
	assert.Equal(t, usecase.KindNotFound, usecase.KindOf(err))

	all, err := f.Lifecycle.List(ctx, admin, usecase.ScopeAll)
	require.NoError(t, err)
	assert.Empty(t, all)

	// Editing a deleted lead reads as not-found, not forbidden.
	name := "New Name"
	_, err = f.Lifecycle.Update(ctx, admin, lead.ID, usecase.UpdateLeadInput{StudentName: &name})
	assert.Equal(t, usecase.KindNotFound, usecase.KindOf(err))
}

func TestUpdateStatusRecordsHistory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	lead := f.createLead(t, usecase.CreateLeadInput{StudentName: "Aarav"})

	status := entity.StatusContacted
	updated, err := f.Lifecycle.Update(ctx, head, lead.ID, usecase.UpdateLeadInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusContacted, updated.Status)

	entries, err := f.History.ListByLead(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.StatusNew, *entries[1].FromStatus)
	assert.Equal(t, entity.StatusContacted, entries[1].ToStatus)
}

func TestUpdateStatusJumpTaggedInAudit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	lead := f.createLead(t, usecase.CreateLeadInput{StudentName: "Aarav"})

	// new → demo_done skips two funnel steps; the edit goes through
	// but lands in the audit log under its own tag.
	status := entity.StatusDemoDone
	_, err := f.Lifecycle.Update(ctx, head, lead.ID, usecase.UpdateLeadInput{Status: &status})
	require.NoError(t, err)

	var actions []string
	for _, e := range f.Audit.Entries() {
		actions = append(actions, e.Action)
	}
	assert.Contains(t, actions, entity.AuditLeadStatusJump)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	f := newFixture()

	lead := f.createLead(t, usecase.CreateLeadInput{StudentName: "Aarav"})

	bogus := entity.LeadStatus("enrolled_maybe")
	_, err := f.Lifecycle.Update(context.Background(), head, lead.ID, usecase.UpdateLeadInput{Status: &bogus})
	require.Error(t, err)
	assert.Equal(t, usecase.KindValidation, usecase.KindOf(err))
}

func TestAssignCounselorKeepsStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	lead := f.createLead(t, usecase.CreateLeadInput{StudentName: "Aarav"})

	updated, err := f.Lifecycle.AssignCounselor(ctx, head, lead.ID, "coun-9")
	require.NoError(t, err)
	assert.Equal(t, "coun-9", *updated.CounselorID)
	assert.Equal(t, entity.StatusNew, updated.Status)

	entries, err := f.History.ListByLead(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, *entries[1].FromStatus, entries[1].ToStatus)
	assert.Contains(t, entries[1].Reason, "coun-9")
}

func TestBulkAssignSkipsDeleted(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.createLead(t, usecase.CreateLeadInput{StudentName: "A"})
	b := f.createLead(t, usecase.CreateLeadInput{StudentName: "B"})
	c := f.createLead(t, usecase.CreateLeadInput{StudentName: "C"})

	_, err := f.Lifecycle.SoftDelete(ctx, head, b.ID, "")
	require.NoError(t, err)

	count, err := f.Lifecycle.BulkAssign(ctx, head, []string{a.ID, b.ID, c.ID, "missing"}, "coun-7")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	gotA, err := f.Lifecycle.Get(ctx, head, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "coun-7", *gotA.CounselorID)

	gotC, err := f.Lifecycle.Get(ctx, head, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "coun-7", *gotC.CounselorID)
}

func TestBulkAssignDeniedForCounselor(t *testing.T) {
	f := newFixture()

	_, err := f.Lifecycle.BulkAssign(context.Background(), counselor, []string{"x"}, "coun-7")
	require.Error(t, err)
	assert.Equal(t, usecase.KindAuthorization, usecase.KindOf(err))
}

func TestGetHistoryResolvesNames(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.Users.Add(head.UserID, "Priya Sharma")
	lead := f.createLead(t, usecase.CreateLeadInput{StudentName: "Aarav"})

	entries, err := f.Lifecycle.GetHistory(ctx, head, lead.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Priya Sharma", entries[0].ChangedByName)
}

func TestListOutcomes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	open := f.createLead(t, usecase.CreateLeadInput{StudentName: "Open"})
	dropped := f.createLead(t, usecase.CreateLeadInput{StudentName: "Dropped"})

	status := entity.StatusDropped
	_, err := f.Lifecycle.Update(ctx, head, dropped.ID, usecase.UpdateLeadInput{Status: &status})
	require.NoError(t, err)

	outcomes, err := f.Lifecycle.ListOutcomes(ctx, head)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, dropped.ID, outcomes[0].ID)
	assert.NotEqual(t, open.ID, outcomes[0].ID)
}
