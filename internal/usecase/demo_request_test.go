package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/edustride/crm-backend/internal/entity"
	"github.com/edustride/crm-backend/internal/usecase"
)

func newDemoUseCase(f *fixture) *usecase.DemoRequestUseCase {
	return usecase.NewDemoRequestUseCase(f.Leads, f.Demos, f.History, f.Audit, nil)
}

func TestCreateDemoRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	lead := f.createLead(t, usecase.CreateLeadInput{StudentName: "Aarav"})

	scheduled := time.Now().Add(48 * time.Hour)
	demo, err := newDemoUseCase(f).Execute(ctx, head, lead.ID, &scheduled)
	require.NoError(t, err)

	assert.Equal(t, entity.DemoOpen, demo.Status)
	assert.Equal(t, head.UserID, demo.BroadcastedBy)
	require.NotNil(t, demo.ScheduledAt)

	got, err := f.Lifecycle.Get(ctx, head, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDemoScheduled, got.Status)

	entries, err := f.History.ListByLead(ctx, lead.ID)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, entity.StatusNew, *last.FromStatus)
	assert.Equal(t, entity.StatusDemoScheduled, last.ToStatus)
}

// The demo path has no state precondition: a re-broadcast from an
// advanced status is accepted and recorded as-is.
func TestCreateDemoRequestFromAnyStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	lead := f.createLead(t, usecase.CreateLeadInput{StudentName: "Aarav"})

	status := entity.StatusDemoDone
	_, err := f.Lifecycle.Update(ctx, head, lead.ID, usecase.UpdateLeadInput{Status: &status})
	require.NoError(t, err)

	_, err = newDemoUseCase(f).Execute(ctx, head, lead.ID, nil)
	require.NoError(t, err)

	got, err := f.Lifecycle.Get(ctx, head, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDemoScheduled, got.Status)
}

func TestCreateDemoRequestDeniedForFinance(t *testing.T) {
	f := newFixture()

	lead := f.createLead(t, usecase.CreateLeadInput{StudentName: "Aarav"})

	_, err := newDemoUseCase(f).Execute(context.Background(), finance, lead.ID, nil)
	require.Error(t, err)
	assert.Equal(t, usecase.KindAuthorization, usecase.KindOf(err))
}

func TestListDemoRequestsRoles(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	lead := f.createLead(t, usecase.CreateLeadInput{StudentName: "Aarav"})
	uc := newDemoUseCase(f)

	_, err := uc.Execute(ctx, head, lead.ID, nil)
	require.NoError(t, err)

	demos, err := uc.List(ctx, entity.Actor{UserID: "ac-1", Role: entity.RoleAcademicCoordinator})
	require.NoError(t, err)
	assert.Len(t, demos, 1)

	_, err = uc.List(ctx, counselor)
	require.Error(t, err)
	assert.Equal(t, usecase.KindAuthorization, usecase.KindOf(err))
}

// MockAuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, entry *entity.AuditLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// An unavailable audit store must never fail the business mutation.
func TestAuditFailureIsSwallowed(t *testing.T) {
	f := newFixture()

	mockAudit := new(MockAuditRepository)
	mockAudit.On("Append", mock.Anything, mock.Anything).Return(errors.New("audit store down"))

	lifecycle := usecase.NewLeadLifecycleUseCase(f.Leads, f.History, mockAudit, f.Users, nil)

	lead, err := lifecycle.Create(context.Background(), head, usecase.CreateLeadInput{StudentName: "Aarav"})
	require.NoError(t, err)
	require.NotNil(t, lead)

	mockAudit.AssertCalled(t, "Append", mock.Anything, mock.Anything)

	entries, err := f.History.ListByLead(context.Background(), lead.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
