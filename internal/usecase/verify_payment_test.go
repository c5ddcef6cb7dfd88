package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/edustride/crm-backend/internal/entity"
	"github.com/edustride/crm-backend/internal/infra/lock"
	"github.com/edustride/crm-backend/internal/usecase"
)

func newVerifyUseCase(f *fixture) *usecase.VerifyPaymentUseCase {
	return usecase.NewVerifyPaymentUseCase(
		f.Payments, f.Leads, f.Students, f.History, f.Audit,
		lock.NewMemoryLocker(), nil,
	)
}

func newPaymentUseCase(f *fixture) *usecase.PaymentRequestUseCase {
	return usecase.NewPaymentRequestUseCase(f.Leads, f.Payments, f.History, f.Audit, nil)
}

func submitPayment(t *testing.T, f *fixture, leadID string, amount float64) *entity.PaymentRequest {
	t.Helper()
	req, err := newPaymentUseCase(f).Execute(context.Background(), head, leadID, usecase.SubmitPaymentInput{Amount: amount})
	require.NoError(t, err)
	return req
}

func TestSubmitPaymentRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	lead := f.createLead(t, usecase.CreateLeadInput{StudentName: "Aarav"})
	req := submitPayment(t, f, lead.ID, 500)

	assert.Equal(t, entity.PaymentPending, req.Status)
	assert.Equal(t, 500.0, req.Amount)

	got, err := f.Lifecycle.Get(ctx, head, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPaymentPending, got.Status)
	assert.Equal(t, entity.StageFinance, got.OwnerStage)
}

func TestSubmitPaymentRequestRequiresPositiveAmount(t *testing.T) {
	f := newFixture()

	lead := f.createLead(t, usecase.CreateLeadInput{StudentName: "Aarav"})

	_, err := newPaymentUseCase(f).Execute(context.Background(), head, lead.ID, usecase.SubmitPaymentInput{Amount: 0})
	require.Error(t, err)
	assert.Equal(t, usecase.KindValidation, usecase.KindOf(err))
}

func TestVerifyPaymentApproval(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	lead := f.createLead(t, usecase.CreateLeadInput{
		StudentName: "Aarav",
		ParentName:  "Rakesh",
		ContactNum:  "+919990001111",
		ClassLevel:  "8",
		Subject:     "Maths",
	})
	req := submitPayment(t, f, lead.ID, 500)

	output, err := newVerifyUseCase(f).Execute(ctx, finance, usecase.VerifyPaymentInput{
		RequestID: req.ID,
		Approved:  true,
	})
	require.NoError(t, err)
	require.NotNil(t, output.Student)

	student := output.Student
	assert.Equal(t, "Aarav", student.Name)
	assert.Equal(t, "Rakesh", student.ParentName)
	assert.Equal(t, "+919990001111", student.ContactNum)
	assert.Equal(t, "8", student.ClassLevel)
	assert.Equal(t, "Maths", student.Package)
	assert.Equal(t, entity.StudentStatusActive, student.Status)
	assert.Equal(t, "STU-0001", student.StudentCode)

	assert.Equal(t, entity.PaymentVerified, output.Request.Status)
	assert.Equal(t, finance.UserID, *output.Request.VerifiedBy)

	converted, err := f.Lifecycle.Get(ctx, head, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusJoined, converted.Status)
	assert.Equal(t, entity.StageAcademic, converted.OwnerStage)
	require.NotNil(t, converted.JoinedStudentID)
	assert.Equal(t, student.ID, *converted.JoinedStudentID)

	entries, err := f.History.ListByLead(ctx, lead.ID)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, entity.StatusPaymentPending, *last.FromStatus)
	assert.Equal(t, entity.StatusJoined, last.ToStatus)
	assert.Equal(t, "payment verified and student created", last.Reason)
}

func TestVerifyPaymentTwiceConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	lead := f.createLead(t, usecase.CreateLeadInput{StudentName: "Aarav"})
	req := submitPayment(t, f, lead.ID, 500)

	uc := newVerifyUseCase(f)

	_, err := uc.Execute(ctx, finance, usecase.VerifyPaymentInput{RequestID: req.ID, Approved: true})
	require.NoError(t, err)

	_, err = uc.Execute(ctx, finance, usecase.VerifyPaymentInput{RequestID: req.ID, Approved: true})
	require.Error(t, err)
	assert.Equal(t, usecase.KindConflict, usecase.KindOf(err))

	// Exactly one student row, no matter how often finance clicks.
	assert.Len(t, f.Students.All(), 1)
}

func TestVerifyPaymentRejection(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	lead := f.createLead(t, usecase.CreateLeadInput{StudentName: "Aarav"})
	req := submitPayment(t, f, lead.ID, 500)

	output, err := newVerifyUseCase(f).Execute(ctx, finance, usecase.VerifyPaymentInput{
		RequestID:   req.ID,
		Approved:    false,
		FinanceNote: "screenshot unreadable",
	})
	require.NoError(t, err)
	assert.Nil(t, output.Student)
	assert.Equal(t, entity.PaymentRejected, output.Request.Status)
	assert.Equal(t, "screenshot unreadable", output.Request.FinanceNote)

	// Rejection never touches the lead.
	got, err := f.Lifecycle.Get(ctx, head, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPaymentPending, got.Status)

	assert.Empty(t, f.Students.All())
}

func TestVerifyPaymentUnknownRequest(t *testing.T) {
	f := newFixture()

	_, err := newVerifyUseCase(f).Execute(context.Background(), finance, usecase.VerifyPaymentInput{
		RequestID: "nope",
		Approved:  true,
	})
	require.Error(t, err)
	assert.Equal(t, usecase.KindNotFound, usecase.KindOf(err))
}

func TestVerifyPaymentDeniedForCounselor(t *testing.T) {
	f := newFixture()

	_, err := newVerifyUseCase(f).Execute(context.Background(), counselor, usecase.VerifyPaymentInput{
		RequestID: "any",
		Approved:  true,
	})
	require.Error(t, err)
	assert.Equal(t, usecase.KindAuthorization, usecase.KindOf(err))
}

func TestStudentCodesIncrement(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	uc := newVerifyUseCase(f)

	first := f.createLead(t, usecase.CreateLeadInput{StudentName: "One"})
	second := f.createLead(t, usecase.CreateLeadInput{StudentName: "Two"})

	reqA := submitPayment(t, f, first.ID, 100)
	outA, err := uc.Execute(ctx, finance, usecase.VerifyPaymentInput{RequestID: reqA.ID, Approved: true})
	require.NoError(t, err)

	reqB := submitPayment(t, f, second.ID, 200)
	outB, err := uc.Execute(ctx, finance, usecase.VerifyPaymentInput{RequestID: reqB.ID, Approved: true})
	require.NoError(t, err)

	assert.Equal(t, "STU-0001", outA.Student.StudentCode)
	assert.Equal(t, "STU-0002", outB.Student.StudentCode)
}

// Full funnel walk: create → payment → approval, checking the side
// effects at each hop.
func TestLeadToStudentScenario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	lead, err := f.Lifecycle.Create(ctx, head, usecase.CreateLeadInput{
		StudentName: "Aarav",
		ContactNum:  "+919990001111",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusNew, lead.Status)
	assert.Equal(t, entity.StageCounselor, lead.OwnerStage)

	cid := counselor.UserID
	_, err = f.Lifecycle.AssignCounselor(ctx, head, lead.ID, cid)
	require.NoError(t, err)

	req, err := newPaymentUseCase(f).Execute(ctx, counselor, lead.ID, usecase.SubmitPaymentInput{Amount: 500})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPending, req.Status)

	pending, err := f.Lifecycle.Get(ctx, head, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPaymentPending, pending.Status)
	assert.Equal(t, entity.StageFinance, pending.OwnerStage)

	output, err := newVerifyUseCase(f).Execute(ctx, finance, usecase.VerifyPaymentInput{
		RequestID: req.ID,
		Approved:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Aarav", output.Student.Name)
	assert.Equal(t, entity.PaymentVerified, output.Request.Status)

	joined, err := f.Lifecycle.Get(ctx, head, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusJoined, joined.Status)
}
