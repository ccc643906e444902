package leaving

import (
	"context"
	"testing"
	"time"

	"churchflow-backend/internal/domain"
	"churchflow-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func issueFor(t *testing.T, f *fixture, first, reason, leavingDate string) *CertificateView {
	t.Helper()
	m := seedMember(t, f.db, f.church.ChurchID, first)
	in := IssueInput{MemberID: m.MemberID.String(), Reason: reason, LeavingDate: leavingDate}
	if reason == domain.ReasonTransfer {
		in.TransferChurch = "Hope Church"
	}
	view, err := f.svc.Issue(context.Background(), f.pastor, in)
	require.NoError(t, err)
	return view
}

func TestList_FiltersSortsAndCounts(t *testing.T) {
	f := setupLeavingTest(t)
	ctx := context.Background()
	issueFor(t, f, "a", domain.ReasonTransfer, "2025-01-10")
	mid := issueFor(t, f, "b", domain.ReasonRelocation, "2025-03-10")
	issueFor(t, f, "c", domain.ReasonPersonal, "2025-05-10")

	revoked := domain.CertificateRevoked
	_, err := f.svc.Update(ctx, f.pastor, mid.CertificateID.String(), UpdateInput{Status: &revoked})
	require.NoError(t, err)

	res, err := f.svc.List(ctx, f.pastor, ListQuery{})
	require.NoError(t, err)
	require.Len(t, res.Leavings, 3)
	assert.Equal(t, "c", res.Leavings[0].Member.FirstName)
	assert.Equal(t, "a", res.Leavings[2].Member.FirstName)
	assert.Equal(t, Breakdown{Total: 3, Active: 2, Revoked: 1, Transfer: 1, Relocation: 1, Personal: 1}, res.Stats)

	res, err = f.svc.List(ctx, f.pastor, ListQuery{Status: domain.CertificateActive, StartDate: "2025-02-01", EndDate: "2025-05-10"})
	require.NoError(t, err)
	require.Len(t, res.Leavings, 1)
	assert.Equal(t, "c", res.Leavings[0].Member.FirstName)

	_, err = f.svc.List(ctx, f.pastor, ListQuery{Status: "deleted"})
	assert.Equal(t, ErrInvalidStatusFilter, err)
	_, err = f.svc.List(ctx, f.pastor, ListQuery{StartDate: "soon"})
	assert.Equal(t, ErrInvalidDateFilter, err)
}

func TestList_OtherChurchSeesNothing(t *testing.T) {
	f := setupLeavingTest(t)
	issueFor(t, f, "a", domain.ReasonOther, "")
	_, outsider := seedChurch(t, f.db, "Elsewhere")

	res, err := f.svc.List(context.Background(), outsider, ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, res.Leavings)
	assert.Equal(t, 0, res.Stats.Total)
}

func TestGet_TenantIsolationAndBadID(t *testing.T) {
	f := setupLeavingTest(t)
	view := issueFor(t, f, "a", domain.ReasonOther, "")
	_, outsider := seedChurch(t, f.db, "Elsewhere")
	ctx := context.Background()

	got, err := f.svc.Get(ctx, f.pastor, view.CertificateID.String())
	require.NoError(t, err)
	assert.Equal(t, view.CertificateNumber, got.CertificateNumber)

	_, err = f.svc.Get(ctx, outsider, view.CertificateID.String())
	assert.Equal(t, ErrCertificateNotFound, err)
	_, err = f.svc.Get(ctx, f.pastor, "12345")
	assert.Equal(t, ErrInvalidCertificateID, err)
}

func TestUpdate_IgnoresUnknownValuesAndRecordsEvent(t *testing.T) {
	f := setupLeavingTest(t)
	view := issueFor(t, f, "a", domain.ReasonOther, "")
	ctx := context.Background()

	bogus := "deleted"
	notes := "left for school"
	reason := domain.ReasonRelocation
	updated, err := f.svc.Update(ctx, f.pastor, view.CertificateID.String(), UpdateInput{Status: &bogus, Notes: &notes, Reason: &reason})
	require.NoError(t, err)
	assert.Equal(t, domain.CertificateActive, updated.Status)
	assert.Equal(t, domain.ReasonRelocation, updated.Reason)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "left for school", *updated.Notes)
	assert.Equal(t, view.CertificateNumber, updated.CertificateNumber)

	events, err := f.svc.Events(ctx, f.pastor, view.CertificateID.String())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventCreated, events[0].EventType)
	assert.Equal(t, domain.EventUpdated, events[1].EventType)
	assert.Contains(t, string(events[1].EventData), "reason")
	assert.NotContains(t, string(events[1].EventData), "status")

	_, outsider := seedChurch(t, f.db, "Elsewhere")
	_, err = f.svc.Update(ctx, outsider, view.CertificateID.String(), UpdateInput{Notes: &notes})
	assert.Equal(t, ErrCertificateNotFound, err)
}

func TestDelete_KeepsEventTrail(t *testing.T) {
	f := setupLeavingTest(t)
	view := issueFor(t, f, "a", domain.ReasonOther, "")
	ctx := context.Background()

	require.NoError(t, f.svc.Delete(ctx, f.pastor, view.CertificateID.String()))
	_, err := f.svc.Get(ctx, f.pastor, view.CertificateID.String())
	assert.Equal(t, ErrCertificateNotFound, err)
	assert.Equal(t, ErrCertificateNotFound, f.svc.Delete(ctx, f.pastor, view.CertificateID.String()))

	events, err := f.svc.Events(ctx, f.pastor, view.CertificateID.String())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventDeleted, events[1].EventType)
}

func TestGenerate_PrintPayload(t *testing.T) {
	f := setupLeavingTest(t)
	ctx := context.Background()
	address := "12 Hill Road"
	require.NoError(t, f.db.Model(&f.church).Update("address", address).Error)

	member := domain.Member{
		ChurchID:   f.church.ChurchID,
		FirstName:  "John",
		MiddleName: "Paul",
		LastName:   "Doe",
		Phone:      "0711111111",
		IsFamily:   true,
		Children:   datatypes.JSONSlice[domain.Child]{{FirstName: "Amy", LastName: "Doe"}},
	}
	require.NoError(t, f.db.Create(&member).Error)
	view, err := f.svc.Issue(ctx, f.pastor, IssueInput{MemberID: member.MemberID.String(), Reason: domain.ReasonTransfer, TransferChurch: "Hope Church"})
	require.NoError(t, err)

	out, err := f.svc.Generate(ctx, f.pastor, GenerateInput{LeavingID: view.CertificateID.String()})
	require.NoError(t, err)
	assert.Equal(t, view.CertificateNumber, out.CertificateNumber)
	assert.Equal(t, "John Paul Doe", out.Member.FullName)
	assert.True(t, out.Member.IsFamily)
	require.Len(t, out.Member.Children, 1)
	assert.Equal(t, "Grace Chapel", out.Church.Name)
	assert.Equal(t, address, out.Church.Address)
	assert.Equal(t, "", out.Church.Email)
	require.NotNil(t, out.TransferChurch)
	assert.Equal(t, "Hope Church", *out.TransferChurch)

	_, err = f.svc.Generate(ctx, f.pastor, GenerateInput{})
	assert.Equal(t, ErrCertificateIDMissing, err)
	_, outsider := seedChurch(t, f.db, "Elsewhere")
	_, err = f.svc.Generate(ctx, outsider, GenerateInput{LeavingID: view.CertificateID.String()})
	assert.Equal(t, ErrCertificateNotFound, err)
}

func TestGenerate_MemberRemovedStillPrints(t *testing.T) {
	f := setupLeavingTest(t)
	view := issueFor(t, f, "gone", domain.ReasonOther, "")
	require.NoError(t, f.db.Where("member_id = ?", view.MemberID).Delete(&domain.Member{}).Error)

	out, err := f.svc.Generate(context.Background(), f.pastor, GenerateInput{LeavingID: view.CertificateID.String()})
	require.NoError(t, err)
	assert.Equal(t, "", out.Member.FullName)
	assert.NotNil(t, out.Member.Children)
}

func TestStats_YearAndMonthly(t *testing.T) {
	f := setupLeavingTest(t)
	ctx := context.Background()
	issueFor(t, f, "a", domain.ReasonTransfer, "2025-01-10")
	issueFor(t, f, "b", domain.ReasonTransfer, "2025-01-20")
	issueFor(t, f, "c", domain.ReasonPersonal, "2025-03-05")
	issueFor(t, f, "d", domain.ReasonOther, "2024-12-31")

	res, err := f.svc.Stats(ctx, f.pastor, "")
	require.NoError(t, err)
	assert.Equal(t, 2025, res.Year)
	assert.Equal(t, 3, res.Stats.Total)
	assert.Equal(t, 2, res.Stats.Transfer)
	assert.Equal(t, []MonthCount{{Month: 1, Count: 2}, {Month: 3, Count: 1}}, res.Monthly)

	res, err = f.svc.Stats(ctx, f.pastor, "2024")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Total)
	assert.Equal(t, []MonthCount{{Month: 12, Count: 1}}, res.Monthly)

	_, err = f.svc.Stats(ctx, f.pastor, "twenty")
	assert.Equal(t, ErrInvalidYear, err)
}

func TestSummary(t *testing.T) {
	f := setupLeavingTest(t)
	ctx := context.Background()
	recent := fixedNow.AddDate(0, 0, -3).Format(time.RFC3339)
	issueFor(t, f, "a", domain.ReasonTransfer, recent)
	old := issueFor(t, f, "b", domain.ReasonPersonal, "2024-01-01")
	seedMember(t, f.db, f.church.ChurchID, "stays")

	archived := domain.CertificateArchived
	_, err := f.svc.Update(ctx, f.pastor, old.CertificateID.String(), UpdateInput{Status: &archived})
	require.NoError(t, err)

	sum, err := f.svc.Summary(ctx, f.pastor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.TotalLeavings)
	assert.Equal(t, int64(1), sum.RecentLeavings)
	assert.Equal(t, int64(3), sum.TotalMembers)
	assert.Equal(t, 66.7, sum.LeavingRate)
	assert.Equal(t, StatusCounts{Active: 1, Archived: 1}, sum.Statuses)
	assert.Equal(t, ReasonCounts{Transfer: 1, Personal: 1}, sum.Reasons)
}

func TestLeavingRate(t *testing.T) {
	assert.Equal(t, 0.0, leavingRate(5, 0))
	assert.Equal(t, 50.0, leavingRate(1, 2))
	assert.Equal(t, 33.3, leavingRate(1, 3))
}

func TestEvents_BadID(t *testing.T) {
	f := setupLeavingTest(t)
	_, err := f.svc.Events(context.Background(), f.pastor, "nope")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	events, err := f.svc.Events(context.Background(), f.pastor, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, events)
}
