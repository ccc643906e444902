package members

import (
	"context"
	"testing"
	"time"

	"churchflow-backend/internal/domain"
	"churchflow-backend/internal/infrastructure/database"
	"churchflow-backend/internal/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupMembersTest(t *testing.T) (*Service, *gorm.DB, domain.Identity) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	return &Service{DB: db}, db, seedPastor(t, db, "Grace Chapel")
}

func seedPastor(t *testing.T, db *gorm.DB, churchName string) domain.Identity {
	t.Helper()
	church := domain.Church{Name: churchName}
	require.NoError(t, db.Create(&church).Error)
	user := domain.User{Email: uuid.NewString() + "@church.org", PasswordHash: "x", Role: domain.RolePastor, ChurchID: church.ChurchID}
	require.NoError(t, db.Create(&user).Error)
	return domain.Identity{PastorID: user.UserID, ChurchID: church.ChurchID, Email: user.Email, Role: user.Role}
}

func TestCreate_RequiresNameAndPhone(t *testing.T) {
	svc, _, pastor := setupMembersTest(t)

	_, err := svc.Create(context.Background(), pastor, CreateInput{FirstName: "Ann", LastName: "  "})
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Equal(t, "Missing required fields", ae.Message)
}

func TestCreate_ChildrenOnlyForFamilies(t *testing.T) {
	svc, _, pastor := setupMembersTest(t)
	ctx := context.Background()

	single, err := svc.Create(ctx, pastor, CreateInput{
		FirstName: "Ann", LastName: "Lee", Phone: "0711",
		Children: []ChildInput{{FirstName: "Kid"}},
	})
	require.NoError(t, err)
	assert.Empty(t, single.Children)
	assert.Equal(t, pastor.ChurchID, single.ChurchID)

	family, err := svc.Create(ctx, pastor, CreateInput{
		FirstName: "Ben", LastName: "Otieno", Phone: "0722", IsFamily: true,
		Children: []ChildInput{{FirstName: "Tom"}, {FirstName: "Sue", LastName: "Wanjiru"}, {FirstName: " "}},
	})
	require.NoError(t, err)
	require.Len(t, family.Children, 2)
	assert.Equal(t, "Otieno", family.Children[0].LastName)
	assert.Equal(t, "Wanjiru", family.Children[1].LastName)
}

func TestList_RosterStats(t *testing.T) {
	svc, _, pastor := setupMembersTest(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, pastor, CreateInput{FirstName: "A", LastName: "One", Phone: "1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, pastor, CreateInput{FirstName: "B", LastName: "Two", Phone: "2", IsFamily: true,
		Children: []ChildInput{{FirstName: "x"}, {FirstName: "y"}, {FirstName: "z"}}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, pastor, CreateInput{FirstName: "C", LastName: "Three", Phone: "3", IsFamily: true,
		Children: []ChildInput{{FirstName: "w"}, {FirstName: "v"}}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, pastor, CreateInput{FirstName: "D", LastName: "Four", Phone: "4", IsFamily: true})
	require.NoError(t, err)

	other := seedPastor(t, svc.DB, "Other")
	_, err = svc.Create(ctx, other, CreateInput{FirstName: "E", LastName: "Five", Phone: "5"})
	require.NoError(t, err)

	res, err := svc.List(ctx, pastor)
	require.NoError(t, err)
	assert.Len(t, res.Members, 4)

	st := res.Stats
	assert.Equal(t, 4, st.TotalMembers)
	assert.Equal(t, 5, st.TotalChildren)
	assert.Equal(t, 9, st.TotalIndividuals)
	assert.Equal(t, 3, st.FamilyCount)
	assert.Equal(t, 1, st.SingleCount)
	assert.Equal(t, 2, st.FamiliesWithChildren)
	assert.Equal(t, 1, st.FamiliesWithoutChildren)
	assert.Equal(t, 2.5, st.AverageChildrenPerFamily)
	assert.Equal(t, 3, st.MaxChildrenInFamily)
	assert.Equal(t, "4 members (3 family/1 single) with 5 children", st.Summary)
}

func TestRosterStats_EmptyAndSingular(t *testing.T) {
	empty := rosterStats(nil)
	assert.Equal(t, 0, empty.MaxChildrenInFamily)
	assert.Equal(t, 0.0, empty.AverageChildrenPerFamily)
	assert.Equal(t, "0 members (0 family/0 single) with 0 children", empty.Summary)

	one := rosterStats([]domain.Member{{IsFamily: true, Children: []domain.Child{{FirstName: "a"}}}})
	assert.Equal(t, "1 member (1 family/0 single) with 1 child", one.Summary)
}

func TestGet_InvalidAndOtherChurch(t *testing.T) {
	svc, _, pastor := setupMembersTest(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, pastor, "nope")
	assert.ErrorIs(t, err, ErrInvalidMemberID)

	other := seedPastor(t, svc.DB, "Other")
	m, err := svc.Create(ctx, other, CreateInput{FirstName: "E", LastName: "Five", Phone: "5"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, pastor, m.MemberID.String())
	assert.ErrorIs(t, err, ErrMemberNotFound)

	got, err := svc.Get(ctx, other, m.MemberID.String())
	require.NoError(t, err)
	assert.Equal(t, "E Five", got.FullName())
}

func TestUpdate_PartialFields(t *testing.T) {
	svc, _, pastor := setupMembersTest(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, pastor, CreateInput{FirstName: "Ann", MiddleName: "W", LastName: "Lee", Phone: "0711"})
	require.NoError(t, err)

	empty := ""
	last := "Kamau"
	family := true
	kids := []ChildInput{{FirstName: "Joy"}}
	updated, err := svc.Update(ctx, pastor, m.MemberID.String(), UpdateInput{
		FirstName:  &empty,
		MiddleName: &empty,
		LastName:   &last,
		IsFamily:   &family,
		Children:   &kids,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann", updated.FirstName)
	assert.Equal(t, "", updated.MiddleName)
	assert.Equal(t, "Kamau", updated.LastName)
	assert.Equal(t, "0711", updated.Phone)
	require.Len(t, updated.Children, 1)
	assert.Equal(t, "Kamau", updated.Children[0].LastName)

	notFamily := false
	updated, err = svc.Update(ctx, pastor, m.MemberID.String(), UpdateInput{IsFamily: &notFamily})
	require.NoError(t, err)
	assert.Empty(t, updated.Children)

	reloaded, err := svc.Get(ctx, pastor, m.MemberID.String())
	require.NoError(t, err)
	assert.False(t, reloaded.IsFamily)
	assert.Empty(t, reloaded.Children)
}

func TestDelete_RemovesLeaveRequestsKeepsCertificates(t *testing.T) {
	svc, db, pastor := setupMembersTest(t)
	ctx := context.Background()

	m, err := svc.Create(ctx, pastor, CreateInput{FirstName: "Ann", LastName: "Lee", Phone: "0711"})
	require.NoError(t, err)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&domain.LeaveRequest{
		MemberID: m.MemberID, ChurchID: pastor.ChurchID, Type: domain.LeaveSick,
		StartDate: now, EndDate: now, Reason: "flu", Status: domain.LeavePending, CreatedBy: pastor.PastorID,
	}).Error)
	require.NoError(t, db.Create(&domain.LeavingCertificate{
		MemberID: m.MemberID, ChurchID: pastor.ChurchID, PastorID: pastor.PastorID,
		LeavingDate: now, IssueDate: now, Reason: domain.ReasonOther,
		CertificateNumber: "LVC-202506-0001", Status: domain.CertificateActive,
	}).Error)

	other := seedPastor(t, db, "Other")
	assert.ErrorIs(t, svc.Delete(ctx, other, m.MemberID.String()), ErrMemberNotFound)

	require.NoError(t, svc.Delete(ctx, pastor, m.MemberID.String()))
	assert.ErrorIs(t, svc.Delete(ctx, pastor, m.MemberID.String()), ErrMemberNotFound)

	var leaves, certs int64
	require.NoError(t, db.Model(&domain.LeaveRequest{}).Where("member_id = ?", m.MemberID).Count(&leaves).Error)
	require.NoError(t, db.Model(&domain.LeavingCertificate{}).Where("member_id = ?", m.MemberID).Count(&certs).Error)
	assert.Zero(t, leaves)
	assert.Equal(t, int64(1), certs)
}

func TestSearch(t *testing.T) {
	svc, _, pastor := setupMembersTest(t)
	ctx := context.Background()

	for _, in := range []CreateInput{
		{FirstName: "Grace", LastName: "Mwangi", Phone: "0711000111"},
		{FirstName: "John", MiddleName: "Gracious", LastName: "Otieno", Phone: "0722000222"},
		{FirstName: "Mary", LastName: "Atieno", Phone: "0733000333"},
		{FirstName: "Percy", LastName: "100%", Phone: "0744"},
	} {
		_, err := svc.Create(ctx, pastor, in)
		require.NoError(t, err)
	}
	other := seedPastor(t, svc.DB, "Other")
	_, err := svc.Create(ctx, other, CreateInput{FirstName: "Gracie", LastName: "X", Phone: "1"})
	require.NoError(t, err)

	found, err := svc.Search(ctx, pastor, "GRAC")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Grace", "John"}, lo.Map(found, func(m domain.Member, _ int) string { return m.FirstName }))

	found, err = svc.Search(ctx, pastor, "0733")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Mary", found[0].FirstName)

	found, err = svc.Search(ctx, pastor, "0%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Percy", found[0].FirstName)

	found, err = svc.Search(ctx, pastor, "g")
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.True(t, ShortQuery(" g "))
	assert.False(t, ShortQuery("gr"))
}
