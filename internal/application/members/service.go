package members

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"churchflow-backend/internal/domain"
	"churchflow-backend/internal/pkg/apperr"
	"churchflow-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const minSearchLength = 2

var (
	ErrMissingFields   = apperr.Validation("Missing required fields")
	ErrInvalidMemberID = apperr.Validation("Invalid member ID")
	ErrMemberNotFound  = apperr.NotFound("Member not found")
)

// Service manages the church roster.
type Service struct {
	DB *gorm.DB
}

type ChildInput struct {
	FirstName  string `json:"firstName"`
	MiddleName string `json:"middleName"`
	LastName   string `json:"lastName"`
}

type CreateInput struct {
	FirstName  string       `json:"firstName" validate:"notblank"`
	MiddleName string       `json:"middleName"`
	LastName   string       `json:"lastName" validate:"notblank"`
	Phone      string       `json:"phone" validate:"notblank"`
	IsFamily   bool         `json:"isFamily"`
	Children   []ChildInput `json:"children"`
}

// UpdateInput holds optional fields; nil means unchanged.
type UpdateInput struct {
	FirstName  *string       `json:"firstName"`
	MiddleName *string       `json:"middleName"`
	LastName   *string       `json:"lastName"`
	Phone      *string       `json:"phone"`
	IsFamily   *bool         `json:"isFamily"`
	Children   *[]ChildInput `json:"children"`
}

// buildChildren keeps only named children; a missing last name falls back to the member's.
func buildChildren(in []ChildInput, lastName string) datatypes.JSONSlice[domain.Child] {
	out := datatypes.JSONSlice[domain.Child]{}
	for _, c := range in {
		first := strings.TrimSpace(c.FirstName)
		if first == "" {
			continue
		}
		last := strings.TrimSpace(c.LastName)
		if last == "" {
			last = lastName
		}
		out = append(out, domain.Child{FirstName: first, MiddleName: strings.TrimSpace(c.MiddleName), LastName: last})
	}
	return out
}

func (s *Service) Create(ctx context.Context, id domain.Identity, in CreateInput) (*domain.Member, error) {
	if err := validation.Struct(&in, ErrMissingFields.Message); err != nil {
		return nil, err
	}
	lastName := strings.TrimSpace(in.LastName)
	member := domain.Member{
		ChurchID:   id.ChurchID,
		PastorID:   &id.PastorID,
		FirstName:  strings.TrimSpace(in.FirstName),
		MiddleName: strings.TrimSpace(in.MiddleName),
		LastName:   lastName,
		Phone:      strings.TrimSpace(in.Phone),
		IsFamily:   in.IsFamily,
		Children:   datatypes.JSONSlice[domain.Child]{},
	}
	if in.IsFamily {
		member.Children = buildChildren(in.Children, lastName)
	}
	if err := s.DB.WithContext(ctx).Create(&member).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to create member")
	}
	log.Info().Str("member_id", member.MemberID.String()).Str("church_id", id.ChurchID.String()).Msg("member created")
	return &member, nil
}

func parseMemberID(raw string) (uuid.UUID, error) {
	memberID, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, ErrInvalidMemberID
	}
	return memberID, nil
}

func (s *Service) find(ctx context.Context, db *gorm.DB, memberID, churchID uuid.UUID) (*domain.Member, error) {
	var member domain.Member
	err := db.WithContext(ctx).Where("member_id = ? AND church_id = ?", memberID, churchID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, apperr.Internal(err, "Failed to fetch member")
	}
	return &member, nil
}

func (s *Service) Get(ctx context.Context, id domain.Identity, rawID string) (*domain.Member, error) {
	memberID, err := parseMemberID(rawID)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, s.DB, memberID, id.ChurchID)
}

// Update applies the provided fields. Children are only kept for families.
func (s *Service) Update(ctx context.Context, id domain.Identity, rawID string, in UpdateInput) (*domain.Member, error) {
	memberID, err := parseMemberID(rawID)
	if err != nil {
		return nil, err
	}
	member, err := s.find(ctx, s.DB, memberID, id.ChurchID)
	if err != nil {
		return nil, err
	}

	if v := trimmed(in.FirstName); v != "" {
		member.FirstName = v
	}
	if in.MiddleName != nil {
		member.MiddleName = strings.TrimSpace(*in.MiddleName)
	}
	if v := trimmed(in.LastName); v != "" {
		member.LastName = v
	}
	if v := trimmed(in.Phone); v != "" {
		member.Phone = v
	}
	if in.IsFamily != nil {
		member.IsFamily = *in.IsFamily
	}
	if in.Children != nil {
		member.Children = buildChildren(*in.Children, member.LastName)
	}
	if !member.IsFamily {
		member.Children = datatypes.JSONSlice[domain.Child]{}
	}

	if err := s.DB.WithContext(ctx).Save(member).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to update member")
	}
	return member, nil
}

// Delete removes the member and their leave requests. Issued certificates are kept.
func (s *Service) Delete(ctx context.Context, id domain.Identity, rawID string) error {
	memberID, err := parseMemberID(rawID)
	if err != nil {
		return err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.find(ctx, tx, memberID, id.ChurchID); err != nil {
			return err
		}
		if err := tx.Where("member_id = ? AND church_id = ?", memberID, id.ChurchID).Delete(&domain.LeaveRequest{}).Error; err != nil {
			return err
		}
		return tx.Where("member_id = ? AND church_id = ?", memberID, id.ChurchID).Delete(&domain.Member{}).Error
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return err
		}
		return apperr.Internal(err, "Failed to delete member")
	}
	return nil
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// RosterStats summarizes the composition of a church roster.
type RosterStats struct {
	TotalMembers             int     `json:"totalMembers"`
	TotalChildren            int     `json:"totalChildren"`
	TotalIndividuals         int     `json:"totalIndividuals"`
	FamilyCount              int     `json:"familyCount"`
	SingleCount              int     `json:"singleCount"`
	FamiliesWithChildren     int     `json:"familiesWithChildren"`
	FamiliesWithoutChildren  int     `json:"familiesWithoutChildren"`
	AverageChildrenPerFamily float64 `json:"averageChildrenPerFamily"`
	MaxChildrenInFamily      int     `json:"maxChildrenInFamily"`
	Summary                  string  `json:"summary"`
}

func rosterStats(members []domain.Member) RosterStats {
	childCount := func(m domain.Member) int { return len(m.Children) }
	st := RosterStats{
		TotalMembers:         len(members),
		TotalChildren:        lo.SumBy(members, childCount),
		FamilyCount:          lo.CountBy(members, func(m domain.Member) bool { return m.IsFamily }),
		FamiliesWithChildren: lo.CountBy(members, func(m domain.Member) bool { return m.IsFamily && len(m.Children) > 0 }),
	}
	st.TotalIndividuals = st.TotalMembers + st.TotalChildren
	st.SingleCount = st.TotalMembers - st.FamilyCount
	st.FamiliesWithoutChildren = st.FamilyCount - st.FamiliesWithChildren
	if st.FamiliesWithChildren > 0 {
		st.AverageChildrenPerFamily = math.Round(float64(st.TotalChildren)/float64(st.FamiliesWithChildren)*10) / 10
	}
	if len(members) > 0 {
		st.MaxChildrenInFamily = lo.Max(lo.Map(members, func(m domain.Member, _ int) int { return childCount(m) }))
	}
	st.Summary = fmt.Sprintf("%d %s (%d family/%d single) with %d %s",
		st.TotalMembers, plural(st.TotalMembers, "member", "members"),
		st.FamilyCount, st.SingleCount,
		st.TotalChildren, plural(st.TotalChildren, "child", "children"))
	return st
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

type ListResult struct {
	Members []domain.Member `json:"members"`
	Stats   RosterStats     `json:"stats"`
}

// List returns the church roster, newest first, with composition stats.
func (s *Service) List(ctx context.Context, id domain.Identity) (*ListResult, error) {
	members := []domain.Member{}
	if err := s.DB.WithContext(ctx).Where("church_id = ?", id.ChurchID).Order("created_at DESC").Find(&members).Error; err != nil {
		return nil, apperr.Internal(err, "Failed to fetch members")
	}
	return &ListResult{Members: members, Stats: rosterStats(members)}, nil
}

// Search matches q case-insensitively against names and phone. Queries shorter than
// two characters return no results rather than an error.
func (s *Service) Search(ctx context.Context, id domain.Identity, q string) ([]domain.Member, error) {
	members := []domain.Member{}
	q = strings.TrimSpace(q)
	if len([]rune(q)) < minSearchLength {
		return members, nil
	}
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	err := s.DB.WithContext(ctx).
		Where("church_id = ?", id.ChurchID).
		Where(s.DB.
			Where(`LOWER(first_name) LIKE ? ESCAPE '\'`, pattern).
			Or(`LOWER(middle_name) LIKE ? ESCAPE '\'`, pattern).
			Or(`LOWER(last_name) LIKE ? ESCAPE '\'`, pattern).
			Or(`LOWER(phone) LIKE ? ESCAPE '\'`, pattern)).
		Order("first_name ASC").
		Find(&members).Error
	if err != nil {
		return nil, apperr.Internal(err, "Failed to search members")
	}
	return members, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ShortQuery reports whether q is too short to search.
func ShortQuery(q string) bool {
	return len([]rune(strings.TrimSpace(q))) < minSearchLength
}
