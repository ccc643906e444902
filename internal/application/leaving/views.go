package leaving

import (
	"context"
	"fmt"

	"churchflow-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MemberRef is the member display data embedded in certificate responses.
type MemberRef struct {
	ID         uuid.UUID      `json:"id"`
	FirstName  string         `json:"firstName"`
	MiddleName string         `json:"middleName"`
	LastName   string         `json:"lastName"`
	Phone      string         `json:"phone"`
	IsFamily   bool           `json:"isFamily"`
	Children   []domain.Child `json:"children"`
}

type ChurchRef struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address *string   `json:"address"`
	Phone   *string   `json:"phone"`
	Email   *string   `json:"email"`
}

type PastorRef struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// CertificateView is a certificate joined with the member, church and pastor it refers to.
// Member is nil when the member record has since been deleted.
type CertificateView struct {
	domain.LeavingCertificate
	Member *MemberRef `json:"member"`
	Church *ChurchRef `json:"church,omitempty"`
	Pastor *PastorRef `json:"pastor"`
}

func toMemberRef(m domain.Member) *MemberRef {
	children := []domain.Child(m.Children)
	if children == nil {
		children = []domain.Child{}
	}
	return &MemberRef{
		ID:         m.MemberID,
		FirstName:  m.FirstName,
		MiddleName: m.MiddleName,
		LastName:   m.LastName,
		Phone:      m.Phone,
		IsFamily:   m.IsFamily,
		Children:   children,
	}
}

func toChurchRef(c domain.Church) *ChurchRef {
	return &ChurchRef{ID: c.ChurchID, Name: c.Name, Address: c.Address, Phone: c.Phone, Email: c.Email}
}

// attachDisplay loads member and pastor rows for certs in two queries. withChurch also
// embeds the (single) church, used for detail responses.
func (s *Service) attachDisplay(ctx context.Context, certs []domain.LeavingCertificate, withChurch bool) ([]CertificateView, error) {
	views := make([]CertificateView, 0, len(certs))
	if len(certs) == 0 {
		return views, nil
	}
	db := s.DB.WithContext(ctx)

	memberIDs := lo.Uniq(lo.Map(certs, func(c domain.LeavingCertificate, _ int) uuid.UUID { return c.MemberID }))
	var members []domain.Member
	if err := db.Where("member_id IN ?", memberIDs).Find(&members).Error; err != nil {
		return nil, fmt.Errorf("load certificate members: %w", err)
	}
	membersByID := lo.KeyBy(members, func(m domain.Member) uuid.UUID { return m.MemberID })

	pastorIDs := lo.Uniq(lo.Map(certs, func(c domain.LeavingCertificate, _ int) uuid.UUID { return c.PastorID }))
	var pastors []domain.User
	if err := db.Select("user_id", "email").Where("user_id IN ?", pastorIDs).Find(&pastors).Error; err != nil {
		return nil, fmt.Errorf("load certificate pastors: %w", err)
	}
	pastorsByID := lo.KeyBy(pastors, func(u domain.User) uuid.UUID { return u.UserID })

	churchesByID := map[uuid.UUID]domain.Church{}
	if withChurch {
		churchIDs := lo.Uniq(lo.Map(certs, func(c domain.LeavingCertificate, _ int) uuid.UUID { return c.ChurchID }))
		var churches []domain.Church
		if err := db.Where("church_id IN ?", churchIDs).Find(&churches).Error; err != nil {
			return nil, fmt.Errorf("load certificate churches: %w", err)
		}
		churchesByID = lo.KeyBy(churches, func(c domain.Church) uuid.UUID { return c.ChurchID })
	}

	for _, c := range certs {
		v := CertificateView{LeavingCertificate: c}
		if m, ok := membersByID[c.MemberID]; ok {
			v.Member = toMemberRef(m)
		}
		if p, ok := pastorsByID[c.PastorID]; ok {
			v.Pastor = &PastorRef{ID: p.UserID, Email: p.Email}
		}
		if ch, ok := churchesByID[c.ChurchID]; ok {
			v.Church = toChurchRef(ch)
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *Service) viewOne(ctx context.Context, cert *domain.LeavingCertificate) (*CertificateView, error) {
	views, err := s.attachDisplay(ctx, []domain.LeavingCertificate{*cert}, true)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
