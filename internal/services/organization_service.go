package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flowboard/flowboard-api/internal/models"
	"github.com/flowboard/flowboard-api/internal/repository"
	"github.com/flowboard/flowboard-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrNotOrganizationMember = errors.New("user is not a member of the organization")
	ErrOrganizationNotFound  = errors.New("organization not found")
	ErrInvalidInviteCode     = errors.New("invalid invite code")
	ErrAlreadyMember         = errors.New("user is already a member")
	ErrOrgNameRequired       = errors.New("organization name is required")
)

// OrganizationService handles tenant business logic
type OrganizationService struct {
	orgRepo repository.OrganizationRepository
}

// NewOrganizationService creates a new OrganizationService
func NewOrganizationService(orgRepo repository.OrganizationRepository) *OrganizationService {
	return &OrganizationService{orgRepo: orgRepo}
}

// CreateOrganization creates an organization owned by the creator
func (s *OrganizationService) CreateOrganization(name string, creatorID uint64) (*models.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrOrgNameRequired
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite code: %w", err)
	}

	org := &models.Organization{
		Name:       name,
		InviteCode: inviteCode,
	}
	if err := s.orgRepo.Create(org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	member := &models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         creatorID,
		Role:           models.RoleOwner,
	}
	if err := s.orgRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add owner: %w", err)
	}

	return org, nil
}

// JoinOrganization adds a user to the organization behind an invite code
func (s *OrganizationService) JoinOrganization(inviteCode string, userID uint64) (*models.Organization, error) {
	org, err := s.orgRepo.FindByInviteCode(strings.TrimSpace(inviteCode))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	if _, err := s.orgRepo.FindMember(org.ID, userID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	member := &models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         userID,
		Role:           models.RoleMember,
	}
	if err := s.orgRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return org, nil
}

// ListOrganizations returns the organizations a user belongs to
func (s *OrganizationService) ListOrganizations(userID uint64) ([]models.Organization, error) {
	memberships, err := s.orgRepo.ListMembersByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch memberships: %w", err)
	}

	orgs := make([]models.Organization, 0, len(memberships))
	for _, m := range memberships {
		org, err := s.orgRepo.FindByID(m.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch organization: %w", err)
		}
		orgs = append(orgs, *org)
	}

	return orgs, nil
}

// EnsureMember verifies that a user belongs to an organization
func (s *OrganizationService) EnsureMember(orgID, userID uint64) error {
	_, err := s.orgRepo.FindMember(orgID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotOrganizationMember
		}
		return fmt.Errorf("failed to verify membership: %w", err)
	}
	return nil
}
