package repository

import (
	"time"

	"github.com/flowboard/flowboard-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRuleRepository is a GORM implementation of RuleRepository
type GormRuleRepository struct {
	db *gorm.DB
}

// NewRuleRepository creates a new RuleRepository
func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &GormRuleRepository{db: db}
}

// Create creates a new rule
func (r *GormRuleRepository) Create(rule *models.AutomationRule) error {
	return r.db.Create(rule).Error
}

// FindByID finds a rule by ID
func (r *GormRuleRepository) FindByID(id uint64) (*models.AutomationRule, error) {
	var rule models.AutomationRule
	if err := r.db.First(&rule, id).Error; err != nil {
		return nil, err
	}
	return &rule, nil
}

// ListByOrganization lists a tenant's rules
func (r *GormRuleRepository) ListByOrganization(organizationID uint64) ([]models.AutomationRule, error) {
	var rules []models.AutomationRule
	err := r.db.
		Where("organization_id = ?", organizationID).
		Order("id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// ListEnabled selects the enabled rules matching an event.
// TRIGGER is a reserved word in MySQL, so the column goes through
// clause.Column and gets quoted by the dialector.
func (r *GormRuleRepository) ListEnabled(organizationID uint64, trigger models.RuleTrigger, boardID uint64) ([]models.AutomationRule, error) {
	var rules []models.AutomationRule
	err := r.db.
		Where("organization_id = ? AND enabled = ?", organizationID, true).
		Where(clause.Eq{Column: clause.Column{Name: "trigger"}, Value: trigger}).
		Where("board_id IS NULL OR board_id = ?", boardID).
		Order("id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// Update updates a rule
func (r *GormRuleRepository) Update(rule *models.AutomationRule) error {
	return r.db.Save(rule).Error
}

// Delete soft deletes a rule
func (r *GormRuleRepository) Delete(id uint64) error {
	return r.db.Delete(&models.AutomationRule{}, id).Error
}

// RecordTrigger increments the trigger counter and stamps the last
// trigger time
func (r *GormRuleRepository) RecordTrigger(id uint64, at time.Time) error {
	return r.db.Model(&models.AutomationRule{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"trigger_count":     gorm.Expr("trigger_count + 1"),
			"last_triggered_at": at,
		}).Error
}
