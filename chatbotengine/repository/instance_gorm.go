package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zapedidos/zapedidos/chatbotengine/domain"
	pkgError "github.com/zapedidos/zapedidos/pkg/error"
	"gorm.io/gorm"
)

// instanceModel is the GORM persistence model for messaging instances.
type instanceModel struct {
	ID             string `gorm:"primaryKey"`
	InstanceID     string `gorm:"column:instance_id;uniqueIndex;not null"`
	CompanyID      string `gorm:"column:company_id;not null;index"`
	Name           string `gorm:"not null"`
	PhoneNumber    string `gorm:"column:phone_number"`
	Status         string `gorm:"not null"`
	APIToken       string `gorm:"column:api_token"`
	WebhookURL     string `gorm:"column:webhook_url"`
	APISettings    string `gorm:"column:api_settings"` // JSON blob
	IsActive       bool   `gorm:"column:is_active;not null"`
	LastActivityAt *time.Time
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (instanceModel) TableName() string {
	return "whatsapp_instances"
}

// InstanceGormStore implements domain.InstanceStore plus the management CRUD.
type InstanceGormStore struct {
	db *gorm.DB
}

func NewInstanceGormStore(db *gorm.DB) *InstanceGormStore {
	return &InstanceGormStore{db: db}
}

func (r *InstanceGormStore) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&instanceModel{})
}

// GetByInstanceID returns the instance regardless of its active flag; the
// admission gate needs inactive instances to answer 403 instead of 404.
func (r *InstanceGormStore) GetByInstanceID(ctx context.Context, instanceID string) (domain.Instance, error) {
	var model instanceModel
	err := r.db.WithContext(ctx).First(&model, "instance_id = ?", instanceID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Instance{}, pkgError.NotFoundError("instance not found")
		}
		return domain.Instance{}, err
	}
	return fromInstanceModel(model), nil
}

func (r *InstanceGormStore) GetByID(ctx context.Context, id string) (domain.Instance, error) {
	var model instanceModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Instance{}, pkgError.NotFoundError("instance not found")
		}
		return domain.Instance{}, err
	}
	return fromInstanceModel(model), nil
}

func (r *InstanceGormStore) Create(ctx context.Context, instance domain.Instance) error {
	model := toInstanceModel(instance)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *InstanceGormStore) ListByCompany(ctx context.Context, companyID string) ([]domain.Instance, error) {
	var models []instanceModel
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	instances := make([]domain.Instance, 0, len(models))
	for _, m := range models {
		instances = append(instances, fromInstanceModel(m))
	}
	return instances, nil
}

func (r *InstanceGormStore) Update(ctx context.Context, instance domain.Instance) error {
	model := toInstanceModel(instance)
	res := r.db.WithContext(ctx).Model(&instanceModel{}).
		Where("id = ?", instance.ID).
		Select("name", "phone_number", "status", "api_token", "webhook_url",
			"api_settings", "is_active").
		Updates(&model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgError.NotFoundError("instance not found")
	}
	return nil
}

// TouchActivity stamps last_activity_at, called after each admitted webhook.
func (r *InstanceGormStore) TouchActivity(ctx context.Context, instanceID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&instanceModel{}).
		Where("instance_id = ?", instanceID).
		UpdateColumn("last_activity_at", at).Error
}

func toInstanceModel(instance domain.Instance) instanceModel {
	settings, _ := json.Marshal(instance.Settings)
	return instanceModel{
		ID:             instance.ID,
		InstanceID:     instance.InstanceID,
		CompanyID:      instance.CompanyID,
		Name:           instance.Name,
		PhoneNumber:    instance.PhoneNumber,
		Status:         string(instance.Status),
		APIToken:       instance.APIToken,
		WebhookURL:     instance.WebhookURL,
		APISettings:    string(settings),
		IsActive:       instance.IsActive,
		LastActivityAt: instance.LastActivityAt,
		CreatedAt:      instance.CreatedAt,
		UpdatedAt:      instance.UpdatedAt,
	}
}

func fromInstanceModel(m instanceModel) domain.Instance {
	var settings domain.APISettings
	if m.APISettings != "" {
		_ = json.Unmarshal([]byte(m.APISettings), &settings)
	}
	return domain.Instance{
		ID:             m.ID,
		InstanceID:     m.InstanceID,
		CompanyID:      m.CompanyID,
		Name:           m.Name,
		PhoneNumber:    m.PhoneNumber,
		Status:         domain.InstanceStatus(m.Status),
		APIToken:       m.APIToken,
		WebhookURL:     m.WebhookURL,
		Settings:       settings,
		IsActive:       m.IsActive,
		LastActivityAt: m.LastActivityAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
