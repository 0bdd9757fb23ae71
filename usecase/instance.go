package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github.com/zapedidos/zapedidos/chatbotengine/domain"
	"github.com/zapedidos/zapedidos/chatbotengine/repository"
	domainInstance "github.com/zapedidos/zapedidos/domains/instance"
	pkgError "github.com/zapedidos/zapedidos/pkg/error"
	"github.com/zapedidos/zapedidos/validations"
)

type instanceService struct {
	instances *repository.InstanceGormStore
}

func NewInstanceService(instances *repository.InstanceGormStore) domainInstance.IInstanceUsecase {
	return &instanceService{instances: instances}
}

func (s *instanceService) Create(ctx context.Context, req domainInstance.CreateInstanceRequest) (domain.Instance, error) {
	if err := validations.ValidateCreateInstance(ctx, req); err != nil {
		return domain.Instance{}, err
	}

	inst := domain.Instance{
		ID:          uuid.NewString(),
		InstanceID:  uuid.NewString(),
		CompanyID:   req.CompanyID,
		Name:        strings.TrimSpace(req.Name),
		PhoneNumber: req.PhoneNumber,
		Status:      domain.StatusDisconnected,
		APIToken:    newAPIToken(),
		Settings:    req.Settings,
		IsActive:    true,
	}

	if err := s.instances.Create(ctx, inst); err != nil {
		return domain.Instance{}, err
	}
	return s.instances.GetByID(ctx, inst.ID)
}

func (s *instanceService) List(ctx context.Context, companyID string) ([]domain.Instance, error) {
	if strings.TrimSpace(companyID) == "" {
		return nil, pkgError.ValidationError("company_id: cannot be blank.")
	}
	return s.instances.ListByCompany(ctx, companyID)
}

func (s *instanceService) GetByID(ctx context.Context, id string) (domain.Instance, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Instance{}, pkgError.ValidationError("id: cannot be blank.")
	}
	return s.instances.GetByID(ctx, id)
}

func (s *instanceService) Update(ctx context.Context, id string, req domainInstance.UpdateInstanceRequest) (domain.Instance, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Instance{}, pkgError.ValidationError("id: cannot be blank.")
	}
	if err := validations.ValidateUpdateInstance(ctx, req); err != nil {
		return domain.Instance{}, err
	}

	inst, err := s.instances.GetByID(ctx, id)
	if err != nil {
		return domain.Instance{}, err
	}

	inst.Name = strings.TrimSpace(req.Name)
	inst.PhoneNumber = req.PhoneNumber
	inst.Settings = req.Settings
	inst.IsActive = req.IsActive

	if err := s.instances.Update(ctx, inst); err != nil {
		return domain.Instance{}, err
	}
	return s.instances.GetByID(ctx, id)
}

func newAPIToken() string {
	raw := make([]byte, 24)
	rand.Read(raw)
	return hex.EncodeToString(raw)
}
