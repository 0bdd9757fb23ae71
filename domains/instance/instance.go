package instance

import (
	"context"

	"github.com/zapedidos/zapedidos/chatbotengine/domain"
)

type CreateInstanceRequest struct {
	CompanyID   string             `json:"company_id"`
	Name        string             `json:"name"`
	PhoneNumber string             `json:"phone_number"`
	Settings    domain.APISettings `json:"api_settings"`
}

type UpdateInstanceRequest struct {
	Name        string             `json:"name"`
	PhoneNumber string             `json:"phone_number"`
	Settings    domain.APISettings `json:"api_settings"`
	IsActive    bool               `json:"is_active"`
}

type IInstanceUsecase interface {
	Create(ctx context.Context, req CreateInstanceRequest) (domain.Instance, error)
	List(ctx context.Context, companyID string) ([]domain.Instance, error)
	GetByID(ctx context.Context, id string) (domain.Instance, error)
	Update(ctx context.Context, id string, req UpdateInstanceRequest) (domain.Instance, error)
}
