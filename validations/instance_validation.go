package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	domainInstance "github.com/zapedidos/zapedidos/domains/instance"
	pkgError "github.com/zapedidos/zapedidos/pkg/error"
)

func ValidateCreateInstance(ctx context.Context, request domainInstance.CreateInstanceRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.CompanyID, validation.Required),
		validation.Field(&request.Name, validation.Required, validation.Length(1, 120)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

func ValidateUpdateInstance(ctx context.Context, request domainInstance.UpdateInstanceRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Name, validation.Required, validation.Length(1, 120)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}
