package validation

import (
	"fmt"
	"strings"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
)

const (
	maxNameLength     = 100
	maxPaymentType    = 50
	maxPaymentDetails = 255
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateLoginRequest(req *models.LoginRequest) error {
	if err := validateName(req.Name); err != nil {
		return err
	}

	if !req.Role.Valid() {
		return ValidationError{
			Field:   "role",
			Message: "role must be one of ADMIN, MANAGER, MEMBER",
		}
	}

	if !req.Region.Valid() {
		return ValidationError{
			Field:   "region",
			Message: "region must be one of INDIA, AMERICA",
		}
	}
	return nil
}

// ValidateAddCartItemRequest also fills in the default quantity of 1
func ValidateAddCartItemRequest(req *models.AddCartItemRequest) error {
	if err := requireID("menu_item_id", req.MenuItemID); err != nil {
		return err
	}

	if err := requireID("restaurant_id", req.RestaurantID); err != nil {
		return err
	}

	if req.Quantity == nil {
		one := 1
		req.Quantity = &one
	}

	if *req.Quantity <= 0 {
		return ValidationError{
			Field:   "quantity",
			Message: "quantity must be greater than 0",
		}
	}
	return nil
}

// ValidateCreateOrderRequest checks the shape of the request only. Item ids
// are never rejected here; blank or unknown ones are dropped when the order
// is built.
func ValidateCreateOrderRequest(req *models.CreateOrderRequest) error {
	if err := requireID("restaurant_id", req.RestaurantID); err != nil {
		return err
	}

	if req.PaymentType != nil {
		if err := validateLength("payment_type", *req.PaymentType, maxPaymentType); err != nil {
			return err
		}
	}

	if req.PaymentDetails != nil {
		if err := validateLength("payment_details", *req.PaymentDetails, maxPaymentDetails); err != nil {
			return err
		}
	}
	return nil
}

func ValidateUpdatePaymentRequest(req *models.UpdatePaymentRequest) error {
	if strings.TrimSpace(req.PaymentType) == "" {
		return ValidationError{
			Field:   "payment_type",
			Message: "payment type is required",
		}
	}

	if err := validateLength("payment_type", req.PaymentType, maxPaymentType); err != nil {
		return err
	}

	if req.PaymentDetails != nil {
		return validateLength("payment_details", *req.PaymentDetails, maxPaymentDetails)
	}
	return nil
}

func ValidateUpdateStatusRequest(req *models.UpdateStatusRequest) error {
	if !req.Status.Valid() {
		return ValidationError{
			Field:   "status",
			Message: "status must be one of PENDING, PAID, CANCELLED",
		}
	}
	return nil
}

func ValidatePaymentMethodRequest(req *models.PaymentMethodRequest) error {
	if strings.TrimSpace(req.Type) == "" {
		return ValidationError{
			Field:   "type",
			Message: "payment method type is required",
		}
	}

	if err := validateLength("type", req.Type, maxPaymentType); err != nil {
		return err
	}

	if strings.TrimSpace(req.Details) == "" {
		return ValidationError{
			Field:   "details",
			Message: "payment method details are required",
		}
	}

	return validateLength("details", req.Details, maxPaymentDetails)
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ValidationError{
			Field:   "name",
			Message: "name is required",
		}
	}

	return validateLength("name", name, maxNameLength)
}

func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", field),
		}
	}
	return nil
}

func validateLength(field, value string, limit int) error {
	if len(value) > limit {
		return ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s must be at most %d characters", field, limit),
		}
	}
	return nil
}
