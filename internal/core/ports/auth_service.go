package ports

import (
	"context"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
)

// RegisterInput carries a new account registration. Role must be client or
// professional; admin accounts are provisioned out of band.
type RegisterInput struct {
	DisplayName string
	Email       string
	Password    string
	Role        string
	Phone       string
	City        string
}

// AuthService defines registration and login.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
