package service

import (
	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/app/repository"
	"github.com/storerate/storerate-backend/pkg/logger"
	"github.com/storerate/storerate-backend/pkg/util"
)

// UserProvisioner creates an owner account for an email with no existing
// user. It keeps credential generation policy out of the store service:
// callers only see the created user and the plaintext temporary password,
// which is returned exactly once.
type UserProvisioner interface {
	Provision(email, name, address string) (*model.User, string, error)
}

type tempPasswordProvisioner struct {
	userRepo repository.UserRepository
}

func NewTempPasswordProvisioner(userRepo repository.UserRepository) UserProvisioner {
	return &tempPasswordProvisioner{userRepo: userRepo}
}

func (p *tempPasswordProvisioner) Provision(email, name, address string) (*model.User, string, error) {
	tempPassword, err := util.GenerateTempPassword()
	if err != nil {
		return nil, "", err
	}
	hash, err := util.HashPassword(tempPassword)
	if err != nil {
		return nil, "", err
	}

	if name == "" {
		name = email
	}
	owner := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Address:      address,
		Role:         model.RoleStoreOwner,
	}
	if err := p.userRepo.Create(owner); err != nil {
		return nil, "", err
	}

	logger.Info("Owner account provisioned", map[string]interface{}{
		"user_id": owner.ID,
		"email":   owner.Email,
	})
	return owner, tempPassword, nil
}
