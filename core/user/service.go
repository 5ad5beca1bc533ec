package user

import (
	"context"
	"errors"
	"time"

	"github.com/ispeaktu/backend/core"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrNameExists  = errors.New("a user with this name already exists")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckUniqueness(ctx context.Context, uid, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(uid, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUniqueness(context.Background(), uid, email, exclUsers...); err != nil {
		var field string
		switch err {
		case ErrNameExists:
			field = "name"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

// Register creates an active student account. The account id is derived from
// the display name so the same name always maps to the same progress history.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		ID:        StudentUID(nu.Name),
		Name:      nu.Name,
		Email:     nu.Email,
		IsActive:  true,
		Roles:     []string{RoleStudent},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

// GetByName resolves the display name to its derived account id.
func (svc *Service) GetByName(ctx context.Context, name string) (User, error) {
	return svc.repo.GetUserByID(ctx, StudentUID(name))
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// GetByNameOrEmail tries the display-name derivation first, then the email.
func (svc *Service) GetByNameOrEmail(ctx context.Context, nameOrEmail string) (User, error) {
	if usr, err := svc.GetByName(ctx, nameOrEmail); err == nil {
		return usr, nil
	}
	return svc.GetByEmail(ctx, nameOrEmail)
}

// GrantTeacher adds the teacher role to an existing account. Role elevation
// only ever happens server-side, through this operation.
func (svc *Service) GrantTeacher(ctx context.Context, id string) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if usr.IsTeacher() {
		return usr, nil
	}
	usr.Roles = append(usr.Roles, RoleTeacher)
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr, nil)
}

// RecordLogin stamps a successful authentication.
func (svc *Service) RecordLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	usr.UpdatedAt = usr.LastLogin
	return svc.repo.UpdateUser(ctx, usr, nil)
}

func (svc *Service) Update(ctx context.Context, usr User, isActive *bool) (User, error) {
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr, isActive)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}
