package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"yamdb/proj/internal/domain/filters"
	"yamdb/proj/internal/domain/models"
	"yamdb/proj/internal/lib/validator"
	"yamdb/proj/internal/storage"
)

type UserStorage interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByUsernameOrEmail(ctx context.Context, username, email string) ([]models.User, error)
	List(ctx context.Context, search string, f filters.Filters) ([]models.User, int, error)
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type UserService struct {
	log     *slog.Logger
	storage UserStorage
}

func New(log *slog.Logger, storage UserStorage) *UserService {
	return &UserService{
		log:     log,
		storage: storage,
	}
}

type CreateParams struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      models.Role
}

// UpdateParams holds a partial update. Nil fields are left unchanged.
type UpdateParams struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *models.Role
}

func conflictError(err error) validator.FieldErrors {
	if strings.Contains(err.Error(), "username") {
		return validator.NewFieldError("username", msgUsernameTaken)
	}
	return validator.NewFieldError("email", msgEmailTaken)
}

// checkUnique fails when username or email is held by a user other than selfID. Username is checked first.
func (s *UserService) checkUnique(ctx context.Context, selfID int64, username, email string) error {
	existing, err := s.storage.GetByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return err
	}
	for _, u := range existing {
		if u.ID != selfID && u.Username == username {
			return validator.NewFieldError("username", msgUsernameTaken)
		}
	}
	for _, u := range existing {
		if u.ID != selfID && u.Email == email {
			return validator.NewFieldError("email", msgEmailTaken)
		}
	}
	return nil
}

func (s *UserService) List(ctx context.Context, search string, f filters.Filters) ([]models.User, int, error) {
	const op = "users.UserService.List"
	log := s.log.With("op", op)
	users, total, err := s.storage.List(ctx, search, f)
	if err != nil {
		log.Error(err.Error())
		return nil, 0, err
	}
	return users, total, nil
}

func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	const op = "users.UserService.Get"
	log := s.log.With("op", op, "username", username)
	user, err := s.storage.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("user not found")
			return nil, ErrUserNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return user, nil
}

// Create adds a user on behalf of an administrator. The user stays inactive until it
// obtains a token through the confirmation code flow.
func (s *UserService) Create(ctx context.Context, params CreateParams) (*models.User, error) {
	const op = "users.UserService.Create"
	log := s.log.With("op", op, "username", params.Username, "email", params.Email)
	if params.Role == "" {
		params.Role = models.RoleUser
	}
	if !params.Role.Valid() {
		return nil, validator.NewFieldError("role", msgInvalidRole)
	}
	if err := s.checkUnique(ctx, 0, params.Username, params.Email); err != nil {
		log.Info("uniqueness check failed", "errMsg", err.Error())
		return nil, err
	}
	user, err := s.storage.Insert(ctx, &models.User{
		Username:  params.Username,
		Email:     params.Email,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Bio:       params.Bio,
		Role:      params.Role,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			log.Info("user already exists", "errMsg", err.Error())
			return nil, conflictError(err)
		}
		log.Error("Error inserting user: " + err.Error())
		return nil, err
	}
	return user, nil
}

// Update patches the user identified by username. Changing the role requires actor to be an admin.
func (s *UserService) Update(ctx context.Context, actor *models.User, username string, params UpdateParams) (*models.User, error) {
	user, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if params.Role != nil && !actor.IsAdmin() {
		return nil, ErrRoleChangeForbidden
	}
	return s.apply(ctx, user, params)
}

// UpdateMe patches the caller's own profile. Role and email are ignored.
func (s *UserService) UpdateMe(ctx context.Context, me *models.User, params UpdateParams) (*models.User, error) {
	params.Role = nil
	params.Email = nil
	current := *me
	return s.apply(ctx, &current, params)
}

func (s *UserService) apply(ctx context.Context, user *models.User, params UpdateParams) (*models.User, error) {
	const op = "users.UserService.apply"
	log := s.log.With("op", op, "id", user.ID)
	if params.Username != nil {
		user.Username = *params.Username
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.FirstName != nil {
		user.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		user.LastName = *params.LastName
	}
	if params.Bio != nil {
		user.Bio = *params.Bio
	}
	if params.Role != nil {
		if !params.Role.Valid() {
			return nil, validator.NewFieldError("role", msgInvalidRole)
		}
		user.Role = *params.Role
	}
	if params.Username != nil || params.Email != nil {
		if err := s.checkUnique(ctx, user.ID, user.Username, user.Email); err != nil {
			log.Info("uniqueness check failed", "errMsg", err.Error())
			return nil, err
		}
	}
	updated, err := s.storage.Update(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			log.Info("user already exists", "errMsg", err.Error())
			return nil, conflictError(err)
		case errors.Is(err, storage.ErrNotFound):
			log.Info("user not found")
			return nil, ErrUserNotFound
		}
		log.Error("Error updating user: " + err.Error())
		return nil, err
	}
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	const op = "users.UserService.Delete"
	log := s.log.With("op", op, "username", username)
	user, err := s.Get(ctx, username)
	if err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("user not found")
			return ErrUserNotFound
		}
		log.Error(err.Error())
		return err
	}
	return nil
}
