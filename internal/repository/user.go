package repository

import (
	"context"
	"sort"
	"time"

	"github.com/skanerxe/nutrition-helper/internal/domain"
	apperrors "github.com/skanerxe/nutrition-helper/internal/errors"
	"github.com/skanerxe/nutrition-helper/internal/storage"
	"github.com/skanerxe/nutrition-helper/internal/utils"
)

// UserRepository handles account records in the users document
type UserRepository struct {
	store *storage.DocumentStore
}

// NewUserRepository creates a new user repository
func NewUserRepository(store *storage.DocumentStore) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) load(ctx context.Context) (map[string]domain.User, error) {
	body, err := r.store.Read(ctx, storage.DocUsers)
	if err != nil {
		return nil, err
	}

	var users map[string]domain.User
	if err := storage.UnmarshalDocument(storage.DocUsers, body, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = make(map[string]domain.User)
	}
	return users, nil
}

// Get returns the user stored under the given email
func (r *UserRepository) Get(ctx context.Context, email string) (*domain.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	user, exists := users[email]
	if !exists {
		return nil, apperrors.ErrUserNotFound
	}
	user.Email = email
	return &user, nil
}

// Create registers a new account. The email must not already be taken; the
// password is stored hashed, never in plaintext.
func (r *UserRepository) Create(ctx context.Context, email, password string) (*domain.User, error) {
	var created domain.User

	_, err := r.store.Update(ctx, storage.DocUsers, func(body []byte) ([]byte, error) {
		var users map[string]domain.User
		if err := storage.UnmarshalDocument(storage.DocUsers, body, &users); err != nil {
			return nil, err
		}
		if users == nil {
			users = make(map[string]domain.User)
		}

		if _, exists := users[email]; exists {
			return nil, apperrors.ErrDuplicateEmail
		}

		now := time.Now().UTC()
		created = domain.User{
			Email:        email,
			PasswordHash: utils.HashPassword(password),
			Balance:      0,
			FreeRequests: 10,
			IsAdmin:      false,
			CreatedAt:    now,
			LastLogin:    now,
			Settings: domain.UserSettings{
				Theme:         "light",
				Notifications: true,
			},
			Stats: domain.UserStats{
				JoinedDays: 1,
			},
		}
		users[email] = created

		return marshalMap(users)
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

// Update applies mutate to the stored user and writes the document back.
// A missing email fails with not_found and writes nothing.
func (r *UserRepository) Update(ctx context.Context, email string, mutate func(*domain.User) error) (*domain.User, error) {
	var updated domain.User

	_, err := r.store.Update(ctx, storage.DocUsers, func(body []byte) ([]byte, error) {
		var users map[string]domain.User
		if err := storage.UnmarshalDocument(storage.DocUsers, body, &users); err != nil {
			return nil, err
		}

		user, exists := users[email]
		if !exists {
			return nil, apperrors.ErrUserNotFound
		}
		user.Email = email

		if err := mutate(&user); err != nil {
			return nil, err
		}

		users[email] = user
		updated = user

		return marshalMap(users)
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// List returns every account, sorted by email for stable output
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.User, 0, len(users))
	for email, user := range users {
		user.Email = email
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Email < result[j].Email
	})
	return result, nil
}
