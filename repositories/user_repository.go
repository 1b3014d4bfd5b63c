package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(ctx context.Context, op docstore.Operator, user *models.User) error
	Save(ctx context.Context, op docstore.Operator, user *models.User) error
	Patch(ctx context.Context, op docstore.Operator, id string, patch map[string]interface{}) error
	GetByID(ctx context.Context, op docstore.Operator, id string) (*models.User, error)
	GetByEmail(ctx context.Context, op docstore.Operator, email string) (*models.User, error)
	GetByActivationToken(ctx context.Context, op docstore.Operator, token string) (*models.User, error)
	ListByStatus(ctx context.Context, op docstore.Operator, status models.Status) ([]*models.User, error)
	ListByClub(ctx context.Context, op docstore.Operator, clubID string) ([]*models.User, error)
	CountByStatus(ctx context.Context, status models.Status) (int, error)
}

type docUserRepository struct {
	store docstore.Store
}

func NewUserRepository(store docstore.Store) UserRepository {
	return &docUserRepository{store: store}
}

func (r *docUserRepository) Create(ctx context.Context, op docstore.Operator, user *models.User) error {
	if user.ID == "" {
		user.ID = r.store.NewID()
	}
	return r.Save(ctx, op, user)
}

func (r *docUserRepository) Save(ctx context.Context, op docstore.Operator, user *models.User) error {
	user.ClubIDs = models.MembershipClubIDs(user.Clubs)
	data, err := docstore.DataFrom(user)
	if err != nil {
		return fmt.Errorf("encode user %s: %w", user.ID, err)
	}
	return resolve(r.store, op).Set(ctx, CollectionUsers, user.ID, data)
}

func (r *docUserRepository) Patch(ctx context.Context, op docstore.Operator, id string, patch map[string]interface{}) error {
	err := resolve(r.store, op).Update(ctx, CollectionUsers, id, patch)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (r *docUserRepository) GetByID(ctx context.Context, op docstore.Operator, id string) (*models.User, error) {
	doc, err := resolve(r.store, op).Get(ctx, CollectionUsers, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return decodeUser(doc)
}

func (r *docUserRepository) GetByEmail(ctx context.Context, op docstore.Operator, email string) (*models.User, error) {
	return r.getOne(ctx, op, docstore.Where("email", docstore.OpEqual, email).WithLimit(1))
}

func (r *docUserRepository) GetByActivationToken(ctx context.Context, op docstore.Operator, token string) (*models.User, error) {
	return r.getOne(ctx, op, docstore.Where("activationToken", docstore.OpEqual, token).WithLimit(1))
}

func (r *docUserRepository) getOne(ctx context.Context, op docstore.Operator, q docstore.Query) (*models.User, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionUsers, q)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrUserNotFound
	}
	return decodeUser(docs[0])
}

func (r *docUserRepository) ListByStatus(ctx context.Context, op docstore.Operator, status models.Status) ([]*models.User, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionUsers,
		docstore.Where("status", docstore.OpEqual, status))
	if err != nil {
		return nil, err
	}
	return decodeUsers(docs)
}

func (r *docUserRepository) ListByClub(ctx context.Context, op docstore.Operator, clubID string) ([]*models.User, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionUsers,
		docstore.Where("clubIds", docstore.OpArrayContains, clubID))
	if err != nil {
		return nil, err
	}
	return decodeUsers(docs)
}

func (r *docUserRepository) CountByStatus(ctx context.Context, status models.Status) (int, error) {
	users, err := r.ListByStatus(ctx, nil, status)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

func decodeUser(doc docstore.Document) (*models.User, error) {
	// Normalize the historical role shapes before the typed decode; nothing
	// downstream sees anything but []Role.
	if raw, ok := doc.Data["roles"]; ok {
		doc.Data["roles"] = models.ParseRoles(raw)
	}
	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	user.ID = doc.ID
	return &user, nil
}

func decodeUsers(docs []docstore.Document) ([]*models.User, error) {
	users := make([]*models.User, 0, len(docs))
	for _, doc := range docs {
		user, err := decodeUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}
