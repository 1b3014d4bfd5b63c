package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/models"
)

var (
	ErrCoachNotFound        = errors.New("coach not found")
	ErrJoinRequestNotFound  = errors.New("coach join request not found")
)

type CoachRepository interface {
	Create(ctx context.Context, op docstore.Operator, coach *models.Coach) error
	Save(ctx context.Context, op docstore.Operator, coach *models.Coach) error
	GetByID(ctx context.Context, op docstore.Operator, id string) (*models.Coach, error)
	GetByUserID(ctx context.Context, op docstore.Operator, userID string) (*models.Coach, error)
	GetByEmail(ctx context.Context, op docstore.Operator, email string) (*models.Coach, error)
	ListByClub(ctx context.Context, op docstore.Operator, clubID string) ([]*models.Coach, error)
	List(ctx context.Context, op docstore.Operator) ([]*models.Coach, error)
}

type docCoachRepository struct {
	store docstore.Store
}

func NewCoachRepository(store docstore.Store) CoachRepository {
	return &docCoachRepository{store: store}
}

func (r *docCoachRepository) Create(ctx context.Context, op docstore.Operator, coach *models.Coach) error {
	if coach.ID == "" {
		// coach documents share the id of their user document
		coach.ID = coach.UserID
	}
	return r.Save(ctx, op, coach)
}

func (r *docCoachRepository) Save(ctx context.Context, op docstore.Operator, coach *models.Coach) error {
	coach.ClubIDs = models.MembershipClubIDs(coach.Clubs)
	data, err := docstore.DataFrom(coach)
	if err != nil {
		return fmt.Errorf("encode coach %s: %w", coach.ID, err)
	}
	return resolve(r.store, op).Set(ctx, CollectionCoaches, coach.ID, data)
}

func (r *docCoachRepository) GetByID(ctx context.Context, op docstore.Operator, id string) (*models.Coach, error) {
	doc, err := resolve(r.store, op).Get(ctx, CollectionCoaches, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrCoachNotFound
		}
		return nil, err
	}
	return decodeCoach(doc)
}

func (r *docCoachRepository) GetByUserID(ctx context.Context, op docstore.Operator, userID string) (*models.Coach, error) {
	return r.getOne(ctx, op, docstore.Where("userId", docstore.OpEqual, userID).WithLimit(1))
}

func (r *docCoachRepository) GetByEmail(ctx context.Context, op docstore.Operator, email string) (*models.Coach, error) {
	return r.getOne(ctx, op, docstore.Where("email", docstore.OpEqual, email).WithLimit(1))
}

func (r *docCoachRepository) getOne(ctx context.Context, op docstore.Operator, q docstore.Query) (*models.Coach, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionCoaches, q)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrCoachNotFound
	}
	return decodeCoach(docs[0])
}

func (r *docCoachRepository) ListByClub(ctx context.Context, op docstore.Operator, clubID string) ([]*models.Coach, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionCoaches,
		docstore.Where("clubIds", docstore.OpArrayContains, clubID))
	if err != nil {
		return nil, err
	}
	return decodeCoaches(docs)
}

func (r *docCoachRepository) List(ctx context.Context, op docstore.Operator) ([]*models.Coach, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionCoaches, docstore.Query{OrderBy: "apellido"})
	if err != nil {
		return nil, err
	}
	return decodeCoaches(docs)
}

func decodeCoach(doc docstore.Document) (*models.Coach, error) {
	var coach models.Coach
	if err := doc.DataTo(&coach); err != nil {
		return nil, fmt.Errorf("decode coach: %w", err)
	}
	coach.ID = doc.ID
	return &coach, nil
}

func decodeCoaches(docs []docstore.Document) ([]*models.Coach, error) {
	coaches := make([]*models.Coach, 0, len(docs))
	for _, doc := range docs {
		coach, err := decodeCoach(doc)
		if err != nil {
			return nil, err
		}
		coaches = append(coaches, coach)
	}
	return coaches, nil
}

// CoachRequestRepository stores join requests awaiting the coach's consent.
type CoachRequestRepository interface {
	Create(ctx context.Context, op docstore.Operator, request *models.CoachJoinRequest) error
	Save(ctx context.Context, op docstore.Operator, request *models.CoachJoinRequest) error
	GetByID(ctx context.Context, op docstore.Operator, id string) (*models.CoachJoinRequest, error)
	FindPending(ctx context.Context, op docstore.Operator, coachID, clubID string) (*models.CoachJoinRequest, error)
	ListPendingByCoach(ctx context.Context, op docstore.Operator, coachID string) ([]*models.CoachJoinRequest, error)
}

type docCoachRequestRepository struct {
	store docstore.Store
}

func NewCoachRequestRepository(store docstore.Store) CoachRequestRepository {
	return &docCoachRequestRepository{store: store}
}

func (r *docCoachRequestRepository) Create(ctx context.Context, op docstore.Operator, request *models.CoachJoinRequest) error {
	if request.ID == "" {
		request.ID = r.store.NewID()
	}
	return r.Save(ctx, op, request)
}

func (r *docCoachRequestRepository) Save(ctx context.Context, op docstore.Operator, request *models.CoachJoinRequest) error {
	data, err := docstore.DataFrom(request)
	if err != nil {
		return fmt.Errorf("encode coach request %s: %w", request.ID, err)
	}
	return resolve(r.store, op).Set(ctx, CollectionCoachRequests, request.ID, data)
}

func (r *docCoachRequestRepository) GetByID(ctx context.Context, op docstore.Operator, id string) (*models.CoachJoinRequest, error) {
	doc, err := resolve(r.store, op).Get(ctx, CollectionCoachRequests, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrJoinRequestNotFound
		}
		return nil, err
	}
	return decodeCoachRequest(doc)
}

func (r *docCoachRequestRepository) FindPending(ctx context.Context, op docstore.Operator, coachID, clubID string) (*models.CoachJoinRequest, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionCoachRequests,
		docstore.Where("profesorId", docstore.OpEqual, coachID).
			And("clubId", docstore.OpEqual, clubID).
			And("status", docstore.OpEqual, models.JoinRequestPending).
			WithLimit(1))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrJoinRequestNotFound
	}
	return decodeCoachRequest(docs[0])
}

func (r *docCoachRequestRepository) ListPendingByCoach(ctx context.Context, op docstore.Operator, coachID string) ([]*models.CoachJoinRequest, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionCoachRequests,
		docstore.Where("profesorId", docstore.OpEqual, coachID).
			And("status", docstore.OpEqual, models.JoinRequestPending))
	if err != nil {
		return nil, err
	}
	requests := make([]*models.CoachJoinRequest, 0, len(docs))
	for _, doc := range docs {
		request, err := decodeCoachRequest(doc)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, nil
}

func decodeCoachRequest(doc docstore.Document) (*models.CoachJoinRequest, error) {
	var request models.CoachJoinRequest
	if err := doc.DataTo(&request); err != nil {
		return nil, fmt.Errorf("decode coach request: %w", err)
	}
	request.ID = doc.ID
	return &request, nil
}
