package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/models"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	Create(ctx context.Context, op docstore.Operator, player *models.Player) error
	Save(ctx context.Context, op docstore.Operator, player *models.Player) error
	GetByID(ctx context.Context, op docstore.Operator, id string) (*models.Player, error)
	GetByUserID(ctx context.Context, op docstore.Operator, userID string) (*models.Player, error)
	GetByEmail(ctx context.Context, op docstore.Operator, email string) (*models.Player, error)
	ListByClub(ctx context.Context, op docstore.Operator, clubID string) ([]*models.Player, error)
	ListByCoach(ctx context.Context, op docstore.Operator, coachID string) ([]*models.Player, error)
	ListScholarshipHolders(ctx context.Context, op docstore.Operator) ([]*models.Player, error)
	List(ctx context.Context, op docstore.Operator) ([]*models.Player, error)
}

type docPlayerRepository struct {
	store docstore.Store
}

func NewPlayerRepository(store docstore.Store) PlayerRepository {
	return &docPlayerRepository{store: store}
}

func (r *docPlayerRepository) Create(ctx context.Context, op docstore.Operator, player *models.Player) error {
	if player.ID == "" {
		// player documents share the id of their user document
		player.ID = player.UserID
	}
	return r.Save(ctx, op, player)
}

func (r *docPlayerRepository) Save(ctx context.Context, op docstore.Operator, player *models.Player) error {
	player.ClubIDs = models.MembershipClubIDs(player.Clubs)
	data, err := docstore.DataFrom(player)
	if err != nil {
		return fmt.Errorf("encode player %s: %w", player.ID, err)
	}
	return resolve(r.store, op).Set(ctx, CollectionPlayers, player.ID, data)
}

func (r *docPlayerRepository) GetByID(ctx context.Context, op docstore.Operator, id string) (*models.Player, error) {
	doc, err := resolve(r.store, op).Get(ctx, CollectionPlayers, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return decodePlayer(doc)
}

func (r *docPlayerRepository) GetByUserID(ctx context.Context, op docstore.Operator, userID string) (*models.Player, error) {
	return r.getOne(ctx, op, docstore.Where("userId", docstore.OpEqual, userID).WithLimit(1))
}

func (r *docPlayerRepository) GetByEmail(ctx context.Context, op docstore.Operator, email string) (*models.Player, error) {
	return r.getOne(ctx, op, docstore.Where("email", docstore.OpEqual, email).WithLimit(1))
}

func (r *docPlayerRepository) getOne(ctx context.Context, op docstore.Operator, q docstore.Query) (*models.Player, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionPlayers, q)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrPlayerNotFound
	}
	return decodePlayer(docs[0])
}

func (r *docPlayerRepository) ListByClub(ctx context.Context, op docstore.Operator, clubID string) ([]*models.Player, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionPlayers,
		docstore.Where("clubIds", docstore.OpArrayContains, clubID))
	if err != nil {
		return nil, err
	}
	return decodePlayers(docs)
}

func (r *docPlayerRepository) ListByCoach(ctx context.Context, op docstore.Operator, coachID string) ([]*models.Player, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionPlayers,
		docstore.Where("coachId", docstore.OpEqual, coachID))
	if err != nil {
		return nil, err
	}
	return decodePlayers(docs)
}

func (r *docPlayerRepository) ListScholarshipHolders(ctx context.Context, op docstore.Operator) ([]*models.Player, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionPlayers,
		docstore.Where("becado", docstore.OpEqual, true))
	if err != nil {
		return nil, err
	}
	return decodePlayers(docs)
}

func (r *docPlayerRepository) List(ctx context.Context, op docstore.Operator) ([]*models.Player, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionPlayers, docstore.Query{OrderBy: "apellido"})
	if err != nil {
		return nil, err
	}
	return decodePlayers(docs)
}

func decodePlayer(doc docstore.Document) (*models.Player, error) {
	var player models.Player
	if err := doc.DataTo(&player); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	player.ID = doc.ID
	return &player, nil
}

func decodePlayers(docs []docstore.Document) ([]*models.Player, error) {
	players := make([]*models.Player, 0, len(docs))
	for _, doc := range docs {
		player, err := decodePlayer(doc)
		if err != nil {
			return nil, err
		}
		players = append(players, player)
	}
	return players, nil
}
