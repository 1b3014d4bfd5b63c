package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/luminospark/asambal-system/docstore"
	"github.com/luminospark/asambal-system/models"
)

var ErrTransferNotFound = errors.New("transfer request not found")

type TransferRepository interface {
	Create(ctx context.Context, op docstore.Operator, transfer *models.TransferRequest) error
	Save(ctx context.Context, op docstore.Operator, transfer *models.TransferRequest) error
	GetByID(ctx context.Context, op docstore.Operator, id string) (*models.TransferRequest, error)
	FindOpenByPlayer(ctx context.Context, op docstore.Operator, playerID string) (*models.TransferRequest, error)
	ListByStatus(ctx context.Context, op docstore.Operator, status models.TransferStatus) ([]*models.TransferRequest, error)
	ListByPlayer(ctx context.Context, op docstore.Operator, playerID string) ([]*models.TransferRequest, error)
}

type docTransferRepository struct {
	store docstore.Store
}

func NewTransferRepository(store docstore.Store) TransferRepository {
	return &docTransferRepository{store: store}
}

func (r *docTransferRepository) Create(ctx context.Context, op docstore.Operator, transfer *models.TransferRequest) error {
	if transfer.ID == "" {
		transfer.ID = r.store.NewID()
	}
	return r.Save(ctx, op, transfer)
}

func (r *docTransferRepository) Save(ctx context.Context, op docstore.Operator, transfer *models.TransferRequest) error {
	data, err := docstore.DataFrom(transfer)
	if err != nil {
		return fmt.Errorf("encode transfer %s: %w", transfer.ID, err)
	}
	return resolve(r.store, op).Set(ctx, CollectionTransfers, transfer.ID, data)
}

func (r *docTransferRepository) GetByID(ctx context.Context, op docstore.Operator, id string) (*models.TransferRequest, error) {
	doc, err := resolve(r.store, op).Get(ctx, CollectionTransfers, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, err
	}
	return decodeTransfer(doc)
}

func (r *docTransferRepository) FindOpenByPlayer(ctx context.Context, op docstore.Operator, playerID string) (*models.TransferRequest, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionTransfers,
		docstore.Where("jugadorId", docstore.OpEqual, playerID).
			And("status", docstore.OpIn, models.OpenTransferStatuses).
			WithLimit(1))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrTransferNotFound
	}
	return decodeTransfer(docs[0])
}

func (r *docTransferRepository) ListByStatus(ctx context.Context, op docstore.Operator, status models.TransferStatus) ([]*models.TransferRequest, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionTransfers,
		docstore.Where("status", docstore.OpEqual, status))
	if err != nil {
		return nil, err
	}
	return decodeTransfers(docs)
}

func (r *docTransferRepository) ListByPlayer(ctx context.Context, op docstore.Operator, playerID string) ([]*models.TransferRequest, error) {
	docs, err := resolve(r.store, op).Query(ctx, CollectionTransfers,
		docstore.Where("jugadorId", docstore.OpEqual, playerID))
	if err != nil {
		return nil, err
	}
	return decodeTransfers(docs)
}

func decodeTransfer(doc docstore.Document) (*models.TransferRequest, error) {
	var transfer models.TransferRequest
	if err := doc.DataTo(&transfer); err != nil {
		return nil, fmt.Errorf("decode transfer: %w", err)
	}
	transfer.ID = doc.ID
	return &transfer, nil
}

func decodeTransfers(docs []docstore.Document) ([]*models.TransferRequest, error) {
	transfers := make([]*models.TransferRequest, 0, len(docs))
	for _, doc := range docs {
		transfer, err := decodeTransfer(doc)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, transfer)
	}
	return transfers, nil
}
