package services

import (
	"context"
	"fmt"
	"time"

	"github.com/joshua-takyi/carhire/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AgencyService struct {
	agenciesRepo models.AgencyRepo
	carsRepo     models.CarRepo
}

func NewAgencyService(agenciesRepo models.AgencyRepo, carsRepo models.CarRepo) *AgencyService {
	return &AgencyService{
		agenciesRepo: agenciesRepo,
		carsRepo:     carsRepo,
	}
}

func (as *AgencyService) CreateAgency(ctx context.Context, agency *models.Agency) (*models.Agency, error) {
	agency.Sanitize()
	if err := models.Validate.Struct(agency); err != nil {
		return nil, fmt.Errorf("%w: invalid agency data provided: %v", models.ErrValidation, err)
	}
	now := time.Now().UTC()
	agency.ID = primitive.NilObjectID
	agency.CreatedAt = now
	agency.UpdatedAt = now
	return as.agenciesRepo.CreateAgency(ctx, agency)
}

func (as *AgencyService) GetAgency(ctx context.Context, id primitive.ObjectID) (*models.Agency, error) {
	return as.agenciesRepo.GetAgencyByID(ctx, id)
}

// ListAgencies returns agencies with the number of cars each one lists.
func (as *AgencyService) ListAgencies(ctx context.Context, q models.AgencyQuery) ([]*models.AgencyView, int64, error) {
	q.Pagination = q.Normalize(50)
	agencies, total, err := as.agenciesRepo.ListAgencies(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]primitive.ObjectID, 0, len(agencies))
	for _, a := range agencies {
		ids = append(ids, a.ID)
	}
	cars, err := as.carsRepo.CountCarsByAgency(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	views := make([]*models.AgencyView, 0, len(agencies))
	for _, a := range agencies {
		views = append(views, &models.AgencyView{Agency: a, Count: models.AgencyCount{Cars: cars[a.ID]}})
	}
	return views, total, nil
}
