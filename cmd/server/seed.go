package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	entitymodels "turbofcl/internal/entity/models"
	entitystore "turbofcl/internal/entity/store"
	ownershipmodels "turbofcl/internal/ownership/models"
	ownershipstore "turbofcl/internal/ownership/store"
	id "turbofcl/pkg/domain"
)

// seedDemoData loads a small layered ownership structure so the API is
// usable out of the box without postgres: a US defense contractor with one
// foreign corporate owner that is itself majority-held by a foreign fund.
func seedDemoData(log *slog.Logger, entities *entitystore.InMemory, owners *ownershipstore.InMemory) {
	ctx := context.Background()
	now := time.Now()
	effective := now.AddDate(-2, 0, 0)

	contractor := &entitymodels.Entity{
		ID:       id.NewEntityID(),
		Name:     "Meridian Defense Systems LLC",
		CageCode: "7XQ41",
		ClassificationCodes: []entitymodels.ClassificationCode{
			{Code: "334511", Description: "Search, detection, and navigation instruments"},
		},
		CreatedAt: effective,
	}
	holding := &entitymodels.Entity{
		ID:        id.NewEntityID(),
		Name:      "Nordwind Industrie Holding GmbH",
		CreatedAt: effective,
	}
	entities.Put(ctx, contractor)
	entities.Put(ctx, holding)

	owners.Add(ctx, ownershipmodels.OwnershipRelation{
		ID:                  id.NewRelationID(),
		OwnedEntityID:       contractor.ID,
		OwnerEntityID:       &holding.ID,
		OwnerName:           holding.Name,
		OwnerType:           ownershipmodels.OwnerTypeCorporation,
		Citizenship:         []string{"DE"},
		OwnershipPercentage: decimal.NewFromInt(30),
		EffectiveDate:       effective,
		IsForeign:           true,
		RelationshipType:    "equity",
	})
	owners.Add(ctx, ownershipmodels.OwnershipRelation{
		ID:                  id.NewRelationID(),
		OwnedEntityID:       contractor.ID,
		OwnerName:           "Harrison Vale",
		OwnerType:           ownershipmodels.OwnerTypeIndividual,
		Citizenship:         []string{"US"},
		OwnershipPercentage: decimal.NewFromInt(70),
		EffectiveDate:       effective,
		RelationshipType:    "equity",
	})
	owners.Add(ctx, ownershipmodels.OwnershipRelation{
		ID:                  id.NewRelationID(),
		OwnedEntityID:       holding.ID,
		OwnerName:           "Banque Atlantique Capital Fund",
		OwnerType:           ownershipmodels.OwnerTypeFund,
		Citizenship:         []string{"FR"},
		OwnershipPercentage: decimal.NewFromInt(60),
		EffectiveDate:       effective,
		IsForeign:           true,
		IsControlling:       true,
		RelationshipType:    "equity",
	})

	log.Info("seeded demo entity", "entity_id", contractor.ID.String(), "name", contractor.Name)
}
