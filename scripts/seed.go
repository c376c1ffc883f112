package main

import (
	"context"
	"os"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/moysha/servicecatalog/internal/adapters/database"
	"github.com/moysha/servicecatalog/internal/adapters/search"
	"github.com/moysha/servicecatalog/internal/application/services"
	"github.com/moysha/servicecatalog/internal/domain/entities"
	"github.com/moysha/servicecatalog/internal/domain/repositories"
	"github.com/moysha/servicecatalog/internal/infrastructure/clients/postgres"
	"github.com/moysha/servicecatalog/internal/infrastructure/clients/typesense"
	"github.com/moysha/servicecatalog/internal/infrastructure/observability"
	"github.com/moysha/servicecatalog/pkg/config"
	apperrors "github.com/moysha/servicecatalog/pkg/errors"
)

var seedUsers = []goqu.Record{
	{"id": "seed-user-alice", "email": "alice@example.com", "role": string(entities.UserRoleUser)},
	{"id": "seed-user-bob", "email": "bob@example.com", "role": string(entities.UserRoleUser)},
	{"id": "seed-user-admin", "email": "admin@example.com", "role": string(entities.UserRoleAdmin)},
}

var seedCategories = []string{"Lessons", "Repairs", "Moving", "Design"}

type seedService struct {
	owner    string
	category string
	title    string
	kind     entities.ServiceType
	price    string
	place    string
}

var seedServices = []seedService{
	{"seed-user-alice", "Lessons", "Guitar lessons for beginners", entities.ServiceTypeOffer, "25.00", "Online"},
	{"seed-user-alice", "Design", "Logo for a small bakery", entities.ServiceTypeOrder, "120.00", ""},
	{"seed-user-bob", "Repairs", "Bike tune-up", entities.ServiceTypeOffer, "40.00", "Downtown"},
	{"seed-user-bob", "Moving", "Help moving a sofa", entities.ServiceTypeOrder, "0", "Riverside"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-seed", cfg.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to DB")
	}
	defer pgClient.Close()

	ctx := context.Background()

	if err := postgres.Migrate(&cfg.Database); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE favorites, feedback, responses, services, categories CASCADE`)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to truncate tables")
		}
	}

	var index repositories.ServiceSearchIndex
	if cfg.Typesense.Enabled {
		if tsClient, err := typesense.NewClient(&cfg.Typesense); err == nil {
			if err := tsClient.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to init Typesense schema")
			}
			index = search.NewTypesenseAdapter(tsClient)
		} else {
			log.Warn().Err(err).Msg("Typesense unavailable, seeding PostgreSQL only")
		}
	}

	// users belong to the user directory, which has no write API here
	insertUsers := goqu.Dialect("postgres").
		Insert("users").
		Rows(seedUsers).
		OnConflict(goqu.DoNothing())
	query, args, err := insertUsers.ToSQL()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build users insert")
	}
	if _, err := pgClient.DB().ExecContext(ctx, query, args...); err != nil {
		log.Fatal().Err(err).Msg("failed to seed users")
	}

	categoryRepo := database.NewCategoryAdapter(pgClient)
	serviceRepo := database.NewServiceAdapter(pgClient)
	categoryService := services.NewCategoryService(pgClient, categoryRepo, serviceRepo, nil)
	catalog := services.NewServiceCatalogService(
		pgClient,
		serviceRepo,
		database.NewUserAdapter(pgClient),
		categoryRepo,
		index,
		nil,
		nil,
	)

	categoryIDs := map[string]string{}
	for _, name := range seedCategories {
		category, err := categoryService.Create(ctx, name)
		if apperrors.IsConflict(err) {
			category, err = categoryRepo.FindByName(ctx, name)
		}
		if err != nil {
			log.Fatal().Err(err).Str("category", name).Msg("failed to seed category")
		}
		categoryIDs[name] = category.ID
	}

	created := 0
	for _, s := range seedServices {
		_, err := catalog.Create(ctx, services.CreateServiceInput{
			OwnerID:     s.owner,
			CategoryID:  categoryIDs[s.category],
			Title:       s.title,
			Description: s.title,
			Type:        s.kind,
			Price:       decimal.RequireFromString(s.price),
			Place:       s.place,
		})
		if err != nil {
			log.Error().Err(err).Str("title", s.title).Msg("failed to seed service")
			continue
		}
		created++
	}

	log.Info().
		Int("users", len(seedUsers)).
		Int("categories", len(categoryIDs)).
		Int("services", created).
		Msg("seeding complete")
}
