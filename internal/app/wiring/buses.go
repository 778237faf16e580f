// Package wiring registers the application handlers on the command and
// query buses and wraps them with the middleware pipeline.
package wiring

import (
	"log/slog"
	"time"

	"iasrentals/internal/app/authz"
	"iasrentals/internal/app/commands"
	"iasrentals/internal/app/dto"
	propertiesapp "iasrentals/internal/app/handlers/properties"
	reviewsapp "iasrentals/internal/app/handlers/reviews"
	statsapp "iasrentals/internal/app/handlers/stats"
	visitsapp "iasrentals/internal/app/handlers/visits"
	"iasrentals/internal/app/middleware"
	"iasrentals/internal/app/outbox"
	"iasrentals/internal/app/policies"
	"iasrentals/internal/app/queries"
	"iasrentals/internal/app/uow"
	"iasrentals/internal/app/validation"
)

type Deps struct {
	UoW            uow.UoWFactory
	Outbox         outbox.Outbox
	Idempotency    middleware.IdempotencyStore
	IdempotencyTTL time.Duration
	Uploader       policies.ImageUploader
	Logger         *slog.Logger
	Now            func() time.Time
}

type Buses struct {
	Commands commands.Bus
	Queries  queries.Bus
}

// NewBuses builds both buses. Commands pass logging, the role check,
// validation, idempotency, outbox flush and the transaction, outermost
// first. Queries get the role check and validation only.
func NewBuses(d Deps) Buses {
	encoder := outbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.Register[visitsapp.ScheduleVisitCommand, *dto.Visit](commandBus, &visitsapp.ScheduleVisitHandler{
		UoWFactory: d.UoW, Outbox: d.Outbox, Encoder: encoder, Logger: d.Logger, Now: d.Now,
	})
	commands.Register[visitsapp.CancelVisitCommand, dto.StatusMessage](commandBus, &visitsapp.CancelVisitHandler{
		UoWFactory: d.UoW, Outbox: d.Outbox, Encoder: encoder, Logger: d.Logger, Now: d.Now,
	})
	commands.Register[visitsapp.CompleteVisitCommand, *dto.Visit](commandBus, &visitsapp.CompleteVisitHandler{
		UoWFactory: d.UoW, Outbox: d.Outbox, Encoder: encoder, Logger: d.Logger, Now: d.Now,
	})
	commands.Register[reviewsapp.CreateReviewCommand, *dto.Review](commandBus, &reviewsapp.CreateReviewHandler{
		UoWFactory: d.UoW, Outbox: d.Outbox, Encoder: encoder, Logger: d.Logger, Now: d.Now,
	})
	commands.Register[propertiesapp.CreatePropertyCommand, *dto.PropertyDetails](commandBus, &propertiesapp.CreatePropertyHandler{
		UoWFactory: d.UoW, Logger: d.Logger, Now: d.Now,
	})
	commands.Register[propertiesapp.AttachPropertyImageCommand, *dto.PropertyImage](commandBus, &propertiesapp.AttachPropertyImageHandler{
		UoWFactory: d.UoW, Uploader: d.Uploader, Logger: d.Logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.Register[visitsapp.GetAvailableSlotsQuery, dto.AvailableSlots](queryBus, &visitsapp.GetAvailableSlotsHandler{UoWFactory: d.UoW})
	queries.Register[visitsapp.ListMyVisitsQuery, []dto.Visit](queryBus, &visitsapp.ListMyVisitsHandler{UoWFactory: d.UoW})
	queries.Register[reviewsapp.GetOwnerReviewsQuery, dto.OwnerReviews](queryBus, &reviewsapp.GetOwnerReviewsHandler{UoWFactory: d.UoW})
	queries.Register[reviewsapp.GetPropertyReviewsQuery, []dto.Review](queryBus, &reviewsapp.GetPropertyReviewsHandler{UoWFactory: d.UoW})
	queries.Register[propertiesapp.SearchListingsQuery, dto.ListingCollection](queryBus, &propertiesapp.SearchListingsHandler{UoWFactory: d.UoW})
	queries.Register[propertiesapp.GetPropertyQuery, dto.PropertyDetails](queryBus, &propertiesapp.GetPropertyHandler{UoWFactory: d.UoW})
	queries.Register[propertiesapp.ListOwnerPropertiesQuery, dto.ListingCollection](queryBus, &propertiesapp.ListOwnerPropertiesHandler{UoWFactory: d.UoW})
	queries.Register[statsapp.GetPlatformStatsQuery, dto.PlatformStats](queryBus, &statsapp.GetPlatformStatsHandler{UoWFactory: d.UoW})

	validator := validation.New()
	policy := authz.Policy{}

	commandMWs := []middleware.CommandMiddleware{
		middleware.CommandLogging(d.Logger),
		middleware.Authorization(policy),
		middleware.Validation(validator),
	}
	if d.Idempotency != nil {
		commandMWs = append(commandMWs, middleware.Idempotency(d.Idempotency, middleware.IdempotencyOptions{
			TTL: d.IdempotencyTTL,
			Now: d.Now,
		}))
	}
	if d.Outbox != nil {
		commandMWs = append(commandMWs, middleware.OutboxFlush(d.Outbox))
	}
	if d.UoW != nil {
		commandMWs = append(commandMWs, middleware.Transaction(d.UoW, nil))
	}

	return Buses{
		Commands: middleware.ChainCommands(commandBus, commandMWs...),
		Queries: middleware.ChainQueries(queryBus,
			middleware.QueryAuthorization(policy),
			middleware.QueryValidation(validator),
		),
	}
}
