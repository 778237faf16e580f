package properties

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"iasrentals/internal/app/commands"
	"iasrentals/internal/app/dto"
	"iasrentals/internal/app/handlers/support"
	"iasrentals/internal/app/uow"
	domainproperties "iasrentals/internal/domain/properties"
	domainuser "iasrentals/internal/domain/user"
)

const createPropertyKey = "properties.create"

type CreatePropertyCommand struct {
	OwnerID      string          `validate:"required"`
	ActorRole    domainuser.Role `validate:"required"`
	Title        string          `validate:"required,max=200"`
	Description  string          `validate:"max=5000"`
	Address      string          `validate:"required"`
	City         string          `validate:"required"`
	Price        float64         `validate:"gte=0"`
	Currency     string          `validate:"omitempty,len=3"`
	Period       string
	Transaction  string `validate:"omitempty,oneof=rent sale"`
	PropertyType string
	Rooms        int     `validate:"gte=1"`
	Bathrooms    int     `validate:"gte=0"`
	AreaSqM      float64 `validate:"gte=0"`
	Floor        *int
	YearBuilt    *int
	HasParking   bool
	HasElevator  bool
	HasBalcony   bool
	IsFurnished  bool
}

func (CreatePropertyCommand) Key() string { return createPropertyKey }

// CheckRole allows owners only.
func (c CreatePropertyCommand) CheckRole() error {
	if c.ActorRole != domainuser.RoleOwner {
		return domainuser.ErrRoleForbidden
	}
	return nil
}

type CreatePropertyHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *CreatePropertyHandler) Handle(ctx context.Context, cmd CreatePropertyCommand) (*dto.PropertyDetails, error) {
	if err := cmd.CheckRole(); err != nil {
		return nil, err
	}
	unit, ctx, err := support.BeginUnit(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer unit.Close(ctx)

	owner, err := unit.Users().ByID(ctx, domainuser.ID(cmd.OwnerID))
	if err != nil {
		return nil, err
	}
	if err := owner.RequireRole(domainuser.RoleOwner); err != nil {
		return nil, err
	}

	transaction := domainproperties.Transaction(cmd.Transaction)
	if transaction == "" {
		transaction = domainproperties.TransactionRent
	}
	prop, err := domainproperties.NewProperty(domainproperties.CreateParams{
		ID:           domainproperties.ID(uuid.NewString()),
		OwnerID:      owner.ID,
		Title:        cmd.Title,
		Description:  cmd.Description,
		Address:      cmd.Address,
		City:         cmd.City,
		Price:        domainproperties.Price{Amount: cmd.Price, Currency: cmd.Currency, Period: cmd.Period},
		Transaction:  transaction,
		PropertyType: cmd.PropertyType,
		Rooms:        cmd.Rooms,
		Bathrooms:    cmd.Bathrooms,
		AreaSqM:      cmd.AreaSqM,
		Floor:        cmd.Floor,
		YearBuilt:    cmd.YearBuilt,
		HasParking:   cmd.HasParking,
		HasElevator:  cmd.HasElevator,
		HasBalcony:   cmd.HasBalcony,
		IsFurnished:  cmd.IsFurnished,
		IsVerified:   owner.IsVerified,
		Now:          h.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Properties().Save(ctx, prop); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("property created", "property_id", prop.ID, "owner_id", owner.ID)
	}
	details := dto.MapPropertyDetails(prop, owner)
	return &details, nil
}

func (h *CreatePropertyHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

var _ commands.Handler[CreatePropertyCommand, *dto.PropertyDetails] = (*CreatePropertyHandler)(nil)
