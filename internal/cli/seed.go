package cli

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	authsvc "iasrentals/internal/app/services/auth"
	domainproperties "iasrentals/internal/domain/properties"
	domainuser "iasrentals/internal/domain/user"
	"iasrentals/internal/infra/security"
)

//go:embed seed.json
var seedFixtures []byte

type seedFile struct {
	Users      []seedUser     `json:"users"`
	Properties []seedProperty `json:"properties"`
}

type seedUser struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	Verified    bool   `json:"is_verified"`
	CreatedYear int    `json:"account_created_year"`
	Description string `json:"profile_description"`
}

type seedProperty struct {
	Owner         string  `json:"owner"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Address       string  `json:"address"`
	Location      string  `json:"location"`
	Price         float64 `json:"price"`
	PriceCurrency string  `json:"price_currency"`
	PricePeriod   string  `json:"price_period"`
	Type          string  `json:"type"`
	Rooms         int     `json:"rooms"`
	Bathrooms     int     `json:"bathrooms"`
	Surface       float64 `json:"surface"`
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo users and properties",
		Long:  "Insert demo users and properties. Nothing is written when properties already exist.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			be, err := openBackend(ctx, cfg, nil, logger)
			if err != nil {
				return err
			}
			defer be.Close(context.Background())
			_, err = seed(ctx, be, security.BcryptHasher{}, logger)
			return err
		},
	}
}

// seed loads the embedded fixtures. It reports false when the store
// already holds properties.
func seed(ctx context.Context, be *backend, hasher authsvc.PasswordHasher, logger *slog.Logger) (bool, error) {
	existing, err := be.Properties.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("seed: count properties: %w", err)
	}
	if existing > 0 {
		logger.Info("seed skipped, properties already present", "count", existing)
		return false, nil
	}
	var fixtures seedFile
	if err := json.Unmarshal(seedFixtures, &fixtures); err != nil {
		return false, fmt.Errorf("seed: decode fixtures: %w", err)
	}

	owners := make(map[string]domainuser.ID, len(fixtures.Users))
	for _, fx := range fixtures.Users {
		hash, err := hasher.Hash(fx.Password)
		if err != nil {
			return false, fmt.Errorf("seed: hash password for %s: %w", fx.Email, err)
		}
		role, err := domainuser.ParseRole(fx.Role)
		if err != nil {
			return false, err
		}
		user, err := domainuser.NewUser(domainuser.CreateParams{
			ID:           domainuser.ID(uuid.NewString()),
			Email:        fx.Email,
			Name:         fx.Name,
			PasswordHash: hash,
			Role:         role,
			IsVerified:   fx.Verified,
			Description:  fx.Description,
			CreatedAt:    time.Date(fx.CreatedYear, time.January, 1, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			return false, fmt.Errorf("seed: user %s: %w", fx.Email, err)
		}
		if err := be.Users.Save(ctx, user); err != nil {
			return false, fmt.Errorf("seed: save user %s: %w", fx.Email, err)
		}
		owners[fx.Key] = user.ID
	}

	now := time.Now().UTC()
	for _, fx := range fixtures.Properties {
		ownerID, ok := owners[fx.Owner]
		if !ok {
			return false, fmt.Errorf("seed: property %q references unknown owner %q", fx.Title, fx.Owner)
		}
		prop, err := domainproperties.NewProperty(domainproperties.CreateParams{
			ID:          domainproperties.ID(uuid.NewString()),
			OwnerID:     ownerID,
			Title:       fx.Title,
			Description: fx.Description,
			Address:     fx.Address,
			City:        fx.Location,
			Price: domainproperties.Price{
				Amount:   fx.Price,
				Currency: fx.PriceCurrency,
				Period:   fx.PricePeriod,
			},
			Transaction: domainproperties.Transaction(fx.Type),
			Rooms:       fx.Rooms,
			Bathrooms:   fx.Bathrooms,
			AreaSqM:     fx.Surface,
			IsVerified:  true,
			Now:         now,
		})
		if err != nil {
			return false, fmt.Errorf("seed: property %q: %w", fx.Title, err)
		}
		if err := be.Properties.Save(ctx, prop); err != nil {
			return false, fmt.Errorf("seed: save property %q: %w", fx.Title, err)
		}
	}
	logger.Info("demo data seeded", "users", len(fixtures.Users), "properties", len(fixtures.Properties))
	return true, nil
}
