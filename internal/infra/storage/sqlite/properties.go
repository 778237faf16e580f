package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"

	domainproperties "iasrentals/internal/domain/properties"
	domainuser "iasrentals/internal/domain/user"
)

// PropertyRepository keeps properties and their images in two tables;
// Save rewrites the image rows of the property.
type PropertyRepository struct {
	db *DB
}

func NewPropertyRepository(db *DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

const propertyColumns = `id, owner_id, title, description, address, city, price_amount, price_currency,
	price_period, transaction_type, property_type, rooms, bathrooms, area_sqm, floor, year_built,
	has_parking, has_elevator, has_balcony, is_furnished, is_verified, created_at`

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperties.ID) (*domainproperties.Property, error) {
	list, err := r.query(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = ?`, string(id))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, domainproperties.ErrNotFound
	}
	return list[0], nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperties.Property) error {
	if p == nil || strings.TrimSpace(string(p.ID)) == "" {
		return domainproperties.ErrIDRequired
	}
	conn := r.db.conn(ctx)
	_, err := conn.ExecContext(ctx, `
		INSERT INTO properties (`+propertyColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			address = excluded.address,
			city = excluded.city,
			price_amount = excluded.price_amount,
			price_currency = excluded.price_currency,
			price_period = excluded.price_period,
			transaction_type = excluded.transaction_type,
			property_type = excluded.property_type,
			rooms = excluded.rooms,
			bathrooms = excluded.bathrooms,
			area_sqm = excluded.area_sqm,
			floor = excluded.floor,
			year_built = excluded.year_built,
			has_parking = excluded.has_parking,
			has_elevator = excluded.has_elevator,
			has_balcony = excluded.has_balcony,
			is_furnished = excluded.is_furnished,
			is_verified = excluded.is_verified`,
		string(p.ID), string(p.OwnerID), p.Title, p.Description, p.Address, p.City,
		p.Price.Amount, p.Price.Currency, p.Price.Period, string(p.Transaction), p.PropertyType,
		p.Rooms, p.Bathrooms, p.AreaSqM, nullInt(p.Floor), nullInt(p.YearBuilt),
		p.HasParking, p.HasElevator, p.HasBalcony, p.IsFurnished, p.IsVerified, toNanos(p.CreatedAt),
	)
	if err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, `DELETE FROM property_images WHERE property_id = ?`, string(p.ID)); err != nil {
		return err
	}
	for _, img := range p.Images {
		_, err := conn.ExecContext(ctx,
			`INSERT INTO property_images (id, property_id, url, is_primary, position) VALUES (?, ?, ?, ?, ?)`,
			img.ID, string(p.ID), img.URL, img.IsPrimary, img.Order)
		if err != nil {
			return err
		}
	}
	return nil
}

// ListByOwner returns the owner's properties newest first.
func (r *PropertyRepository) ListByOwner(ctx context.Context, ownerID domainuser.ID) ([]*domainproperties.Property, error) {
	return r.query(ctx, `SELECT `+propertyColumns+` FROM properties WHERE owner_id = ? ORDER BY created_at DESC, id DESC`, string(ownerID))
}

// Search returns matching properties in creation order.
func (r *PropertyRepository) Search(ctx context.Context, params domainproperties.SearchParams) ([]*domainproperties.Property, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(propertyColumns).From("properties")
	if where := searchClause(sb, params); len(where) > 0 {
		sb.Where(where...)
	}
	sb.OrderBy("created_at ASC", "id ASC")
	query, args := sb.Build()
	return r.query(ctx, query, args...)
}

func (r *PropertyRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`).Scan(&n)
	return n, err
}

func searchClause(sb *sqlbuilder.SelectBuilder, params domainproperties.SearchParams) []string {
	params = params.Normalized()
	var where []string
	if tx := params.TransactionFilter(); tx != "" {
		where = append(where, sb.Equal("transaction_type", string(tx)))
	}
	if params.TwoPlusRooms {
		where = append(where, sb.GreaterEqualThan("rooms", 2))
	}
	lower, upper := params.PriceRange.Bounds()
	if lower != nil {
		where = append(where, sb.GreaterEqualThan("price_amount", *lower))
	}
	if upper != nil {
		where = append(where, sb.LessEqualThan("price_amount", *upper))
	}
	if params.Query != "" {
		pattern := "%" + escapeLike(params.Query) + "%"
		where = append(where, sb.Or(
			likeEscaped(sb, "lower(city)", pattern),
			likeEscaped(sb, "lower(description)", pattern),
			likeEscaped(sb, "lower(address)", pattern),
		))
	}
	return where
}

func likeEscaped(sb *sqlbuilder.SelectBuilder, expr, pattern string) string {
	return fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, expr, sb.Var(pattern))
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *PropertyRepository) query(ctx context.Context, query string, args ...any) ([]*domainproperties.Property, error) {
	conn := r.db.conn(ctx)
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domainproperties.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for _, p := range out {
		if p.Images, err = r.images(ctx, conn, p.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *PropertyRepository) images(ctx context.Context, conn querier, id domainproperties.ID) ([]domainproperties.Image, error) {
	rows, err := conn.QueryContext(ctx,
		`SELECT id, url, is_primary, position FROM property_images WHERE property_id = ? ORDER BY position`, string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domainproperties.Image
	for rows.Next() {
		var img domainproperties.Image
		if err := rows.Scan(&img.ID, &img.URL, &img.IsPrimary, &img.Order); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func scanProperty(rows *sql.Rows) (*domainproperties.Property, error) {
	var (
		p                        domainproperties.Property
		id, ownerID, transaction string
		floor, yearBuilt         sql.NullInt64
		createdAt                int64
	)
	err := rows.Scan(&id, &ownerID, &p.Title, &p.Description, &p.Address, &p.City,
		&p.Price.Amount, &p.Price.Currency, &p.Price.Period, &transaction, &p.PropertyType,
		&p.Rooms, &p.Bathrooms, &p.AreaSqM, &floor, &yearBuilt,
		&p.HasParking, &p.HasElevator, &p.HasBalcony, &p.IsFurnished, &p.IsVerified, &createdAt)
	if err != nil {
		return nil, err
	}
	p.ID = domainproperties.ID(id)
	p.OwnerID = domainuser.ID(ownerID)
	p.Transaction = domainproperties.Transaction(transaction)
	p.Floor = intPtr(floor)
	p.YearBuilt = intPtr(yearBuilt)
	p.CreatedAt = fromNanos(createdAt)
	return &p, nil
}

var _ domainproperties.Repository = (*PropertyRepository)(nil)
