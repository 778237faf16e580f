package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/huandu/go-sqlbuilder"

	domainproperties "iasrentals/internal/domain/properties"
	domainuser "iasrentals/internal/domain/user"
	domainvisits "iasrentals/internal/domain/visits"
)

// VisitRepository relies on the partial unique index over scheduled slots
// to reject double booking.
type VisitRepository struct {
	db *DB
}

func NewVisitRepository(db *DB) *VisitRepository {
	return &VisitRepository{db: db}
}

const visitColumns = `id, property_id, buyer_id, visit_date, visit_time, status, notes, created_at, updated_at`

func (r *VisitRepository) ByID(ctx context.Context, id domainvisits.ID) (*domainvisits.Visit, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `SELECT `+visitColumns+` FROM visits WHERE id = ?`, string(id))
	if err != nil {
		return nil, err
	}
	list, err := scanVisits(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, domainvisits.ErrNotFound
	}
	return list[0], nil
}

func (r *VisitRepository) Insert(ctx context.Context, v *domainvisits.Visit) error {
	if v == nil || strings.TrimSpace(string(v.ID)) == "" {
		return domainvisits.ErrIDRequired
	}
	_, err := r.db.conn(ctx).ExecContext(ctx, `INSERT INTO visits (`+visitColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(v.ID), string(v.PropertyID), string(v.BuyerID), v.Date, v.Time, string(v.Status), v.Notes,
		toNanos(v.CreatedAt), toNanos(v.UpdatedAt))
	if isUniqueViolation(err) {
		return domainvisits.ErrSlotTaken
	}
	return err
}

func (r *VisitRepository) UpdateStatus(ctx context.Context, v *domainvisits.Visit) error {
	res, err := r.db.conn(ctx).ExecContext(ctx, `UPDATE visits SET status = ?, updated_at = ? WHERE id = ?`,
		string(v.Status), toNanos(v.UpdatedAt), string(v.ID))
	if isUniqueViolation(err) {
		return domainvisits.ErrSlotTaken
	}
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domainvisits.ErrNotFound
	}
	return nil
}

func (r *VisitRepository) Find(ctx context.Context, c domainvisits.Criteria) ([]*domainvisits.Visit, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select(visitColumns).From("visits")
	if where := visitClause(sb, c); len(where) > 0 {
		sb.Where(where...)
	}
	sb.OrderBy("visit_date", "visit_time", "created_at")
	if c.Limit > 0 {
		sb.Limit(c.Limit)
	}
	query, args := sb.Build()
	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanVisits(rows)
}

func visitClause(sb *sqlbuilder.SelectBuilder, c domainvisits.Criteria) []string {
	var where []string
	if len(c.PropertyIDs) > 0 {
		ids := make([]any, 0, len(c.PropertyIDs))
		for _, id := range c.PropertyIDs {
			ids = append(ids, string(id))
		}
		where = append(where, sb.In("property_id", ids...))
	}
	if c.BuyerID != "" {
		where = append(where, sb.Equal("buyer_id", string(c.BuyerID)))
	}
	if c.Date != "" {
		where = append(where, sb.Equal("visit_date", c.Date))
	}
	if c.Time != "" {
		where = append(where, sb.Equal("visit_time", c.Time))
	}
	if len(c.Statuses) > 0 {
		statuses := make([]any, 0, len(c.Statuses))
		for _, s := range c.Statuses {
			statuses = append(statuses, string(s))
		}
		where = append(where, sb.In("status", statuses...))
	}
	return where
}

func scanVisits(rows *sql.Rows) ([]*domainvisits.Visit, error) {
	defer rows.Close()
	out := make([]*domainvisits.Visit, 0)
	for rows.Next() {
		var (
			v                               domainvisits.Visit
			id, propertyID, buyerID, status string
			createdAt, updatedAt            int64
		)
		if err := rows.Scan(&id, &propertyID, &buyerID, &v.Date, &v.Time, &status, &v.Notes, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		v.ID = domainvisits.ID(id)
		v.PropertyID = domainproperties.ID(propertyID)
		v.BuyerID = domainuser.ID(buyerID)
		v.Status = domainvisits.Status(status)
		v.CreatedAt = fromNanos(createdAt)
		v.UpdatedAt = fromNanos(updatedAt)
		out = append(out, &v)
	}
	return out, rows.Err()
}

var _ domainvisits.Repository = (*VisitRepository)(nil)
