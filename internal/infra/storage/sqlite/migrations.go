package sqlite

import (
	"database/sql"
	"fmt"
)

// migrations run in order on every Open; each statement is idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                   TEXT    PRIMARY KEY,
		email                TEXT    NOT NULL UNIQUE,
		name                 TEXT    NOT NULL,
		password_hash        TEXT    NOT NULL,
		role                 TEXT    NOT NULL CHECK (role IN ('buyer', 'owner')),
		is_verified          INTEGER NOT NULL DEFAULT 0,
		is_active            INTEGER NOT NULL DEFAULT 1,
		account_created_year INTEGER NOT NULL,
		description          TEXT    NOT NULL DEFAULT '',
		profile_image        TEXT    NOT NULL DEFAULT '',
		phone                TEXT    NOT NULL DEFAULT '',
		date_of_birth        TEXT    NOT NULL DEFAULT '',
		created_at           INTEGER NOT NULL,
		updated_at           INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id             TEXT    PRIMARY KEY,
		owner_id       TEXT    NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title          TEXT    NOT NULL,
		description    TEXT    NOT NULL DEFAULT '',
		address        TEXT    NOT NULL,
		city           TEXT    NOT NULL,
		price_amount   REAL    NOT NULL CHECK (price_amount >= 0),
		price_currency TEXT    NOT NULL,
		price_period   TEXT    NOT NULL,
		transaction_type TEXT  NOT NULL CHECK (transaction_type IN ('rent', 'sale')),
		property_type  TEXT    NOT NULL,
		rooms          INTEGER NOT NULL CHECK (rooms >= 1),
		bathrooms      INTEGER NOT NULL DEFAULT 0,
		area_sqm       REAL    NOT NULL DEFAULT 0,
		floor          INTEGER,
		year_built     INTEGER,
		has_parking    INTEGER NOT NULL DEFAULT 0,
		has_elevator   INTEGER NOT NULL DEFAULT 0,
		has_balcony    INTEGER NOT NULL DEFAULT 0,
		is_furnished   INTEGER NOT NULL DEFAULT 0,
		is_verified    INTEGER NOT NULL DEFAULT 0,
		created_at     INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_properties_owner ON properties(owner_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS property_images (
		id          TEXT    PRIMARY KEY,
		property_id TEXT    NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		url         TEXT    NOT NULL,
		is_primary  INTEGER NOT NULL DEFAULT 0,
		position    INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_property_images_property ON property_images(property_id, position)`,
	`CREATE TABLE IF NOT EXISTS visits (
		id          TEXT    PRIMARY KEY,
		property_id TEXT    NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		buyer_id    TEXT    NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		visit_date  TEXT    NOT NULL,
		visit_time  TEXT    NOT NULL,
		status      TEXT    NOT NULL CHECK (status IN ('scheduled', 'completed', 'cancelled')),
		notes       TEXT    NOT NULL DEFAULT '',
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_visits_scheduled_slot
		ON visits(property_id, visit_date, visit_time) WHERE status = 'scheduled'`,
	`CREATE INDEX IF NOT EXISTS idx_visits_buyer ON visits(buyer_id, status)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id          TEXT    PRIMARY KEY,
		owner_id    TEXT    NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		buyer_id    TEXT    NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		property_id TEXT    NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
		visit_id    TEXT    NOT NULL DEFAULT '',
		rating      INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		comment     TEXT    NOT NULL DEFAULT '',
		created_at  INTEGER NOT NULL,
		UNIQUE (buyer_id, owner_id, property_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_owner ON reviews(owner_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		token      TEXT    PRIMARY KEY,
		user_id    TEXT    NOT NULL,
		role       TEXT    NOT NULL,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id)`,
	`CREATE TABLE IF NOT EXISTS idempotency (
		key         TEXT    PRIMARY KEY,
		payload     BLOB,
		error       TEXT    NOT NULL DEFAULT '',
		error_kind  TEXT    NOT NULL DEFAULT '',
		occurred_at INTEGER NOT NULL,
		created_at  INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS outbox (
		id              TEXT    PRIMARY KEY,
		name            TEXT    NOT NULL,
		payload         BLOB    NOT NULL,
		occurred_at     INTEGER NOT NULL,
		aggregate       TEXT    NOT NULL DEFAULT '',
		headers         TEXT    NOT NULL DEFAULT '{}',
		state           TEXT    NOT NULL,
		attempts        INTEGER NOT NULL DEFAULT 0,
		next_attempt_at INTEGER NOT NULL,
		claimed_by      TEXT    NOT NULL DEFAULT '',
		claimed_at      INTEGER NOT NULL DEFAULT 0,
		sent_at         INTEGER NOT NULL DEFAULT 0,
		last_error      TEXT    NOT NULL DEFAULT '',
		created_at      INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_due ON outbox(state, next_attempt_at)`,
	`CREATE TABLE IF NOT EXISTS inbox (
		consumer TEXT    NOT NULL,
		event_id TEXT    NOT NULL,
		seen_at  INTEGER NOT NULL,
		PRIMARY KEY (consumer, event_id)
	)`,
}

func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
