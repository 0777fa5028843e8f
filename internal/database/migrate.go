package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied in order; every statement is idempotent.  Bookings keep
// plain id columns without foreign keys so deleting a hotel leaves its
// bookings behind.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL,
		username      VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at    DATETIME(6)  NOT NULL,
		UNIQUE KEY uq_users_email (email),
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS admins (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL,
		username      VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		created_at    DATETIME(6)  NOT NULL,
		UNIQUE KEY uq_admins_email (email),
		UNIQUE KEY uq_admins_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS hotels (
		id               CHAR(36)     NOT NULL PRIMARY KEY,
		name             VARCHAR(255) NOT NULL,
		price            DOUBLE       NOT NULL,
		city             VARCHAR(255) NOT NULL,
		img_content_type VARCHAR(127) NOT NULL DEFAULT '',
		img_data         LONGBLOB,
		created_at       DATETIME(6)  NOT NULL,
		updated_at       DATETIME(6)  NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id             CHAR(36)     NOT NULL PRIMARY KEY,
		user_id        CHAR(36)     NOT NULL,
		hotel_id       CHAR(36)     NOT NULL,
		check_in_date  DATETIME(6)  NOT NULL,
		check_out_date DATETIME(6)  NOT NULL,
		room_type      VARCHAR(64)  NOT NULL,
		person_count   INT          NOT NULL,
		total_price    DOUBLE       NOT NULL,
		created_at     DATETIME(6)  NOT NULL,
		KEY idx_bookings_user (user_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the tables used by the MySQL store.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
