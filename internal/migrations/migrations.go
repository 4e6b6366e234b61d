package migrations

import (
	"database/sql"

	"github.com/lopezator/migrator"
)

func Up(db *sql.DB) error {
	m, err := migrator.New(
		migrator.Migrations(
			&migrator.MigrationNoTx{
				Name: "Create orders table",
				Func: createOrdersTable,
			},
		),
	)
	if err != nil {
		return err
	}

	return m.Migrate(db)
}

func createOrdersTable(db *sql.DB) error {
	if _, err := db.Exec("CREATE TYPE order_status AS ENUM ('pending', 'paid')"); err != nil {
		return err
	}

	if _, err := db.Exec("CREATE TYPE pay_method AS ENUM ('deferred', 'prepaid')"); err != nil {
		return err
	}

	if _, err := db.Exec("CREATE TYPE identifier_kind AS ENUM ('tracking', 'redemption')"); err != nil {
		return err
	}

	_, err := db.Exec(`
CREATE TABLE orders
(
    id              integer GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    identifier      varchar(64)     NOT NULL UNIQUE,
    identifier_kind identifier_kind NOT NULL,
    tracking_id     varchar(64) UNIQUE,
    redemption_code varchar(6) UNIQUE,
    pay_method      pay_method      NOT NULL,
    file_paths      jsonb           NOT NULL DEFAULT '[]',
    options         jsonb           NOT NULL,
    price           numeric(10, 2)  NOT NULL,
    CHECK (price >= 0),
    status          order_status    NOT NULL DEFAULT 'pending',
    created_at      timestamptz     NOT NULL DEFAULT now(),
    paid_at         timestamptz
)
	`)

	return err
}
