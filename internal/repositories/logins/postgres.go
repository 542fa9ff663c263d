package logins

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/loginetl/internal/common"
	"github.com/dmitrijs2005/loginetl/internal/dbx"
	"github.com/dmitrijs2005/loginetl/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert writes one row. Rows are never updated or read back.
func (r *PostgresRepository) Insert(ctx context.Context, row *models.PersistedRow) error {
	query :=
		`INSERT INTO user_logins (user_id, device_type, masked_ip, masked_device_id, locale, app_version, create_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `

	_, err := r.db.ExecContext(ctx, query,
		row.UserID, row.DeviceType, row.MaskedIP, row.MaskedDeviceID, row.Locale, row.AppVersionMajor, row.CreateDate)

	if err != nil {
		return fmt.Errorf("%w: insert user_logins: %w", common.ErrDatabase, err)
	}

	return nil
}
