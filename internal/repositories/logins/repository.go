// Package logins persists masked login events into the user_logins table.
package logins

import (
	"context"

	"github.com/dmitrijs2005/loginetl/internal/models"
)

type Repository interface {
	Insert(ctx context.Context, row *models.PersistedRow) error
}
