// Package loader writes masked records into the relational store, one
// transaction per record.
package loader

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/loginetl/internal/common"
	"github.com/dmitrijs2005/loginetl/internal/dbx"
	"github.com/dmitrijs2005/loginetl/internal/logging"
	"github.com/dmitrijs2005/loginetl/internal/models"
	"github.com/dmitrijs2005/loginetl/internal/repositories/logins"
)

type Loader struct {
	db      *sql.DB
	logger  logging.Logger
	now     func() time.Time
	newRepo func(dbx.DBTX) logins.Repository
}

func New(db *sql.DB, logger logging.Logger) *Loader {
	return &Loader{
		db:     db,
		logger: logger,
		now:    time.Now,
		newRepo: func(tx dbx.DBTX) logins.Repository {
			return logins.NewPostgresRepository(tx)
		},
	}
}

// Load persists rec and reports whether the insert was committed. A false
// result means nothing was written and the source message must stay on the
// queue. Failures are logged here and never returned.
func (l *Loader) Load(ctx context.Context, rec *models.MaskedRecord) (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			l.logFailure(ctx, fmt.Errorf("panic: %v", p), rec)
			ok = false
		}
	}()

	err := dbx.WithConnTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		row, err := ToRow(rec, l.now())
		if err != nil {
			return err
		}
		return l.newRepo(tx).Insert(ctx, row)
	})
	if err != nil {
		l.logFailure(ctx, err, rec)
		return false
	}

	return true
}

func (l *Loader) logFailure(ctx context.Context, err error, rec *models.MaskedRecord) {
	args := append([]any{"error", err}, recordAttrs(rec)...)

	switch Classify(err) {
	case ClassData:
		l.logger.Warn(ctx, "data value error while preparing record", args...)
	case ClassDatabase:
		l.logger.Error(ctx, "database error while inserting record", args...)
	default:
		l.logger.Critical(ctx, "unexpected error while inserting record", args...)
	}
}

func recordAttrs(rec *models.MaskedRecord) []any {
	if rec == nil {
		return []any{"record", nil}
	}
	return []any{
		"user_id", rec.UserID,
		"device_type", rec.DeviceType.Ptr(),
		"masked_ip", rec.MaskedIP,
		"masked_device_id", rec.MaskedDeviceID,
		"locale", rec.Locale.Ptr(),
		"app_version", rec.AppVersion.Ptr(),
	}
}

// ErrorClass groups load failures by how loudly they are logged.
type ErrorClass int

const (
	ClassUnexpected ErrorClass = iota
	ClassData
	ClassDatabase
)

// Classify maps err to its ErrorClass.
func Classify(err error) ErrorClass {
	if errors.Is(err, common.ErrInvalidAppVersion) {
		return ClassData
	}

	var (
		pgErr *pgconn.PgError
		txErr *dbx.TxError
	)
	switch {
	case errors.Is(err, common.ErrDatabase),
		errors.As(err, &pgErr),
		errors.As(err, &txErr),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, sql.ErrTxDone):
		return ClassDatabase
	}

	return ClassUnexpected
}

// ToRow converts rec into the row stored for processing time now.
func ToRow(rec *models.MaskedRecord, now time.Time) (*models.PersistedRow, error) {
	if rec == nil {
		return nil, errors.New("nil record")
	}

	major, err := AppVersionMajor(rec.AppVersion)
	if err != nil {
		return nil, err
	}

	y, m, d := now.Date()
	return &models.PersistedRow{
		UserID:          rec.UserID,
		DeviceType:      rec.DeviceType.Ptr(),
		MaskedIP:        rec.MaskedIP,
		MaskedDeviceID:  rec.MaskedDeviceID,
		Locale:          rec.Locale.Ptr(),
		AppVersionMajor: major,
		CreateDate:      time.Date(y, m, d, 0, 0, 0, 0, now.Location()),
	}, nil
}

// AppVersionMajor returns the leading integer component of a dotted version
// ("12.3.1" -> 12), or nil when the version is absent.
func AppVersionMajor(v models.Field) (*int, error) {
	if !v.Valid {
		return nil, nil
	}

	head, _, _ := strings.Cut(v.Value, ".")
	major, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", common.ErrInvalidAppVersion, v.Value)
	}
	return &major, nil
}
