// Package store holds every SQL statement the gateway runs. Each call
// acquires its own connection from the pool and releases it before returning.
package store

import (
	"context"
	"errors"
	"time"

	"alarm_gateway/apperror"
	"alarm_gateway/config"
	"alarm_gateway/database"
	"alarm_gateway/models"

	"gorm.io/gorm"
)

// RecentReadingsLimit caps the rows returned by RecentReadings
const RecentReadingsLimit = 10

// StateNotFound is the message returned when the alarm state row is missing
const StateNotFound = "Estado não encontrado"

// Store runs the gateway statements against db
type Store struct {
	db      *gorm.DB
	schema  string
	timeout time.Duration
	now     func() time.Time
}

// New creates a store over db using the schema and timeout in cfg
func New(db *gorm.DB, cfg config.DatabaseConfig) *Store {
	return &Store{
		db:      db,
		schema:  cfg.Schema,
		timeout: time.Duration(cfg.QueryTimeout) * time.Second,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// WithClock replaces the clock used to stamp appended actions
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) table(name string) string {
	return database.TableName(s.schema, name)
}

// withConn runs fn on a dedicated connection. Errors from fn that carry no
// kind become query errors; failing to obtain the connection is a
// connection error.
func (s *Store) withConn(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var ran bool
	err := s.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		ran = true
		if err := fn(tx.Session(&gorm.Session{NewDB: true})); err != nil {
			if apperror.KindOf(err) == apperror.KindUnknown {
				return apperror.Wrap(apperror.KindQuery, "", err)
			}
			return err
		}
		return nil
	})
	if err == nil || ran {
		return err
	}
	return apperror.Wrap(apperror.KindConnection, database.ConnectFailure, err)
}

// Alerts returns every alert, newest first
func (s *Store) Alerts(ctx context.Context) ([]models.Alert, error) {
	alerts := []models.Alert{}
	err := s.withConn(ctx, func(tx *gorm.DB) error {
		return tx.Table(s.table(models.AlertsTable)).
			Select("mensagem", "timestamp").
			Order("timestamp DESC").
			Find(&alerts).Error
	})
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

// RecentReadings returns up to RecentReadingsLimit sensor readings, newest first
func (s *Store) RecentReadings(ctx context.Context) ([]models.Reading, error) {
	readings := []models.Reading{}
	err := s.withConn(ctx, func(tx *gorm.DB) error {
		return tx.Table(s.table(models.ActionsTable)).
			Select("movimento", "fumo").
			Where("movimento IS NOT NULL AND fumo IS NOT NULL").
			Order("data DESC").
			Limit(RecentReadingsLimit).
			Find(&readings).Error
	})
	if err != nil {
		return nil, err
	}
	return readings, nil
}

// AppendAction inserts one row into the action log
func (s *Store) AppendAction(ctx context.Context, action *models.Action) error {
	if action.Data.IsZero() {
		action.Data = s.now()
	}
	return s.withConn(ctx, func(tx *gorm.DB) error {
		return tx.Table(s.table(models.ActionsTable)).Create(action).Error
	})
}

// RecordAlarm appends an alarm toggle
func (s *Store) RecordAlarm(ctx context.Context, on bool) (models.Action, error) {
	action := models.Action{Evento: models.EventAlarmOff}
	if on {
		action.Evento = models.EventAlarmOn
	}
	err := s.AppendAction(ctx, &action)
	return action, err
}

// RecordReading appends a sensor reading
func (s *Store) RecordReading(ctx context.Context, r models.Reading) (models.Action, error) {
	movimento, fumo := r.Movimento, r.Fumo
	action := models.Action{
		Evento:    models.EventReadingStored,
		Movimento: &movimento,
		Fumo:      &fumo,
	}
	err := s.AppendAction(ctx, &action)
	return action, err
}

// AlarmState returns the state string of the singleton alarm row
func (s *Store) AlarmState(ctx context.Context) (string, error) {
	var state models.AlarmState
	err := s.withConn(ctx, func(tx *gorm.DB) error {
		err := tx.Table(s.table(models.AlarmStateTable)).
			Select("estado").
			Where("id = ?", models.AlarmStateID).
			Take(&state).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.New(apperror.KindNotFound, StateNotFound)
		}
		return err
	})
	if err != nil {
		return "", err
	}
	return state.Estado, nil
}

// Ping checks that a connection can be acquired and used
func (s *Store) Ping(ctx context.Context) error {
	return s.withConn(ctx, func(tx *gorm.DB) error {
		var one int
		return tx.Raw("SELECT 1").Scan(&one).Error
	})
}

// Counts returns the row count of each gateway table
func (s *Store) Counts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, 3)
	for _, name := range []string{models.AlertsTable, models.ActionsTable, models.AlarmStateTable} {
		var n int64
		err := s.withConn(ctx, func(tx *gorm.DB) error {
			return tx.Table(s.table(name)).Count(&n).Error
		})
		if err != nil {
			return nil, err
		}
		counts[name] = n
	}
	return counts, nil
}
