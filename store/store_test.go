package store_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"alarm_gateway/apperror"
	"alarm_gateway/dbtest"
	"alarm_gateway/models"
	"alarm_gateway/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tickingClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func newSQLiteStore(t *testing.T) *store.Store {
	db, cfg := dbtest.SQLite(t)
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return store.New(db, cfg.Database).WithClock(tickingClock(start))
}

func TestAlertsNewestFirst(t *testing.T) {
	db, cfg := dbtest.SQLite(t)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	dbtest.Seed(t, db, models.AlertsTable, []models.Alert{
		{Mensagem: "fumo detetado", Timestamp: base.Add(time.Hour)},
		{Mensagem: "movimento detetado", Timestamp: base},
		{Mensagem: "porta aberta", Timestamp: base.Add(2 * time.Hour)},
	})

	alerts, err := store.New(db, cfg.Database).Alerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 3)

	assert.Equal(t, "porta aberta", alerts[0].Mensagem)
	assert.Equal(t, "fumo detetado", alerts[1].Mensagem)
	assert.Equal(t, "movimento detetado", alerts[2].Mensagem)
	for i := 1; i < len(alerts); i++ {
		assert.False(t, alerts[i].Timestamp.After(alerts[i-1].Timestamp), "alert %d is newer than its predecessor", i)
	}
	assert.Equal(t, "2025-03-01T12:00:00", alerts[0].View().Timestamp)
}

func TestAlertsEmpty(t *testing.T) {
	alerts, err := newSQLiteStore(t).Alerts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}

func TestRecentReadingsSkipsTogglesAndCapsAtTen(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := s.RecordReading(ctx, models.Reading{Movimento: i, Fumo: 100 + i})
		require.NoError(t, err)
		if i%4 == 0 {
			_, err = s.RecordAlarm(ctx, i%8 == 0)
			require.NoError(t, err)
		}
	}

	readings, err := s.RecentReadings(ctx)
	require.NoError(t, err)
	require.Len(t, readings, store.RecentReadingsLimit)

	assert.Equal(t, models.Reading{Movimento: 11, Fumo: 111}, readings[0])
	assert.Equal(t, models.Reading{Movimento: 2, Fumo: 102}, readings[9])
}

func TestRecordAlarmAppendsInOrder(t *testing.T) {
	db, cfg := dbtest.SQLite(t)
	s := store.New(db, cfg.Database).WithClock(tickingClock(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	ctx := context.Background()

	on, err := s.RecordAlarm(ctx, true)
	require.NoError(t, err)
	off, err := s.RecordAlarm(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, models.EventAlarmOn, on.Evento)
	assert.Equal(t, models.EventAlarmOff, off.Evento)

	var rows []models.Action
	require.NoError(t, db.Table(models.ActionsTable).Order("data ASC").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, models.EventAlarmOn, rows[0].Evento)
	assert.Equal(t, models.EventAlarmOff, rows[1].Evento)
	for _, row := range rows {
		assert.False(t, row.IsReading())
		assert.Nil(t, row.Movimento)
		assert.Nil(t, row.Fumo)
	}
}

func TestRecordReadingStoresValues(t *testing.T) {
	db, cfg := dbtest.SQLite(t)
	s := store.New(db, cfg.Database)

	action, err := s.RecordReading(context.Background(), models.Reading{Movimento: 1, Fumo: 340})
	require.NoError(t, err)
	assert.Equal(t, models.EventReadingStored, action.Evento)
	assert.False(t, action.Data.IsZero())

	var rows []models.Action
	require.NoError(t, db.Table(models.ActionsTable).Find(&rows).Error)
	require.Len(t, rows, 1)
	require.True(t, rows[0].IsReading())
	assert.Equal(t, 1, *rows[0].Movimento)
	assert.Equal(t, 340, *rows[0].Fumo)
}

func TestAlarmState(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		db, cfg := dbtest.SQLite(t)
		dbtest.Seed(t, db, models.AlarmStateTable, &models.AlarmState{ID: models.AlarmStateID, Estado: "ativo"})

		state, err := store.New(db, cfg.Database).AlarmState(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ativo", state)
	})

	t.Run("only other ids", func(t *testing.T) {
		db, cfg := dbtest.SQLite(t)
		dbtest.Seed(t, db, models.AlarmStateTable, &models.AlarmState{ID: 2, Estado: "inativo"})

		_, err := store.New(db, cfg.Database).AlarmState(context.Background())
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
		assert.Equal(t, store.StateNotFound, err.Error())
	})
}

func TestUnreachableDatabaseIsConnectionError(t *testing.T) {
	db, cfg := dbtest.Unreachable(t)
	s := store.New(db, cfg.Database)
	ctx := context.Background()

	calls := map[string]func() error{
		"alerts":   func() error { _, err := s.Alerts(ctx); return err },
		"readings": func() error { _, err := s.RecentReadings(ctx); return err },
		"alarm":    func() error { _, err := s.RecordAlarm(ctx, true); return err },
		"reading":  func() error { _, err := s.RecordReading(ctx, models.Reading{}); return err },
		"state":    func() error { _, err := s.AlarmState(ctx); return err },
		"ping":     func() error { return s.Ping(ctx) },
	}
	for name, call := range calls {
		err := call()
		require.Error(t, err, name)
		assert.True(t, apperror.Is(err, apperror.KindConnection), "%s: %v", name, err)
		assert.True(t, strings.HasPrefix(err.Error(), "Erro ao conectar"), name)
	}
}

func TestPostgresStatementsAreSchemaQualified(t *testing.T) {
	db, mock, cfg := dbtest.Postgres(t)
	s := store.New(db, cfg.Database)
	ctx := context.Background()

	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .+ FROM ` + regexp.QuoteMeta(`"tam_25_26"."alertas"`) + ` ORDER BY timestamp DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"mensagem", "timestamp"}).AddRow("fumo detetado", ts))

	mock.ExpectQuery(`SELECT .+ FROM ` + regexp.QuoteMeta(`"tam_25_26"."acoes"`) +
		` WHERE movimento IS NOT NULL AND fumo IS NOT NULL ORDER BY data DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"movimento", "fumo"}).AddRow(1, 20))

	mock.ExpectExec(`INSERT INTO ` + regexp.QuoteMeta(`"tam_25_26"."acoes"`)).
		WithArgs(models.EventReadingStored, sqlmock.AnyArg(), 1, 20).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectQuery(`SELECT .+ FROM ` + regexp.QuoteMeta(`"tam_25_26"."estado_alarme"`) + ` WHERE id = `).
		WillReturnRows(sqlmock.NewRows([]string{"estado"}).AddRow("ativo"))

	alerts, err := s.Alerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "fumo detetado", alerts[0].Mensagem)

	readings, err := s.RecentReadings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Reading{{Movimento: 1, Fumo: 20}}, readings)

	_, err = s.RecordReading(ctx, models.Reading{Movimento: 1, Fumo: 20})
	require.NoError(t, err)

	state, err := s.AlarmState(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ativo", state)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFailureIsQueryError(t *testing.T) {
	db, mock, cfg := dbtest.Postgres(t)
	s := store.New(db, cfg.Database)

	mock.ExpectExec(`INSERT INTO`).
		WillReturnError(errors.New(`relation "tam_25_26.acoes" does not exist`))

	_, err := s.RecordAlarm(context.Background(), true)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindQuery))
	assert.Equal(t, `relation "tam_25_26.acoes" does not exist`, err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}
