package models

import (
	"time"
)

// Action events written by the gateway
const (
	EventAlarmOn       = "Alarme ligado"
	EventAlarmOff      = "Alarme desligado"
	EventReadingStored = "Dados recebidos com sucesso!"
)

// Table names, unqualified. The store prefixes the configured schema.
const (
	AlertsTable     = "alertas"
	ActionsTable    = "acoes"
	AlarmStateTable = "estado_alarme"
)

// AlarmStateID is the id of the singleton alarm state row
const AlarmStateID = 1

// Alert represents a logged notification
type Alert struct {
	Mensagem  string    `gorm:"column:mensagem;type:text"`
	Timestamp time.Time `gorm:"column:timestamp"`
}

// Action is one row of the append-only action log. Sensor readings carry
// both Movimento and Fumo; alarm toggles carry neither.
type Action struct {
	Evento    string    `gorm:"column:evento;type:text;not null"`
	Data      time.Time `gorm:"column:data;not null"`
	Movimento *int      `gorm:"column:movimento"`
	Fumo      *int      `gorm:"column:fumo"`
}

// AlarmState is the externally managed singleton alarm status
type AlarmState struct {
	ID     int    `gorm:"column:id;primaryKey;autoIncrement:false"`
	Estado string `gorm:"column:estado;type:text"`
}

// IsReading reports whether the action holds a sensor reading
func (a Action) IsReading() bool {
	return a.Movimento != nil && a.Fumo != nil
}

// AlertView is the JSON shape returned by GET /alertas
type AlertView struct {
	Mensagem  string `json:"mensagem"`
	Timestamp string `json:"timestamp"`
}

// ReadingView is the JSON shape returned by GET /dados
type ReadingView struct {
	Movimento int `json:"movimento"`
	Fumo      int `json:"fumo"`
}

// View converts an alert row to its response shape
func (a Alert) View() AlertView {
	return AlertView{
		Mensagem:  a.Mensagem,
		Timestamp: ISOTimestamp(a.Timestamp),
	}
}

// ISOTimestamp formats t as ISO-8601. Microseconds are only printed when
// non-zero, and the offset only when t is not UTC.
func ISOTimestamp(t time.Time) string {
	layout := "2006-01-02T15:04:05"
	if t.Nanosecond()/int(time.Microsecond) != 0 {
		layout += ".000000"
	}
	if t.Location() != time.UTC {
		layout += "-07:00"
	}
	return t.Format(layout)
}

// GetAllModels returns all models keyed by table name
func GetAllModels() map[string]interface{} {
	return map[string]interface{}{
		AlertsTable:     &Alert{},
		ActionsTable:    &Action{},
		AlarmStateTable: &AlarmState{},
	}
}
