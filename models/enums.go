package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
)

type EstadoAcreditacion string

const (
	EstadoAcreditacionPendiente             EstadoAcreditacion = "PENDIENTE"
	EstadoAcreditacionEnProceso             EstadoAcreditacion = "EN_PROCESO"
	EstadoAcreditacionEnRevision            EstadoAcreditacion = "EN_REVISION"
	EstadoAcreditacionDocumentosIncompletos EstadoAcreditacion = "DOCUMENTOS_INCOMPLETOS"
	EstadoAcreditacionValidacionFinal       EstadoAcreditacion = "VALIDACION_FINAL"
	EstadoAcreditacionAprobado              EstadoAcreditacion = "APROBADO"
	EstadoAcreditacionRechazado             EstadoAcreditacion = "RECHAZADO"
)

// APROBADO and RECHAZADO accept no further lifecycle transitions
// (except the explicit reopen operation).
func (e EstadoAcreditacion) IsTerminal() bool {
	return e == EstadoAcreditacionAprobado || e == EstadoAcreditacionRechazado
}

func (e EstadoAcreditacion) IsValid() bool {
	switch e {
	case EstadoAcreditacionPendiente, EstadoAcreditacionEnProceso, EstadoAcreditacionEnRevision,
		EstadoAcreditacionDocumentosIncompletos, EstadoAcreditacionValidacionFinal,
		EstadoAcreditacionAprobado, EstadoAcreditacionRechazado:
		return true
	}
	return false
}

func (e EstadoAcreditacion) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(e))), nil
}

func (e *EstadoAcreditacion) UnmarshalJSON(b []byte) error {
	str, err := strconv.Unquote(string(b))
	if err != nil {
		return errors.New("estado must be a string")
	}
	parsed, err := ParseEstadoAcreditacion(str)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

func ParseEstadoAcreditacion(s string) (EstadoAcreditacion, error) {
	e := EstadoAcreditacion(s)
	if !e.IsValid() {
		return "", fmt.Errorf("invalid estado: %q", s)
	}
	return e, nil
}

func (e EstadoAcreditacion) Value() (driver.Value, error) {
	return string(e), nil
}

func (e *EstadoAcreditacion) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*e = EstadoAcreditacion(v)
	case []byte:
		*e = EstadoAcreditacion(v)
	default:
		return fmt.Errorf("cannot scan %T into EstadoAcreditacion", value)
	}
	return nil
}

// EstadoForProgreso is the default projection from a progress value onto a
// lifecycle state. Explicit verbs (approve, reject, flag) override it.
func EstadoForProgreso(progreso int) EstadoAcreditacion {
	switch {
	case progreso == 100:
		return EstadoAcreditacionValidacionFinal
	case progreso >= 50:
		return EstadoAcreditacionEnProceso
	default:
		return EstadoAcreditacionPendiente
	}
}

type EstadoActividad string

const (
	EstadoActividadPendiente  EstadoActividad = "PENDIENTE"
	EstadoActividadCompletada EstadoActividad = "COMPLETADA"
)

func (e EstadoActividad) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(e))), nil
}

func (e *EstadoActividad) UnmarshalJSON(b []byte) error {
	str, err := strconv.Unquote(string(b))
	if err != nil {
		return errors.New("estado must be a string")
	}
	switch str {
	case "PENDIENTE":
		*e = EstadoActividadPendiente
	case "COMPLETADA":
		*e = EstadoActividadCompletada
	default:
		return fmt.Errorf("invalid estado de actividad: %q", str)
	}
	return nil
}

func (e EstadoActividad) Value() (driver.Value, error) {
	return string(e), nil
}

func (e *EstadoActividad) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*e = EstadoActividad(v)
	case []byte:
		*e = EstadoActividad(v)
	default:
		return fmt.Errorf("cannot scan %T into EstadoActividad", value)
	}
	return nil
}

// modules with an auto-allocated numero series
const (
	NumeroModuloAcreditacion = "ACREDITACION"
	NumeroModuloTramite      = "TRAMITE"
)
