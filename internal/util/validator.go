package util

import (
	"fmt"
	"strconv"
	"time"
)

// ParseAnio valida una clave de año de la URL: 4 dígitos en [1997, 2100].
func ParseAnio(s string) (int, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("año debe tener 4 dígitos, recibido %q", s)
	}
	anio, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("año inválido %q", s)
	}
	if anio < 1997 || anio > 2100 {
		return 0, fmt.Errorf("año %d fuera de rango [1997, 2100]", anio)
	}
	return anio, nil
}

// ParseMes valida una clave de mes de la URL: 2 dígitos "01".."12".
// El formato es fijo: "1" sin cero a la izquierda se rechaza.
func ParseMes(s string) (int, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("mes debe tener 2 dígitos (\"01\"..\"12\"), recibido %q", s)
	}
	mes, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("mes inválido %q", s)
	}
	if mes < 1 || mes > 12 {
		return 0, fmt.Errorf("mes %d fuera de rango [1, 12]", mes)
	}
	return mes, nil
}

// ParseFecha valida una fecha YYYY-MM-DD.
func ParseFecha(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("fecha vacía")
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("formato de fecha inválido (se espera YYYY-MM-DD): %w", err)
	}
	return t, nil
}

// ParseID valida un id numérico positivo de la URL.
func ParseID(s string) (uint, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id inválido %q", s)
	}
	return uint(id), nil
}
