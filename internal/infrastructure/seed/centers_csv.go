// Package seed carga el directorio de centros de evacuación desde planillas CSV.
package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Evacuacion-api/internal/domain/entity"
)

// Codificaciones aceptadas del archivo de entrada.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin1"
)

var (
	firstNumber = regexp.MustCompile(`\d+`)
	spaces      = regexp.MustCompile(`\s+`)
	// "Lat: 13 08.278": grados y minutos decimales.
	degreesMinutes = regexp.MustCompile(`([-+]?\d+(?:\.\d+)?)\s+(\d+(?:\.\d+)?)`)
	// 13°24'41.4"N
	degreesMinutesSeconds = regexp.MustCompile(`(?i)^(-?\d+)[°\s]+(\d+)['\s]+(\d+(?:\.\d+)?)["\s]*([NSEW])?$`)
)

// coordinateScale decimales de latitude/longitude en la tabla.
const coordinateScale = 7

// Result centros válidos y filas descartadas (una entrada por fila, numeradas desde 1).
type Result struct {
	Centers []entity.EvacuationCenter
	Skipped []string
}

// ParseCentersCSV lee un CSV con encabezados id, name, municipality, barangay, families,
// individuals, latitude, longitude, status. Los encabezados no distinguen mayúsculas.
// Las capacidades toman el primer número del texto ("8 fam" -> 8); sin número quedan en 0.
func ParseCentersCSV(r io.Reader, encoding string) (*Result, error) {
	switch strings.ToLower(encoding) {
	case "", EncodingUTF8:
	case EncodingLatin1, "iso-8859-1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return nil, fmt.Errorf("codificación no soportada: %s", encoding)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(cleanText(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{"id", "name", "municipality"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("falta la columna %q", required)
		}
	}

	res := &Result{}
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fila %d: %w", row, err)
		}
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(rec) {
				return ""
			}
			return cleanText(rec[i])
		}

		c := entity.EvacuationCenter{
			ID:                    get("id"),
			Name:                  get("name"),
			Municipality:          get("municipality"),
			Barangay:              get("barangay"),
			FamilyCapacityMax:     leadingInt(get("families")),
			IndividualCapacityMax: leadingInt(get("individuals")),
			Status:                normalizeStatus(get("status")),
		}
		if c.ID == "" || c.Name == "" || c.Municipality == "" {
			res.Skipped = append(res.Skipped, fmt.Sprintf("fila %d: faltan id, nombre o municipio", row))
			continue
		}
		if c.Latitude, err = parseCoordinate(get("latitude")); err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("fila %d: latitud inválida", row))
			continue
		}
		if c.Longitude, err = parseCoordinate(get("longitude")); err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("fila %d: longitud inválida", row))
			continue
		}
		res.Centers = append(res.Centers, c)
	}
	return res, nil
}

func cleanText(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

func leadingInt(s string) int {
	m := firstNumber.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

func normalizeStatus(s string) string {
	switch strings.ToUpper(s) {
	case entity.CenterStatusPermanent:
		return entity.CenterStatusPermanent
	default:
		return entity.CenterStatusTemporary
	}
}

// parseCoordinate acepta grados decimales, "Lat: 13 08.278" (grados y minutos) y
// 13°24'41.4"N (grados, minutos y segundos; S y W negativos).
func parseCoordinate(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return decimal.NewNullDecimal(d), nil
	}

	lower := strings.ToLower(s)
	if strings.Contains(lower, "lat") || strings.Contains(lower, "long") {
		if m := degreesMinutes.FindStringSubmatch(s); m != nil {
			return sexagesimal(m[1], m[2], "0", false)
		}
	}
	if m := degreesMinutesSeconds.FindStringSubmatch(s); m != nil {
		dir := strings.ToUpper(m[4])
		return sexagesimal(m[1], m[2], m[3], dir == "S" || dir == "W")
	}
	return decimal.NullDecimal{}, fmt.Errorf("coordenada no reconocida: %q", s)
}

func sexagesimal(deg, mins, secs string, negate bool) (decimal.NullDecimal, error) {
	d, err := decimal.NewFromString(strings.TrimPrefix(deg, "+"))
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	m, err := decimal.NewFromString(mins)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	sc, err := decimal.NewFromString(secs)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	if d.IsNegative() {
		negate = !negate
		d = d.Neg()
	}
	v := d.Add(m.Div(decimal.NewFromInt(60))).Add(sc.Div(decimal.NewFromInt(3600)))
	if negate {
		v = v.Neg()
	}
	return decimal.NewNullDecimal(v.Round(coordinateScale)), nil
}
