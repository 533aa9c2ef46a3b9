package seed_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/Evacuacion-api/internal/domain/entity"
	"github.com/jhoicas/Evacuacion-api/internal/infrastructure/seed"
)

const sample = `ID,Name,Municipality,Barangay,Families,Individuals,Latitude,Longitude,Status
c1,  Calapan   Central School ,Calapan,Lalud,8 fam,120 pax,13.4115,121.1803,permanent
c2,Gimnasio,Naujan,,,,,,
c3,,Naujan,,,,,,
c4,Capilla,Baco,,2,30,norte,121.0,TEMPORARY
`

func TestParseCentersCSV(t *testing.T) {
	res, err := seed.ParseCentersCSV(strings.NewReader(sample), seed.EncodingUTF8)
	require.NoError(t, err)
	require.Len(t, res.Centers, 2)

	c1 := res.Centers[0]
	assert.Equal(t, "c1", c1.ID)
	assert.Equal(t, "Calapan Central School", c1.Name)
	assert.Equal(t, "Lalud", c1.Barangay)
	assert.Equal(t, 8, c1.FamilyCapacityMax)
	assert.Equal(t, 120, c1.IndividualCapacityMax)
	assert.Equal(t, entity.CenterStatusPermanent, c1.Status)
	require.True(t, c1.Latitude.Valid)
	assert.Equal(t, "13.4115", c1.Latitude.Decimal.String())

	c2 := res.Centers[1]
	assert.Equal(t, 0, c2.IndividualCapacityMax)
	assert.False(t, c2.Latitude.Valid)
	assert.Equal(t, entity.CenterStatusTemporary, c2.Status)

	assert.Len(t, res.Skipped, 2)
	assert.Contains(t, res.Skipped[0], "fila 3")
	assert.Contains(t, res.Skipped[1], "latitud")
}

func TestParseCentersCSV_Latin1(t *testing.T) {
	raw, err := charmap.ISO8859_1.NewEncoder().String("id,name,municipality\nc1,Escuela Niño Jesús,Bacolod\n")
	require.NoError(t, err)

	res, err := seed.ParseCentersCSV(bytes.NewBufferString(raw), seed.EncodingLatin1)
	require.NoError(t, err)
	require.Len(t, res.Centers, 1)
	assert.Equal(t, "Escuela Niño Jesús", res.Centers[0].Name)
}

func TestParseCentersCSV_Errores(t *testing.T) {
	_, err := seed.ParseCentersCSV(strings.NewReader("name,municipality\nx,y\n"), "")
	assert.Error(t, err)

	_, err = seed.ParseCentersCSV(strings.NewReader(sample), "utf-16")
	assert.Error(t, err)
}

func TestParseCentersCSV_CoordenadasSexagesimales(t *testing.T) {
	const in = `id,name,municipality,latitude,longitude
c1,Escuela,Calapan,Lat: 13 08.278,Long: 121 10.818
c2,Capilla,Baco,"13°24'41.4""N","121°10'49.08""W"
c3,Gimnasio,Naujan,"13°24'41.4""S",121.5
`
	res, err := seed.ParseCentersCSV(strings.NewReader(in), seed.EncodingUTF8)
	require.NoError(t, err)
	require.Len(t, res.Centers, 3)
	assert.Empty(t, res.Skipped)

	assert.Equal(t, "13.1379667", res.Centers[0].Latitude.Decimal.String())
	assert.Equal(t, "121.1803", res.Centers[0].Longitude.Decimal.String())

	assert.Equal(t, "13.4115", res.Centers[1].Latitude.Decimal.String())
	assert.Equal(t, "-121.1803", res.Centers[1].Longitude.Decimal.String())

	assert.Equal(t, "-13.4115", res.Centers[2].Latitude.Decimal.String())
	assert.Equal(t, "121.5", res.Centers[2].Longitude.Decimal.String())
}
