// seed_centers carga el directorio de centros de evacuación en PostgreSQL
// a partir de una planilla CSV (una fila por centro).
//
// Uso: go run ./cmd/seed_centers [-encoding latin1] [ruta/centros.csv]
// Por defecto busca centros.csv en el directorio actual. Usa la conexión de DATABASE_URL / DB_*.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/Evacuacion-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Evacuacion-api/internal/infrastructure/seed"
	"github.com/jhoicas/Evacuacion-api/pkg/config"
)

func main() {
	encoding := flag.String("encoding", seed.EncodingUTF8, "codificación del CSV: utf-8 | latin1")
	flag.Parse()

	csvPath := "centros.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	res, err := seed.ParseCentersCSV(f, *encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "Esquema: %v\n", err)
		os.Exit(1)
	}

	repo := postgres.NewCenterRepository(pool)
	loaded := 0
	for i := range res.Centers {
		if err := repo.Upsert(ctx, &res.Centers[i]); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			continue
		}
		loaded++
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(os.Stderr, "omitida: %s\n", s)
	}

	fmt.Printf("Cargados %d centros desde %s (%d filas omitidas)\n", loaded, csvPath, len(res.Skipped))
}
