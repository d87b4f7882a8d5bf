// Command reconcile genera y analiza diferencias de stock y caja desde la línea de comandos.
//
// Uso:
//
//	reconcile -date 2025-03-14 -location 3 -shift mañana [-overwrite] [-force-cash] [-analyze] [-json]
//	reconcile -date 2025-03-14 -shift tarde -all [-overwrite] [-force-cash]
//
// Códigos de salida: 0 ok, 1 fallo de la generación o del almacenamiento, 2 parámetros inválidos.
// La configuración (STORAGE_DRIVER, DATABASE_URL, REDIS_URL, RECON_*) se lee igual que en la API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/conciliacion-api/internal/application/dto"
	"github.com/jhoicas/conciliacion-api/internal/application/reconciliation"
	"github.com/jhoicas/conciliacion-api/internal/bootstrap"
	"github.com/jhoicas/conciliacion-api/internal/domain"
	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
	"github.com/jhoicas/conciliacion-api/pkg/config"
	"github.com/jhoicas/conciliacion-api/pkg/logger"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type buildFunc func(ctx context.Context) (*bootstrap.UseCases, func(), error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	build := func(ctx context.Context) (*bootstrap.UseCases, func(), error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, func() {}, err
		}
		log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "reconcile", Out: os.Stderr})
		return bootstrap.Build(ctx, cfg, log)
	}
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, build)
	stop()
	os.Exit(code)
}

type options struct {
	date      time.Time
	location  int64
	shift     entity.Shift
	overwrite bool
	forceCash bool
	all       bool
	analyze   bool
	json      bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		rawDate  = fs.String("date", "", "fecha civil YYYY-MM-DD (requerido)")
		location = fs.Int64("location", 0, "id del local (requerido salvo con -all)")
		rawShift = fs.String("shift", "", "turno: mañana | tarde (requerido)")
		o        options
	)
	fs.BoolVar(&o.overwrite, "overwrite", false, "reemplazar diferencias ya generadas para la clave")
	fs.BoolVar(&o.forceCash, "force-cash", false, "escribir filas de caja aunque la diferencia sea cero")
	fs.BoolVar(&o.all, "all", false, "generar para todos los locales del catálogo")
	fs.BoolVar(&o.analyze, "analyze", false, "imprimir el análisis de compensación después de generar")
	fs.BoolVar(&o.json, "json", false, "salida JSON")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	date, err := entity.ParseDate(*rawDate)
	if err != nil {
		return nil, fmt.Errorf("-date inválido %q (YYYY-MM-DD)", *rawDate)
	}
	shift, ok := entity.ParseShift(*rawShift)
	if !ok {
		return nil, fmt.Errorf("-shift inválido %q (mañana | tarde)", *rawShift)
	}
	if !o.all && *location <= 0 {
		return nil, errors.New("-location requerido (o -all)")
	}
	if o.all && o.analyze {
		return nil, errors.New("-analyze no se combina con -all")
	}
	o.date, o.location, o.shift = date, *location, shift
	return &o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, build buildFunc) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, "error:", err)
		}
		return exitUsage
	}

	uc, cleanup, err := build(ctx)
	defer cleanup()
	if err != nil {
		fmt.Fprintln(stderr, "error: inicializar:", err)
		return exitFailure
	}

	if opts.all {
		return runBatch(ctx, uc, opts, stdout, stderr)
	}
	return runOne(ctx, uc, opts, stdout, stderr)
}

func runOne(ctx context.Context, uc *bootstrap.UseCases, o *options, stdout, stderr io.Writer) int {
	res, err := uc.Generate.Generate(ctx, reconciliation.GenerateInput{
		Date:                   o.date,
		LocationID:             o.location,
		Shift:                  o.shift,
		Overwrite:              o.overwrite,
		ForceCashDiscrepancies: o.forceCash,
	})
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitCode(err)
	}

	var verdict *entity.CompensationVerdict
	if o.analyze {
		shift := o.shift
		verdict, err = uc.Compensation.Analyze(ctx, o.date, o.location, &shift)
		if err != nil {
			fmt.Fprintln(stderr, "error: compensación:", err)
			return exitFailure
		}
	}

	if o.json {
		out := struct {
			Generation   dto.GenerateResponse      `json:"generation"`
			Compensation *dto.CompensationResponse `json:"compensation,omitempty"`
		}{Generation: dto.ToGenerateResponse(res)}
		if verdict != nil {
			c := dto.ToCompensationResponse(verdict)
			out.Compensation = &c
		}
		return writeJSON(stdout, stderr, out)
	}

	fmt.Fprintf(stdout, "%s: %d fila(s) de stock, %d de caja (%d forzadas); borradas %d/%d\n",
		res.Key, res.StockRows, res.CashRows, res.ForcedCashRows, res.DeletedStockRows, res.DeletedCashRows)
	for _, d := range res.Stock {
		fmt.Fprintf(stdout, "  stock %-20s esperado %6d real %6d dif %+6d valor %s [%s]\n",
			d.ProductID, d.ExpectedClosingQty, d.ActualClosingQty, d.DifferenceQty, d.MonetaryValue.StringFixed(2), d.Severity)
	}
	for _, d := range res.Cash {
		fmt.Fprintf(stdout, "  caja  %-20d esperado %s real %s dif %s [%s]\n",
			d.RegisterIndex, d.ExpectedAmount.StringFixed(2), d.ActualAmount.StringFixed(2), d.DifferenceAmount.StringFixed(2), d.Severity)
	}
	if verdict != nil {
		fmt.Fprintf(stdout, "compensación: %s (stock %s, caja %s, neto %s, %s%%)\n",
			verdict.Status, verdict.StockValue.StringFixed(2), verdict.CashValue.StringFixed(2),
			verdict.NetDifference.StringFixed(2), verdict.CompensationPercentage.StringFixed(2))
	}
	return exitOK
}

func runBatch(ctx context.Context, uc *bootstrap.UseCases, o *options, stdout, stderr io.Writer) int {
	outcomes, err := uc.Batch.GenerateAll(ctx, reconciliation.BatchInput{
		Date:                   o.date,
		Shift:                  o.shift,
		Overwrite:              o.overwrite,
		ForceCashDiscrepancies: o.forceCash,
	})
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitFailure
	}
	code := exitOK
	for _, oc := range outcomes {
		if oc.Status == reconciliation.BatchStatusFailed {
			code = exitFailure
		}
	}
	if o.json {
		if c := writeJSON(stdout, stderr, dto.ToBatchResponses(outcomes)); c != exitOK {
			return c
		}
		return code
	}
	for _, oc := range outcomes {
		line := fmt.Sprintf("local %d: %s", oc.LocationID, oc.Status)
		if oc.Result != nil {
			line += fmt.Sprintf(" (stock %d, caja %d)", oc.Result.StockRows, oc.Result.CashRows)
		}
		if oc.Err != nil && oc.Status == reconciliation.BatchStatusFailed {
			line += ": " + oc.Err.Error()
		}
		fmt.Fprintln(stdout, line)
	}
	return code
}

// exitCode entrada inválida = 2; el resto de la taxonomía = 1.
func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidLocation):
		return exitUsage
	}
	return exitFailure
}

func writeJSON(stdout, stderr io.Writer, v any) int {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitFailure
	}
	return exitOK
}
