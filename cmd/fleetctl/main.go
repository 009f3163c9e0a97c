package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/infrastructure/fleetapi"
	"github.com/frontandrew/fleet/internal/pkg/logger"
)

const usage = `Usage: fleetctl [flags] <command>

Commands:
  vehicles                  list vehicles
  rentals                   list rentals
  availability FROM TO      vehicles free in [FROM, TO), dates as YYYY-MM-DD or RFC3339
  dashboard                 fleet dashboard

Flags:
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fleetctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	apiURL := fs.String("api", envOr("FLEET_API_URL", "http://localhost:8080"), "API base URL")
	token := fs.String("token", os.Getenv("FLEET_API_TOKEN"), "access token")
	fallback := fs.Bool("fallback", false, "show demo data when the API is unreachable")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	client := fleetapi.NewClient(*apiURL, *timeout,
		fleetapi.WithToken(*token),
		fleetapi.WithLogger(logger.New("warn", "console", "stderr")),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 2*(*timeout))
	defer cancel()

	cmd := command{client: client, fallback: *fallback, stdout: stdout, stderr: stderr}
	switch fs.Arg(0) {
	case "vehicles":
		return cmd.vehicles(ctx)
	case "rentals":
		return cmd.rentals(ctx)
	case "availability":
		if fs.NArg() != 3 {
			fmt.Fprintln(stderr, "availability requires FROM and TO")
			return 2
		}
		return cmd.availability(ctx, fs.Arg(1), fs.Arg(2))
	case "dashboard":
		return cmd.dashboard(ctx)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", fs.Arg(0))
		fs.Usage()
		return 2
	}
}

type command struct {
	client   *fleetapi.Client
	fallback bool
	stdout   io.Writer
	stderr   io.Writer
}

func (c command) vehicles(ctx context.Context) int {
	res := c.client.ListAllVehicles(ctx, fleetapi.VehicleQuery{})
	if c.fallback {
		res = res.Fallback(fleetapi.MockVehicles)
	}
	vehicles, code := unwrap(c, res)
	if code != 0 {
		return code
	}
	printVehicles(c.stdout, vehicles)
	return 0
}

func (c command) rentals(ctx context.Context) int {
	res := c.client.ListAllRentals(ctx, fleetapi.RentalQuery{})
	if c.fallback {
		res = res.Fallback(fleetapi.MockRentals)
	}
	rentals, code := unwrap(c, res)
	if code != 0 {
		return code
	}

	w := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVEHICLE\tCLIENT\tSTATUS\tSTART\tEND\tAMOUNT")
	for _, r := range rentals {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%.2f\n",
			r.ID, r.VehicleID, r.ClientName, r.Status,
			r.StartDate.Format(time.DateOnly), r.EndDate().Format(time.DateOnly), r.TotalAmount())
	}
	_ = w.Flush()
	return 0
}

// availability считает свободные автомобили на клиенте; при -fallback
// расчет выполняется по демонстрационным данным
func (c command) availability(ctx context.Context, from, to string) int {
	dr, err := domain.ParseDateRange(from, to)
	if err != nil {
		fmt.Fprintf(c.stderr, "invalid range: %v\n", err)
		return 2
	}

	res := c.client.CheckAvailability(ctx, dr)
	if c.fallback {
		res = res.Fallback(func() []*domain.FleetVehicle {
			return domain.AvailableVehicles(fleetapi.MockVehicles(), fleetapi.MockRentals(), dr)
		})
	}
	vehicles, code := unwrap(c, res)
	if code != 0 {
		return code
	}
	fmt.Fprintf(c.stdout, "%d vehicles available %s - %s\n", len(vehicles),
		dr.From.Format(time.RFC3339), dr.To.Format(time.RFC3339))
	printVehicles(c.stdout, vehicles)
	return 0
}

func (c command) dashboard(ctx context.Context) int {
	res := c.client.Dashboard(ctx)
	if c.fallback {
		res = res.Fallback(fleetapi.MockDashboard)
	}
	d, code := unwrap(c, res)
	if code != 0 {
		return code
	}

	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		fmt.Fprintf(c.stderr, "failed to print dashboard: %v\n", err)
		return 1
	}
	return 0
}

// unwrap печатает причину неудачи и предупреждает о подставленных данных
func unwrap[T any](c command, res fleetapi.Result[T]) (T, int) {
	if res.Substituted {
		fmt.Fprintf(c.stderr, "warning: API %s (%v), showing demo data\n", res.Kind, res.Err)
	}
	value, err := res.Unwrap()
	if err != nil {
		fmt.Fprintf(c.stderr, "error: %s: %v\n", res.Kind, err)
		return value, 1
	}
	return value, 0
}

func printVehicles(out io.Writer, vehicles []*domain.FleetVehicle) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPLATE\tVEHICLE\tCATEGORY\tSTATUS\tMILEAGE\tDAILY RATE")
	for _, v := range vehicles {
		fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%s\t%d\t%.2f\n",
			v.ID, v.LicensePlate, v.Make, v.Model, v.Category, v.Status, v.CurrentMileage, v.DailyRate)
	}
	_ = w.Flush()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
