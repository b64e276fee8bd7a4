package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/depot/core/model"
	"github.com/kilianp07/depot/pkg/export"
)

// commands builds a fresh command tree for one line.
func (c *Console) commands() *cobra.Command {
	root := &cobra.Command{
		Use:           "depot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(c.out)
	root.SetErr(c.out)
	root.SetHelpFunc(func(*cobra.Command, []string) { c.printf("%s", helpText) })
	root.CompletionOptions.DisableDefaultCmd = true

	vehicle := &cobra.Command{Use: "vehicle"}
	vehicle.AddCommand(
		&cobra.Command{Use: "add [capacity] [plate]", Args: cobra.ArbitraryArgs, DisableFlagParsing: true, RunE: c.vehicleAdd},
		&cobra.Command{Use: "plate <id> <plate>", Args: cobra.ExactArgs(2), RunE: c.vehiclePlate},
	)
	garage := &cobra.Command{Use: "garage"}
	garage.AddCommand(
		&cobra.Command{Use: "add <name>", Args: cobra.MinimumNArgs(1), RunE: c.garageAdd},
		&cobra.Command{Use: "show <id>", Args: cobra.ExactArgs(1), RunE: c.garageShow},
		&cobra.Command{Use: "rename <id> <name>", Args: cobra.MinimumNArgs(2), RunE: c.garageRename},
	)
	day := &cobra.Command{Use: "day"}
	day.AddCommand(
		&cobra.Command{Use: "start", Args: cobra.NoArgs, RunE: c.dayStart},
		&cobra.Command{Use: "end", Args: cobra.NoArgs, RunE: c.dayEnd},
		&cobra.Command{Use: "status", Args: cobra.NoArgs, RunE: c.dayStatus},
	)
	trips := &cobra.Command{Use: "trips"}
	trips.AddCommand(
		&cobra.Command{Use: "count <origin> <destination>", Args: cobra.ExactArgs(2), RunE: c.tripsCount},
		&cobra.Command{Use: "list <origin> <destination>", Args: cobra.ExactArgs(2), RunE: c.tripsList},
		&cobra.Command{Use: "csv <origin> <destination>", Args: cobra.ExactArgs(2), RunE: c.tripsCSV},
	)
	root.AddCommand(
		vehicle, garage, day, trips,
		&cobra.Command{Use: "trip <origin> <destination> <passengers>", Args: cobra.ExactArgs(3), DisableFlagParsing: true, RunE: c.trip},
		&cobra.Command{Use: "pax <origin> <destination>", Args: cobra.ExactArgs(2), RunE: c.pax},
		&cobra.Command{Use: "garages", Args: cobra.NoArgs, RunE: c.garages},
		&cobra.Command{Use: "vehicles", Args: cobra.NoArgs, RunE: c.vehicles},
		&cobra.Command{Use: "quit", Aliases: []string{"exit"}, RunE: func(*cobra.Command, []string) error { return errQuit }},
	)
	return root
}

const helpText = `Commands:
  vehicle add [capacity] [plate]   register a vehicle (default capacity when omitted)
  vehicle plate <id> <plate>       change a vehicle's plate
  garage add <name>                register a garage
  garage rename <id> <name>        rename a garage
  garage show <id>                 list the vehicles parked at a garage
  day start                        distribute the fleet and open the day
  day end                          close the day and print its summary
  day status                       show the current day
  trip <origin> <dest> <pax>       release a trip
  trips count <origin> <dest>      number of trips on a route today
  trips list <origin> <dest>       trips on a route today
  trips csv <origin> <dest>        trips on a route today as CSV
  pax <origin> <dest>              passengers carried on a route today
  garages                          list garages
  vehicles                         list vehicles
  quit                             leave the shell
`

func (c *Console) vehicleAdd(_ *cobra.Command, args []string) error {
	capacity := 0
	plate := ""
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid number %q", args[0])
		}
		capacity = n
	}
	if len(args) > 1 {
		plate = strings.Join(args[1:], " ")
	}
	id, err := c.sess.AddVehicle(capacity, plate)
	if err != nil {
		return err
	}
	v, err := c.sess.Vehicle(id)
	if err != nil {
		return err
	}
	c.printf("Vehicle V%d registered (capacity %d)\n", v.ID, v.Capacity)
	return nil
}

func (c *Console) vehiclePlate(_ *cobra.Command, args []string) error {
	n, err := ints(args[:1])
	if err != nil {
		return err
	}
	if err := c.sess.SetVehiclePlate(n[0], args[1]); err != nil {
		return err
	}
	c.printf("V%d plate set to %s\n", n[0], args[1])
	return nil
}

func (c *Console) garageAdd(_ *cobra.Command, args []string) error {
	name := strings.Join(args, " ")
	id, err := c.sess.AddGarage(name)
	if err != nil {
		return err
	}
	c.printf("Garage G%d registered: %s\n", id, name)
	return nil
}

func (c *Console) garageRename(_ *cobra.Command, args []string) error {
	n, err := ints(args[:1])
	if err != nil {
		return err
	}
	name := strings.Join(args[1:], " ")
	if err := c.sess.RenameGarage(n[0], name); err != nil {
		return err
	}
	c.printf("G%d renamed to %s\n", n[0], name)
	return nil
}

func (c *Console) garageShow(_ *cobra.Command, args []string) error {
	n, err := ints(args)
	if err != nil {
		return err
	}
	l, err := c.sess.GarageVehicles(n[0])
	if err != nil {
		return err
	}
	c.printf("%s\n", l.Garage)
	if len(l.Vehicles) == 0 {
		c.printf("  no vehicles parked\n")
	}
	for _, v := range l.Vehicles {
		c.printf("  %s\n", v)
	}
	c.printf("Potential capacity: %d\n", l.PotentialCapacity)
	return nil
}

func (c *Console) dayStart(*cobra.Command, []string) error {
	ds, err := c.sess.StartDay()
	if err != nil {
		return err
	}
	if ds.AlreadyActive {
		c.printf("Day %s already active\n", ds.DayID)
		return nil
	}
	c.printf("Day %s started\n", ds.DayID)
	for _, g := range c.sess.Garages() {
		c.printf("  G%d %s: %s\n", g.ID, g.Name, vehicleList(ds.Distribution[g.ID]))
	}
	return nil
}

func (c *Console) dayStatus(*cobra.Command, []string) error {
	ds, ok := c.sess.CurrentDay()
	if !ok {
		c.printf("No active day\n")
		return nil
	}
	c.printf("Day %s active since %s\n", ds.DayID, ds.StartedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func (c *Console) dayEnd(*cobra.Command, []string) error {
	sum, err := c.sess.EndDay()
	if err != nil {
		return err
	}
	printSummary(c, sum)
	return nil
}

func printSummary(c *Console, sum model.DaySummary) {
	c.printf("Day %s ended: %d trips, %d passengers\n", sum.DayID, sum.TotalTrips, sum.TotalPassengers)
	for _, v := range sum.Vehicles {
		label := fmt.Sprintf("V%d", v.VehicleID)
		if v.Plate != "" {
			label += " " + v.Plate
		}
		c.printf("  %s: %d passengers in %d trips\n", label, v.Passengers, v.Trips)
	}
	if sum.TotalTrips > 0 {
		c.printf("Load factor: mean %.2f, stddev %.2f\n", sum.MeanLoadFactor, sum.LoadFactorStdDev)
	}
}

func (c *Console) trip(_ *cobra.Command, args []string) error {
	n, err := ints(args)
	if err != nil {
		return err
	}
	t, err := c.sess.ReleaseTrip(n[0], n[1], n[2])
	if err != nil {
		return err
	}
	c.printf("%s\n", t)
	return nil
}

func (c *Console) tripsCount(_ *cobra.Command, args []string) error {
	n, err := ints(args)
	if err != nil {
		return err
	}
	c.printf("Trips %s: %d\n", model.Route{Origin: n[0], Destination: n[1]}, c.sess.TripsCount(n[0], n[1]))
	return nil
}

func (c *Console) tripsList(_ *cobra.Command, args []string) error {
	n, err := ints(args)
	if err != nil {
		return err
	}
	trips := c.sess.ListTrips(n[0], n[1])
	if len(trips) == 0 {
		c.printf("No trips found for this route\n")
		return nil
	}
	for _, t := range trips {
		c.printf("%s\n", t)
	}
	return nil
}

func (c *Console) tripsCSV(_ *cobra.Command, args []string) error {
	n, err := ints(args)
	if err != nil {
		return err
	}
	return export.WriteTripsCSV(c.out, c.sess.ListTrips(n[0], n[1]))
}

func (c *Console) pax(_ *cobra.Command, args []string) error {
	n, err := ints(args)
	if err != nil {
		return err
	}
	c.printf("Passengers %s: %d\n", model.Route{Origin: n[0], Destination: n[1]}, c.sess.PassengersCount(n[0], n[1]))
	return nil
}

func (c *Console) garages(*cobra.Command, []string) error {
	list := c.sess.Garages()
	if len(list) == 0 {
		c.printf("No garages registered\n")
	}
	for _, g := range list {
		c.printf("%s\n", g)
	}
	return nil
}

func (c *Console) vehicles(*cobra.Command, []string) error {
	list := c.sess.Vehicles()
	if len(list) == 0 {
		c.printf("No vehicles registered\n")
	}
	for _, v := range list {
		c.printf("%s\n", v)
	}
	return nil
}

func vehicleList(ids []int) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = "V" + strconv.Itoa(id)
	}
	return strings.Join(parts, " ")
}
