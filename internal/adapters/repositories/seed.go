package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"tanker-dispatch-service/internal/domain"
	"time"
)

type FleetSeed struct {
	FuelBlends []BlendSeed     `json:"fuel_blends"`
	Emirates   []EmirateSeed   `json:"emirates"`
	Drivers    []DriverSeed    `json:"drivers"`
	Tankers    []TankerSeed    `json:"tankers"`
	Customers  []CustomerSeed  `json:"customers"`
	TripGroups []TripGroupSeed `json:"trip_groups"`
}

type BlendSeed struct {
	BlendID             int     `json:"blend_id"`
	Code                string  `json:"code"`
	Name                string  `json:"name"`
	BiodieselPercentage float64 `json:"biodiesel_percentage"`
}

type EmirateSeed struct {
	EmirateID int    `json:"emirate_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
}

type DriverSeed struct {
	DriverID   int    `json:"driver_id"`
	Name       string `json:"name"`
	EmployeeID string `json:"employee_id"`
	DriverType string `json:"driver_type"`
	Phone      string `json:"phone"`
	// Operational days (0 = Saturday) the driver is off every week.
	DaysOff    []int  `json:"days_off"`
}

type TankerSeed struct {
	TankerID      int      `json:"tanker_id"`
	Name          string   `json:"name"`
	Registration  string   `json:"registration"`
	MaxCapacity   float64  `json:"max_capacity"`
	DeliveryType  string   `json:"delivery_type"`
	Status        string   `json:"status"`
	Is3PL         bool     `json:"is_3pl"`
	BlendCodes    []string `json:"blends"`
	EmirateCodes  []string `json:"emirates"`
	DefaultDriver *int     `json:"default_driver_id"`
}

type CustomerSeed struct {
	CustomerID      int     `json:"customer_id"`
	Name            string  `json:"name"`
	Code            string  `json:"code"`
	CustomerType    string  `json:"customer_type"`
	BlendCode       string  `json:"fuel_blend"`
	EmirateCode     string  `json:"emirate"`
	EstimatedVolume float64 `json:"estimated_volume"`
}

type TripGroupSeed struct {
	GroupID     int            `json:"group_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Templates   []TemplateSeed `json:"templates"`
}

type TemplateSeed struct {
	TemplateID   int     `json:"template_id"`
	CustomerID   int     `json:"customer_id"`
	DayOfWeek    int     `json:"day_of_week"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
	TankerID     *int    `json:"tanker_id"`
	BlendCode    string  `json:"fuel_blend"`
	VolumeLiters float64 `json:"volume_liters"`
	IsMobileOp   bool    `json:"is_mobile_op"`
	NeedsReturn  bool    `json:"needs_return"`
	Priority     int     `json:"priority"`
	Notes        string  `json:"notes"`
}

// SeedOptions controls the driver availability rows written with the fleet.
type SeedOptions struct {
	// WeekStart is normalized to its Saturday. Zero skips schedule rows.
	WeekStart time.Time
	Weeks     int
}

// LoadFleetSeed reads and validates a fleet seed file.
func LoadFleetSeed(jsonPath string) (*FleetSeed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed fleet: read %q: %w", jsonPath, err)
	}

	var seed FleetSeed
	if err := json.Unmarshal(bytes, &seed); err != nil {
		return nil, fmt.Errorf("seed fleet: parse json: %w", err)
	}
	if err := seed.validate(); err != nil {
		return nil, fmt.Errorf("seed fleet: %w", err)
	}
	return &seed, nil
}

func (s *FleetSeed) validate() error {
	blends := map[string]bool{}
	for i, b := range s.FuelBlends {
		if b.BlendID <= 0 || strings.TrimSpace(b.Code) == "" {
			return fmt.Errorf("fuel_blends[%d]: blend_id and code are required", i)
		}
		blends[b.Code] = true
	}
	emirates := map[string]bool{}
	for i, e := range s.Emirates {
		if e.EmirateID <= 0 || strings.TrimSpace(e.Code) == "" {
			return fmt.Errorf("emirates[%d]: emirate_id and code are required", i)
		}
		emirates[e.Code] = true
	}
	for i, d := range s.Drivers {
		if d.DriverID <= 0 || strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("drivers[%d]: driver_id and name are required", i)
		}
		for _, off := range d.DaysOff {
			if !domain.ValidDayOfWeek(off) {
				return fmt.Errorf("drivers[%d]: invalid day off %d", i, off)
			}
		}
	}
	for i, t := range s.Tankers {
		if t.TankerID <= 0 || t.MaxCapacity <= 0 {
			return fmt.Errorf("tankers[%d]: tanker_id and a positive max_capacity are required", i)
		}
		if _, err := domain.ParseDeliveryType(t.DeliveryType); err != nil {
			return fmt.Errorf("tankers[%d]: %w", i, err)
		}
		for _, code := range t.BlendCodes {
			if !blends[code] {
				return fmt.Errorf("tankers[%d]: unknown blend %q", i, code)
			}
		}
		for _, code := range t.EmirateCodes {
			if !emirates[code] {
				return fmt.Errorf("tankers[%d]: unknown emirate %q", i, code)
			}
		}
	}
	for i, c := range s.Customers {
		if c.CustomerID <= 0 || strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("customers[%d]: customer_id and name are required", i)
		}
		if c.BlendCode != "" && !blends[c.BlendCode] {
			return fmt.Errorf("customers[%d]: unknown blend %q", i, c.BlendCode)
		}
		if c.EmirateCode != "" && !emirates[c.EmirateCode] {
			return fmt.Errorf("customers[%d]: unknown emirate %q", i, c.EmirateCode)
		}
	}
	for i, g := range s.TripGroups {
		if g.GroupID <= 0 || strings.TrimSpace(g.Name) == "" {
			return fmt.Errorf("trip_groups[%d]: group_id and name are required", i)
		}
		for j, t := range g.Templates {
			if t.TemplateID <= 0 || !domain.ValidDayOfWeek(t.DayOfWeek) || t.VolumeLiters <= 0 {
				return fmt.Errorf("trip_groups[%d].templates[%d]: template_id, day_of_week and volume_liters are required", i, j)
			}
			start, err := domain.ParseClockTime(t.Start)
			if err != nil {
				return fmt.Errorf("trip_groups[%d].templates[%d]: start: %w", i, j, err)
			}
			end, err := domain.ParseClockTime(t.End)
			if err != nil {
				return fmt.Errorf("trip_groups[%d].templates[%d]: end: %w", i, j, err)
			}
			if _, err := domain.NewInterval(start, end); err != nil {
				return fmt.Errorf("trip_groups[%d].templates[%d]: %w", i, j, err)
			}
			if t.BlendCode != "" && !blends[t.BlendCode] {
				return fmt.Errorf("trip_groups[%d].templates[%d]: unknown blend %q", i, j, t.BlendCode)
			}
		}
	}
	return nil
}

// SeedFromJSON upserts the reference data in jsonPath and, when opts asks
// for it, writes driver availability for the requested weeks.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string, opts SeedOptions) error {
	seed, err := LoadFleetSeed(jsonPath)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed fleet: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := seed.write(ctx, tx, opts); err != nil {
		return fmt.Errorf("seed fleet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed fleet: commit tx: %w", err)
	}
	return nil
}

func (s *FleetSeed) write(ctx context.Context, tx *sql.Tx, opts SeedOptions) error {
	blendIDs := map[string]int{}
	for _, b := range s.FuelBlends {
		blendIDs[b.Code] = b.BlendID
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO fuel_blends (blend_id, code, name, biodiesel_percentage)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (blend_id) DO UPDATE
		SET code = EXCLUDED.code, name = EXCLUDED.name, biodiesel_percentage = EXCLUDED.biodiesel_percentage;
		`, b.BlendID, b.Code, b.Name, b.BiodieselPercentage); err != nil {
			return fmt.Errorf("insert blend %s: %w", b.Code, err)
		}
	}

	emirateIDs := map[string]int{}
	for _, e := range s.Emirates {
		emirateIDs[e.Code] = e.EmirateID
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO emirates (emirate_id, code, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (emirate_id) DO UPDATE
		SET code = EXCLUDED.code, name = EXCLUDED.name;
		`, e.EmirateID, e.Code, e.Name); err != nil {
			return fmt.Errorf("insert emirate %s: %w", e.Code, err)
		}
	}

	for _, d := range s.Drivers {
		driverType := d.DriverType
		if driverType == "" {
			driverType = string(domain.DriverInternal)
		}
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO drivers (driver_id, name, employee_id, driver_type, phone)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''))
		ON CONFLICT (driver_id) DO UPDATE
		SET name = EXCLUDED.name, employee_id = EXCLUDED.employee_id,
			driver_type = EXCLUDED.driver_type, phone = EXCLUDED.phone;
		`, d.DriverID, d.Name, d.EmployeeID, driverType, d.Phone); err != nil {
			return fmt.Errorf("insert driver_id=%d: %w", d.DriverID, err)
		}
	}

	for _, t := range s.Tankers {
		status := t.Status
		if status == "" {
			status = string(domain.TankerActive)
		}
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO tankers (tanker_id, name, registration, max_capacity, delivery_type, status, is_3pl, default_driver_id)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8)
		ON CONFLICT (tanker_id) DO UPDATE
		SET name = EXCLUDED.name, registration = EXCLUDED.registration, max_capacity = EXCLUDED.max_capacity,
			delivery_type = EXCLUDED.delivery_type, status = EXCLUDED.status, is_3pl = EXCLUDED.is_3pl,
			default_driver_id = EXCLUDED.default_driver_id;
		`, t.TankerID, t.Name, t.Registration, t.MaxCapacity, t.DeliveryType, status, t.Is3PL, t.DefaultDriver); err != nil {
			return fmt.Errorf("insert tanker_id=%d: %w", t.TankerID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM tanker_blends WHERE tanker_id = $1;`, t.TankerID); err != nil {
			return fmt.Errorf("reset blends of tanker_id=%d: %w", t.TankerID, err)
		}
		for _, code := range t.BlendCodes {
			if _, err := tx.ExecContext(ctx, `INSERT INTO tanker_blends (tanker_id, blend_id) VALUES ($1, $2);`,
				t.TankerID, blendIDs[code]); err != nil {
				return fmt.Errorf("insert blend %s for tanker_id=%d: %w", code, t.TankerID, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM tanker_emirates WHERE tanker_id = $1;`, t.TankerID); err != nil {
			return fmt.Errorf("reset emirates of tanker_id=%d: %w", t.TankerID, err)
		}
		for _, code := range t.EmirateCodes {
			if _, err := tx.ExecContext(ctx, `INSERT INTO tanker_emirates (tanker_id, emirate_id) VALUES ($1, $2);`,
				t.TankerID, emirateIDs[code]); err != nil {
				return fmt.Errorf("insert emirate %s for tanker_id=%d: %w", code, t.TankerID, err)
			}
		}
	}

	for _, c := range s.Customers {
		customerType := c.CustomerType
		if customerType == "" {
			customerType = string(domain.DeliveryBulk)
		}
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO customers (customer_id, name, code, customer_type, fuel_blend_id, emirate_id, estimated_volume)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
		ON CONFLICT (customer_id) DO UPDATE
		SET name = EXCLUDED.name, code = EXCLUDED.code, customer_type = EXCLUDED.customer_type,
			fuel_blend_id = EXCLUDED.fuel_blend_id, emirate_id = EXCLUDED.emirate_id,
			estimated_volume = EXCLUDED.estimated_volume;
		`, c.CustomerID, c.Name, c.Code, customerType, lookup(blendIDs, c.BlendCode),
			lookup(emirateIDs, c.EmirateCode), c.EstimatedVolume); err != nil {
			return fmt.Errorf("insert customer_id=%d: %w", c.CustomerID, err)
		}
	}

	for _, g := range s.TripGroups {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO trip_groups (group_id, name, description)
		VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT (group_id) DO UPDATE
		SET name = EXCLUDED.name, description = EXCLUDED.description;
		`, g.GroupID, g.Name, g.Description); err != nil {
			return fmt.Errorf("insert group_id=%d: %w", g.GroupID, err)
		}

		for _, t := range g.Templates {
			start, _ := domain.ParseClockTime(t.Start)
			end, _ := domain.ParseClockTime(t.End)
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO weekly_templates (
				template_id, customer_id, day_of_week, start_minute, end_minute, tanker_id,
				fuel_blend_id, volume_liters, is_mobile_op, needs_return, priority, notes
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''))
			ON CONFLICT (template_id) DO UPDATE
			SET customer_id = EXCLUDED.customer_id, day_of_week = EXCLUDED.day_of_week,
				start_minute = EXCLUDED.start_minute, end_minute = EXCLUDED.end_minute,
				tanker_id = EXCLUDED.tanker_id, fuel_blend_id = EXCLUDED.fuel_blend_id,
				volume_liters = EXCLUDED.volume_liters, is_mobile_op = EXCLUDED.is_mobile_op,
				needs_return = EXCLUDED.needs_return, priority = EXCLUDED.priority, notes = EXCLUDED.notes;
			`, t.TemplateID, t.CustomerID, t.DayOfWeek, start, end, t.TankerID, lookup(blendIDs, t.BlendCode),
				t.VolumeLiters, t.IsMobileOp, t.NeedsReturn, t.Priority, t.Notes); err != nil {
				return fmt.Errorf("insert template_id=%d: %w", t.TemplateID, err)
			}

			if _, err := tx.ExecContext(ctx, `
			INSERT INTO trip_group_templates (group_id, template_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING;
			`, g.GroupID, t.TemplateID); err != nil {
				return fmt.Errorf("link template_id=%d to group_id=%d: %w", t.TemplateID, g.GroupID, err)
			}
		}
	}

	for _, seq := range [][2]string{
		{"fuel_blends", "blend_id"},
		{"emirates", "emirate_id"},
		{"drivers", "driver_id"},
		{"tankers", "tanker_id"},
		{"customers", "customer_id"},
		{"trip_groups", "group_id"},
		{"weekly_templates", "template_id"},
	} {
		stmt := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%[1]s', '%[2]s'), COALESCE(MAX(%[2]s), 1)) FROM %[1]s;`,
			seq[0], seq[1],
		)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("advance %s sequence: %w", seq[0], err)
		}
	}

	if opts.WeekStart.IsZero() || opts.Weeks <= 0 {
		return nil
	}

	first := domain.WeekStart(opts.WeekStart)
	for _, d := range s.Drivers {
		for i := range opts.Weeks * domain.DaysPerWeek {
			date := first.AddDate(0, 0, i)
			status := domain.ScheduleWorking
			if slices.Contains(d.DaysOff, domain.DayOfWeek(date)) {
				status = domain.ScheduleOff
			}
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO driver_schedules (driver_id, schedule_date, status)
			VALUES ($1, $2, $3)
			ON CONFLICT (driver_id, schedule_date) DO NOTHING;
			`, d.DriverID, date, string(status)); err != nil {
				return fmt.Errorf("insert schedule driver_id=%d date=%s: %w", d.DriverID, date.Format(time.DateOnly), err)
			}
		}
	}
	return nil
}

func lookup(ids map[string]int, code string) *int {
	id, ok := ids[code]
	if !ok {
		return nil
	}
	return &id
}
