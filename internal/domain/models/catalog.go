package models

// EquipmentDefinition describes a catalog entry used to seed equipment for a
// store: the category default plus its maintenance cadence.
type EquipmentDefinition struct {
	Name                    string `json:"name"`
	Category                string `json:"category"`
	MaintenanceIntervalDays int    `json:"maintenance_interval_days"`
}

// defaultDefinitions is the built-in equipment table shared by all stores.
var defaultDefinitions = []EquipmentDefinition{
	{Name: "Walk-in Cooler", Category: "refrigeration", MaintenanceIntervalDays: 90},
	{Name: "Walk-in Freezer", Category: "refrigeration", MaintenanceIntervalDays: 90},
	{Name: "Reach-in Cooler", Category: "refrigeration", MaintenanceIntervalDays: 90},
	{Name: "Ice Machine", Category: "refrigeration", MaintenanceIntervalDays: 30},
	{Name: "Fryer", Category: "cooking", MaintenanceIntervalDays: 30},
	{Name: "Grill", Category: "cooking", MaintenanceIntervalDays: 30},
	{Name: "Oven", Category: "cooking", MaintenanceIntervalDays: 60},
	{Name: "Toaster", Category: "cooking", MaintenanceIntervalDays: 60},
	{Name: "Dishwasher", Category: "sanitation", MaintenanceIntervalDays: 30},
	{Name: "Soda Fountain", Category: "beverage", MaintenanceIntervalDays: 30},
	{Name: "Coffee Brewer", Category: "beverage", MaintenanceIntervalDays: 30},
	{Name: "Exhaust Hood", Category: "ventilation", MaintenanceIntervalDays: 180},
}

// Catalog is a two-tier lookup over equipment definitions: the built-in
// default table merged at read time with per-store overrides keyed by name.
type Catalog struct {
	defaults  []EquipmentDefinition
	overrides map[string]EquipmentDefinition
}

// NewCatalog builds a catalog over the default definitions with the given
// store-specific overrides. A nil overrides map is allowed.
func NewCatalog(overrides map[string]EquipmentDefinition) *Catalog {
	return &Catalog{defaults: defaultDefinitions, overrides: overrides}
}

// Lookup returns the definition for a name, preferring the override tier
func (c *Catalog) Lookup(name string) (EquipmentDefinition, bool) {
	if def, ok := c.overrides[name]; ok {
		return def, true
	}
	for _, def := range c.defaults {
		if def.Name == name {
			return def, true
		}
	}
	return EquipmentDefinition{}, false
}

// List returns the merged view: every default definition with overrides
// applied, plus override-only entries appended in no particular order.
func (c *Catalog) List() []EquipmentDefinition {
	seen := make(map[string]bool, len(c.defaults))
	out := make([]EquipmentDefinition, 0, len(c.defaults)+len(c.overrides))
	for _, def := range c.defaults {
		seen[def.Name] = true
		if ov, ok := c.overrides[def.Name]; ok {
			out = append(out, ov)
			continue
		}
		out = append(out, def)
	}
	for name, ov := range c.overrides {
		if !seen[name] {
			out = append(out, ov)
		}
	}
	return out
}
