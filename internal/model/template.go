package model

import (
	"path/filepath"
	"strings"
)

// TemplateID identifies one of the built-in BOM templates.
type TemplateID string

const (
	TemplateEngine       TemplateID = "engine"
	TemplateTransmission TemplateID = "transmission"
	TemplateSuspension   TemplateID = "suspension"
	TemplateChair        TemplateID = "chair"
	TemplateShelf        TemplateID = "shelf"
	TemplateTable        TemplateID = "table"
)

// DefaultTemplate is returned when no keyword matches a filename.
const DefaultTemplate = TemplateTable

// keywordRule maps a set of filename keywords to a template.
type keywordRule struct {
	Keywords []string
	Template TemplateID
}

// keywordRules are evaluated in order; the first rule with a matching keyword wins.
var keywordRules = []keywordRule{
	{Keywords: []string{"engine", "motor"}, Template: TemplateEngine},
	{Keywords: []string{"transmission", "gearbox"}, Template: TemplateTransmission},
	{Keywords: []string{"suspension", "strut"}, Template: TemplateSuspension},
	{Keywords: []string{"chair"}, Template: TemplateChair},
	{Keywords: []string{"shelf"}, Template: TemplateShelf},
}

func item(no, name string, qty int, price float64, material string) LineItem {
	return LineItem{ItemNo: no, Level: 0, PartName: name, Quantity: qty, UnitPrice: price, Material: material}
}

// catalog holds the built-in templates. Never hand these out directly; use
// GetTemplate or SelectTemplate, which return clones.
var catalog = map[TemplateID]BOM{
	TemplateEngine: {
		Template: TemplateEngine,
		Name:     "Engine Assembly",
		Items: []LineItem{
			item("1", "Cylinder Block", 1, 850.00, "Cast iron, 6-cylinder V-configuration"),
			item("2", "Piston Assembly", 6, 65.00, "Forged aluminum with rings, 86mm bore"),
			item("3", "Connecting Rod", 6, 85.00, "Forged steel, I-beam design"),
			item("4", "Crankshaft", 1, 525.00, "Forged steel, fully balanced, hardened journals"),
			item("5", "Camshaft", 2, 210.00, "Steel, DOHC configuration, variable valve timing"),
			item("6", "Cylinder Head", 2, 425.00, "Aluminum alloy, 3-valve per cylinder"),
			item("7", "Timing Chain Kit", 1, 185.00, "Roller chain with tensioner, guides & sprockets"),
			item("8", "Oil Pump", 1, 145.00, "Gear-type, high-pressure"),
			item("9", "Water Pump", 1, 95.00, "Centrifugal, cast aluminum housing"),
			item("10", "Engine Gasket Set", 1, 125.00, "Complete MLS head, pan, valve cover gaskets"),
		},
	},
	TemplateTransmission: {
		Template: TemplateTransmission,
		Name:     "Transmission Assembly",
		Items: []LineItem{
			item("1", "Transmission Case", 1, 650.00, "Cast aluminum, 6-speed automatic housing"),
			item("2", "Torque Converter", 1, 425.00, "3-element fluid coupling with lock-up clutch"),
			item("3", "Planetary Gear Set", 3, 285.00, "Hardened steel gears, sun/planet/ring configuration"),
			item("4", "Clutch Pack", 6, 75.00, "Friction and steel plates, multi-disc"),
			item("5", "Valve Body", 1, 385.00, "Aluminum casting with hydraulic control passages"),
			item("6", "Transmission Control Module (TCM)", 1, 425.00, "Electronic control unit, adaptive shift logic"),
			item("7", "Oil Pump", 1, 165.00, "Gerotor type, driven by input shaft"),
			item("8", "Output Shaft", 1, 195.00, "Forged steel, splined for driveshaft connection"),
			item("9", "Transmission Cooler", 1, 135.00, "Aluminum tube-and-fin heat exchanger"),
			item("10", "Shift Solenoid Pack", 1, 245.00, "8 electronic solenoids for gear selection"),
		},
	},
	TemplateSuspension: {
		Template: TemplateSuspension,
		Name:     "Front Suspension Assembly",
		Items: []LineItem{
			item("1", "Strut Assembly", 2, 285.00, "MacPherson strut, gas-charged monotube damper"),
			item("2", "Coil Spring", 2, 85.00, "High-tensile steel, progressive rate"),
			item("3", "Control Arm", 2, 165.00, "Stamped steel, lower A-arm with bushings"),
			item("4", "Ball Joint", 2, 55.00, "Forged steel housing with grease fitting"),
			item("5", "Sway Bar", 1, 125.00, "Solid steel torsion bar, 28mm diameter"),
			item("6", "Sway Bar Link", 2, 35.00, "Steel rod with ball joints, adjustable"),
			item("7", "Steering Knuckle", 2, 145.00, "Cast aluminum, wheel hub mounting"),
			item("8", "Wheel Bearing Hub", 2, 95.00, "Sealed double-row ball bearing assembly"),
			item("9", "Strut Mount", 2, 45.00, "Rubber-isolated bearing with upper spring seat"),
			item("10", "Bushing Kit", 1, 65.00, "Polyurethane control arm & sway bar bushings"),
		},
	},
	TemplateChair: {
		Template: TemplateChair,
		Name:     "Wood Chair",
		Items: []LineItem{
			item("1", "Seat Panel", 1, 25.00, "Solid wood, ~450x450x20mm"),
			item("2", "Chair Leg", 4, 8.50, "Solid wood, ~40x40x450mm"),
			item("3", "Backrest Panel", 1, 18.00, "Solid wood, ~450x300x20mm"),
			item("4", "Backrest Slat", 5, 2.20, "Solid wood slats"),
			item("5", "Side Rail", 2, 6.75, "Solid wood, ~400x60x20mm"),
			item("6", "Front/Rear Rail", 2, 7.10, "Solid wood, ~400x70x20mm"),
			item("7", "Wood Screws", 30, 0.07, "#8 x 1-1/4\" wood screws"),
			item("8", "Dowels", 20, 0.05, "8mm beech dowels"),
			item("9", "Wood Glue", 1, 6.00, "PVA wood glue"),
			item("10", "Finish", 1, 12.00, "Varnish/oil"),
		},
	},
	TemplateShelf: {
		Template: TemplateShelf,
		Name:     "Wood Shelf",
		Items: []LineItem{
			item("1", "Side Panel", 2, 22.00, "Solid wood, ~1800x300x18mm"),
			item("2", "Shelf Board", 3, 18.00, "Solid wood, ~800x300x18mm"),
			item("3", "Top/Bottom Panel", 2, 20.00, "Solid wood, ~800x300x18mm"),
			item("4", "Back Panel", 1, 15.00, "Plywood, ~800x1800x6mm"),
			item("5", "Shelf Pins", 16, 0.12, "Metal pins"),
			item("6", "Support Brackets", 6, 2.50, "Steel angle"),
			item("7", "Wood Screws", 40, 0.08, "#8 x 1-1/2\" wood screws"),
			item("8", "Bolts + Nuts", 10, 0.60, "M6 bolts with nuts & washers"),
			item("9", "Wood Glue", 1, 6.50, "PVA wood glue"),
			item("10", "Finish", 1, 16.00, "Stain/varnish"),
		},
	},
	TemplateTable: {
		Template: TemplateTable,
		Name:     "Wood Table",
		Items: []LineItem{
			item("1", "Table Top Panel", 1, 85.00, "Solid wood (oak/pine), ~1200x700x25mm"),
			item("2", "Table Leg", 4, 12.50, "Solid wood, ~70x70x730mm"),
			item("3", "Apron/Rail", 4, 9.75, "Solid wood, ~1000x90x20mm"),
			item("4", "Corner Bracket", 4, 2.80, "Steel L-bracket"),
			item("5", "Wood Screws", 40, 0.08, "#8 x 1-1/2\" wood screws"),
			item("6", "Bolts + Nuts", 8, 0.60, "M8 x 60mm bolts with nuts & washers"),
			item("7", "Wood Glue", 1, 6.50, "PVA wood glue (bottle)"),
			item("8", "Finish", 1, 14.00, "Stain/varnish/oil (can)"),
			item("9", "Cross Support", 2, 8.50, "Solid wood, ~900x70x20mm"),
			item("10", "Felt Pads", 4, 0.50, "Self-adhesive floor protectors"),
		},
	},
}

// templateOrder lists the catalog in keyword priority order, default last.
var templateOrder = []TemplateID{
	TemplateEngine,
	TemplateTransmission,
	TemplateSuspension,
	TemplateChair,
	TemplateShelf,
	TemplateTable,
}

// ExpectedCategory is the material class a photo of the template's
// assembly should classify as.
func ExpectedCategory(id TemplateID) Category {
	switch id {
	case TemplateEngine, TemplateTransmission, TemplateSuspension:
		return CategoryMechanical
	default:
		return CategoryWood
	}
}

// Templates returns a copy of every built-in template in priority order.
func Templates() []BOM {
	out := make([]BOM, len(templateOrder))
	for i, id := range templateOrder {
		out[i] = catalog[id].Clone()
	}
	return out
}

// TemplateIDs returns the template identifiers in priority order.
func TemplateIDs() []TemplateID {
	ids := make([]TemplateID, len(templateOrder))
	copy(ids, templateOrder)
	return ids
}

// Keywords returns the filename keywords that select id, or nil for the
// default template.
func Keywords(id TemplateID) []string {
	for _, r := range keywordRules {
		if r.Template == id {
			kw := make([]string, len(r.Keywords))
			copy(kw, r.Keywords)
			return kw
		}
	}
	return nil
}

// LookupTemplate returns a clone of the template with the given id and
// whether it exists in the catalog.
func LookupTemplate(id TemplateID) (BOM, bool) {
	b, ok := catalog[id]
	if !ok {
		return BOM{}, false
	}
	return b.Clone(), true
}

// GetTemplate returns a clone of the template with the given id.
// Falls back to the default template if not found.
func GetTemplate(id TemplateID) BOM {
	if b, ok := LookupTemplate(id); ok {
		return b
	}
	return catalog[DefaultTemplate].Clone()
}

// MatchTemplate returns the id of the template selected by filename. Only the
// base name is considered and matching is case-insensitive.
func MatchTemplate(filename string) TemplateID {
	lower := strings.ToLower(filepath.Base(filename))
	for _, r := range keywordRules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Template
			}
		}
	}
	return DefaultTemplate
}

// SelectTemplate returns a clone of the BOM chosen by filename keyword.
// Every filename maps to exactly one template.
func SelectTemplate(filename string) BOM {
	return GetTemplate(MatchTemplate(filename))
}
