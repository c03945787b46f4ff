package domain

// Vehicle describes a model in the AOE line-up.
type Vehicle struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Powertrain string `json:"powertrain"`
	Features   string `json:"features"`
}

// CompetitorModel is the comparable model of a rival brand for a segment.
type CompetitorModel struct {
	Brand     string `json:"brand"`
	ModelName string `json:"model_name"`
	Features  string `json:"features"`
}

// Vehicles is the AOE catalog keyed by model name.
var Vehicles = map[string]Vehicle{
	"AOE Apex": {
		Name:       "AOE Apex",
		Type:       "Luxury Sedan",
		Powertrain: "Gasoline",
		Features:   "Premium leather interior, Advanced driver-assistance systems (ADAS), Panoramic sunroof, Bose premium sound system, Adaptive cruise control, Lane-keeping assist, Automated parking, Heated and ventilated seats.",
	},
	"AOE Volt": {
		Name:       "AOE Volt",
		Type:       "Electric Compact",
		Powertrain: "Electric",
		Features:   "Long-range battery (500 miles), Fast charging (80% in 20 min), Regenerative braking, Solar roof charging, Vehicle-to-Grid (V2G) capability, Digital cockpit, Over-the-air updates, Extensive charging network access.",
	},
	"AOE Thunder": {
		Name:       "AOE Thunder",
		Type:       "Performance SUV",
		Powertrain: "Gasoline",
		Features:   "V8 Twin-Turbo Engine, Adjustable air suspension, Sport Chrono Package, High-performance braking system, Off-road capabilities, Torque vectoring, 360-degree camera, Ambient lighting, Customizable drive modes.",
	},
}

// segmentByType maps an AOE vehicle type to the competitor segment.
var segmentByType = map[string]string{
	"Luxury Sedan":     "Sedan",
	"Electric Compact": "EV",
	"Performance SUV":  "SUV",
}

var competitors = map[string]map[string]CompetitorModel{
	"Ford": {
		"Sedan": {Brand: "Ford", ModelName: "Ford Sedan", Features: "2.5L IVCT Atkinson Cycle I-4 Hybrid Engine; 210 Total System Horsepower"},
		"SUV":   {Brand: "Ford", ModelName: "Ford SUV", Features: "Available 440 hp 3.5L EcoBoost V6; ABS; Side-Impact Airbags"},
		"EV":    {Brand: "Ford", ModelName: "Ford EV", Features: "260 miles EPA range; 387 lb-ft torque; SYNC4A"},
	},
}

// Competitor returns the rival model of brand in the same segment as the AOE
// vehicle, if one is known.
func Competitor(brand, vehicle string) (CompetitorModel, bool) {
	v, ok := Vehicles[vehicle]
	if !ok {
		return CompetitorModel{}, false
	}
	models, ok := competitors[brand]
	if !ok {
		return CompetitorModel{}, false
	}
	m, ok := models[segmentByType[v.Type]]
	return m, ok
}
