package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/socketsched/core/model"
)

type DeviceDef struct {
	ID             string  `yaml:"id"`
	RechargeRate   float64 `yaml:"recharge_rate"`
	DischargeRate  float64 `yaml:"discharge_rate"`
	InitialBattery float64 `yaml:"initial_battery"`
}

func (d DeviceDef) ToModel() model.Device {
	return model.Device{
		ID:             d.ID,
		RechargeRate:   d.RechargeRate,
		DischargeRate:  d.DischargeRate,
		InitialBattery: d.InitialBattery,
	}
}

// Expected holds the outcome checked after the run. Nil fields are not
// checked.
type Expected struct {
	Charging      [][]bool    `yaml:"charging,omitempty"`
	InService     [][]bool    `yaml:"in_service,omitempty"`
	Battery       [][]float64 `yaml:"battery,omitempty"`
	MinUsageTime  *int        `yaml:"min_usage_time,omitempty"`
	FairnessScore *float64    `yaml:"fairness_score,omitempty"`
	Forfeited     *int        `yaml:"forfeited,omitempty"`
}

type Scenario struct {
	Name         string      `yaml:"name"`
	Description  string      `yaml:"description,omitempty"`
	Mode         string      `yaml:"mode,omitempty"`
	Devices      []DeviceDef `yaml:"devices"`
	Sockets      int         `yaml:"sockets"`
	TotalTime    float64     `yaml:"total_time"`
	SlotDuration float64     `yaml:"slot_duration"`
	Expected     Expected    `yaml:"expected"`
}

func (sc *Scenario) Instance() model.Instance {
	devices := make([]model.Device, len(sc.Devices))
	for i, d := range sc.Devices {
		devices[i] = d.ToModel()
	}
	return model.Instance{
		Devices:      devices,
		Sockets:      sc.Sockets,
		TotalTime:    sc.TotalTime,
		SlotDuration: sc.SlotDuration,
	}
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
