package service

import (
	"context"

	"brewing_control/internal/models"
)

// Actuator kinds in the bank.
const (
	KindHeater = "heater"
	KindFluid  = "fluid"
)

// RecipeStatus is the recipe together with where the process is in it.
type RecipeStatus struct {
	Recipe  models.Recipe  `json:"recipe"`
	Process models.Process `json:"process"`
}

// ActuatorState describes one entry of the actuator bank. Index is the zone
// for heaters and the fluid actuator index for everything else.
type ActuatorState struct {
	Bank  int    `json:"bank"`
	Kind  string `json:"kind"`
	Index int    `json:"index"`
	On    bool   `json:"on"`
}

type MonitoringService struct {
	engine Engine
}

func NewMonitoringService(engine Engine) *MonitoringService {
	return &MonitoringService{engine: engine}
}

// GetState returns the latest published snapshot.
func (s *MonitoringService) GetState(ctx context.Context) (models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return models.Snapshot{}, err
	}
	return s.engine.Current(), nil
}

func (s *MonitoringService) RecipeStatus(ctx context.Context) (RecipeStatus, error) {
	snap, err := s.GetState(ctx)
	if err != nil {
		return RecipeStatus{}, err
	}
	return RecipeStatus{Recipe: snap.Recipe, Process: snap.Process}, nil
}

// Actuators labels the bank: heaters first, fluid actuators after.
func (s *MonitoringService) Actuators(ctx context.Context) ([]ActuatorState, error) {
	snap, err := s.GetState(ctx)
	if err != nil {
		return nil, err
	}
	zones := s.engine.Layout().Zones
	out := make([]ActuatorState, len(snap.Actuators))
	for i, on := range snap.Actuators {
		st := ActuatorState{Bank: i, Kind: KindHeater, Index: i, On: on}
		if i >= zones {
			st.Kind = KindFluid
			st.Index = i - zones
		}
		out[i] = st
	}
	return out, nil
}

// Watch subscribes to the snapshot stream. The first value is the current snapshot.
func (s *MonitoringService) Watch() Stream {
	return s.engine.Subscribe()
}
