package weights

import (
	"errors"
	"fmt"

	"github.com/agenthands/callrank/internal/core/model"
)

var ErrUnknownProfile = errors.New("unknown weight profile")

// DefaultPenalty is added for calls with a critical response time.
const DefaultPenalty = 5

// Table maps call variants to their complexity contribution. It is plain
// configuration data; scoring logic only reads it.
type Table struct {
	Remove                        float64 `toml:"remove" json:"remove"`
	AddNewService                 float64 `toml:"add_new_service" json:"add_new_service"`
	AddExistingEndpoint           float64 `toml:"add_existing_endpoint" json:"add_existing_endpoint"`
	UpdateCaller                  float64 `toml:"update_caller" json:"update_caller"`
	UpdateCallee                  float64 `toml:"update_callee" json:"update_callee"`
	UpdateCallerCallee            float64 `toml:"update_caller_callee" json:"update_caller_callee"`
	Common                        float64 `toml:"common" json:"common"`
	ResponsePenalty               float64 `toml:"response_penalty" json:"response_penalty"`
	AddNewVersionExistingService  float64 `toml:"add_new_version_existing_service" json:"add_new_version_existing_service"`
	AddNewEndpointExistingService float64 `toml:"add_new_endpoint_existing_service" json:"add_new_endpoint_existing_service"`
	AddNewEndpointExistingVersion float64 `toml:"add_new_endpoint_existing_version" json:"add_new_endpoint_existing_version"`
}

func Default() Table {
	return Table{
		Remove:              1,
		AddNewService:       3,
		AddExistingEndpoint: 1,
		UpdateCaller:        2,
		UpdateCallee:        2,
		UpdateCallerCallee:  2,
		Common:              0,
		ResponsePenalty:     DefaultPenalty,

		// these shouldn't occur for immutable services with a correct version migration
		AddNewVersionExistingService:  1,
		AddNewEndpointExistingService: 1,
		AddNewEndpointExistingVersion: 1,
	}
}

// Profiles is the number of preset weight profiles.
const Profiles = 4

// Profile returns one of the preset tables:
//
//	0: default
//	1: common calls count 1
//	2: as 1, and updates weigh as much as a new service
//	3: as 1, with higher scores for new functionality
func Profile(variant int) (Table, error) {
	t := Default()
	switch variant {
	case 0:
	case 1:
		t.Common = 1
	case 2:
		t.Common = 1
		t.UpdateCaller = 3
		t.UpdateCallee = 3
		t.UpdateCallerCallee = 3
	case 3:
		t.Common = 1
		t.AddNewService = 5
		t.AddExistingEndpoint = 2
		t.UpdateCaller = 3
		t.UpdateCallee = 3
		t.UpdateCallerCallee = 3
	default:
		return Table{}, fmt.Errorf("%w: %d", ErrUnknownProfile, variant)
	}
	return t, nil
}

// WithPenalty returns a copy of the table with another response penalty.
func (t Table) WithPenalty(penalty float64) Table {
	t.ResponsePenalty = penalty
	return t
}

func (t Table) Weight(call model.Call) float64 {
	switch c := call.(type) {
	case *model.DiffCall:
		return t.diffWeight(c.Type)
	case *model.UpdatedSourceVersion:
		return t.UpdateCaller
	case *model.UpdatedTargetVersion:
		return t.UpdateCallee
	case *model.UpdatedVersion:
		return t.UpdateCallerCallee
	case *model.CommonCall:
		return t.Common
	default:
		return 0
	}
}

func (t Table) diffWeight(typ model.DiffType) float64 {
	switch typ {
	case model.RemoveCall:
		return t.Remove
	case model.AddCallToNewService:
		return t.AddNewService
	case model.AddCallToExistingEndpoint:
		return t.AddExistingEndpoint
	case model.AddCallToNewVersionOfExistingService:
		return t.AddNewVersionExistingService
	case model.AddCallToNewEndpointOfExistingVersion:
		return t.AddNewEndpointExistingVersion
	case model.AddCallToNewEndpointOfExistingService:
		return t.AddNewEndpointExistingService
	default:
		return 0
	}
}

// Penalty is the response penalty for comparable calls with a critical
// response time, 0 otherwise.
func (t Table) Penalty(call model.Call) float64 {
	if c, ok := call.(model.ComparableCall); ok && c.HasCriticalResponseTime() {
		return t.ResponsePenalty
	}
	return 0
}

// Complexity is the weight of the call, plus its penalty if requested.
func (t Table) Complexity(call model.Call, includePenalty bool) float64 {
	if includePenalty {
		return t.Weight(call) + t.Penalty(call)
	}
	return t.Weight(call)
}
