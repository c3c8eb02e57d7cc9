package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoint(t *testing.T) {
	e := Endpoint{Service: "orders", Version: "v2", Endpoint: "checkout"}
	assert.Equal(t, "orders/v2/checkout", e.String())
	assert.Equal(t, Endpoint{Service: "orders", Version: "v1", Endpoint: "checkout"}, e.WithVersion("v1"))
}

func TestCall_Strings(t *testing.T) {
	src := Endpoint{Service: "a", Version: "v1", Endpoint: "x"}
	dst := Endpoint{Service: "b", Version: "v2", Endpoint: "y"}

	diff := NewDiffCall(src, dst, AddCallToNewService, nil)
	assert.Equal(t, "ADD_CALL_TO_NEW_SERVICE: a/v1/x ==> b/v2/y", diff.String())
	assert.Equal(t, "ADD_CALL_TO_NEW_SERVICE: v1 - x ==> v2 - y", diff.ShortString())
	assert.Equal(t, KindDiff, diff.Kind())

	common := NewCommonCall(src, dst, nil)
	assert.Equal(t, "Common: a/v1/x ==> b/v2/y", common.String())
	assert.Equal(t, "UpdatedTargetVersion: v1 - x ==> v2 - y", NewUpdatedTargetVersion(src, dst, "v1", nil).ShortString())
	assert.Equal(t, KindCommon, common.Kind())
}

func TestCall_OldEndpoints(t *testing.T) {
	src := Endpoint{Service: "a", Version: "v2", Endpoint: "/x"}
	dst := Endpoint{Service: "b", Version: "v3", Endpoint: "/y"}

	caller := NewUpdatedSourceVersion(src, dst, "v1", nil)
	assert.Equal(t, src.WithVersion("v1"), caller.OldEndpoint())
	_, ok := MigrationTarget(caller)
	assert.False(t, ok, "a caller migration keeps its destination")

	callee := NewUpdatedTargetVersion(src, dst, "v2", nil)
	assert.Equal(t, dst.WithVersion("v2"), callee.OldEndpoint())
	old, ok := MigrationTarget(callee)
	assert.True(t, ok)
	assert.Equal(t, dst.WithVersion("v2"), old)

	both := NewUpdatedVersion(src, dst, "v1", "v2", nil)
	assert.Equal(t, src.WithVersion("v1"), both.OldSourceEndpoint())
	assert.Equal(t, dst.WithVersion("v2"), both.OldTargetEndpoint())
	old, ok = MigrationTarget(both)
	assert.True(t, ok)
	assert.Equal(t, dst.WithVersion("v2"), old)

	_, ok = MigrationTarget(NewCommonCall(src, dst, nil))
	assert.False(t, ok)
}

func TestDiffCall_IsAddition(t *testing.T) {
	for typ := range diffTypes {
		call := NewDiffCall(Endpoint{}, Endpoint{}, typ, nil)
		assert.Equal(t, typ != RemoveCall, call.IsAddition(), string(typ))
		assert.True(t, typ.Valid())
	}
	assert.False(t, DiffType("MOVE_CALL").Valid())
}

func TestMeasured(t *testing.T) {
	var none Measured
	assert.False(t, none.HasCriticalResponseTime())
	assert.Zero(t, none.MaxNegativeDeviation())
	assert.False(t, none.IsDeviationWithinBoundary(10))

	call := NewCommonCall(Endpoint{}, Endpoint{}, SimulatedComparison{Critical: true, MaxDeviation: 100})
	var cc ComparableCall = call
	assert.True(t, cc.HasCriticalResponseTime())
	assert.Equal(t, 100.0, cc.MaxNegativeDeviation())
}

func TestSimulatedComparison_Boundary(t *testing.T) {
	s := SimulatedComparison{MaxDeviation: 100}

	assert.True(t, s.IsDeviationWithinBoundary(100))
	assert.True(t, s.IsDeviationWithinBoundary(96))
	assert.True(t, s.IsDeviationWithinBoundary(104))
	assert.False(t, s.IsDeviationWithinBoundary(90))
	assert.False(t, s.IsDeviationWithinBoundary(110))
}

func TestEdgeSet_Order(t *testing.T) {
	set := make(EdgeSet)
	mk := func(src, dst string) Call {
		return NewCommonCall(Endpoint{Service: src}, Endpoint{Service: dst}, nil)
	}

	cb := mk("c", "b")
	ab2 := mk("a", "b")
	ac := mk("a", "c")
	ab1 := mk("a", "b")
	for _, c := range []Call{cb, ab2, ac, ab1} {
		set.Add(c)
	}

	edges := set.Edges()
	require.Len(t, edges, 3)
	assert.Equal(t, "a", edges[0].SourceService)
	assert.Equal(t, "b", edges[0].TargetService)
	assert.Equal(t, "c", edges[1].TargetService)
	assert.Equal(t, "c", edges[2].SourceService)

	assert.Equal(t, []Call{ab2, ab1, ac, cb}, set.Calls())
}

func TestGraph_Services(t *testing.T) {
	g := NewGraph()
	g.Endpoints = []Endpoint{
		{Service: "b", Version: "v1", Endpoint: "/1"},
		{Service: "a", Version: "v1", Endpoint: "/1"},
		{Service: "b", Version: "v2", Endpoint: "/1"},
	}
	assert.Equal(t, []string{"b", "a"}, g.Services())
}

func TestSeverityLevel_JSON(t *testing.T) {
	data, err := json.Marshal(map[string]SeverityLevel{"level": SeverityMedium})
	require.NoError(t, err)
	assert.JSONEq(t, `{"level":"MEDIUM"}`, string(data))
	assert.Equal(t, "NONE", SeverityNone.String())
}

func TestRankingScore_Reached(t *testing.T) {
	assert.True(t, NewRankingScore(nil, 0).Reached())
	assert.False(t, NewRankingScore(nil, UnreachedScore).Reached())
}

func TestRankingScore_JSON(t *testing.T) {
	src := Endpoint{Service: "a", Version: "v1", Endpoint: "x"}
	dst := Endpoint{Service: "b", Version: "v1", Endpoint: "y"}
	s := NewRankingScore(NewDiffCall(src, dst, RemoveCall, nil), 2.5)
	s.Level = SeverityHigh

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"call": "REMOVE_CALL: a/v1/x ==> b/v1/y",
		"kind": "diff",
		"source": {"service": "a", "version": "v1", "endpoint": "x"},
		"target": {"service": "b", "version": "v1", "endpoint": "y"},
		"score": 2.5,
		"level": "HIGH"
	}`, string(data))
}
