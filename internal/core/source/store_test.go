package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/callrank/internal/driver"
)

type recordedQuery struct {
	Query  string
	Params map[string]interface{}
}

type MockDriver struct {
	Queries []recordedQuery
	Results map[string]neo4j.EagerResult
	Err     error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Queries = append(m.Queries, recordedQuery{Query: query, Params: params})
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.Results[query], nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

func (m *MockDriver) paramsOf(query string) []map[string]interface{} {
	var out []map[string]interface{}
	for _, q := range m.Queries {
		if q.Query == query {
			out = append(out, q.Params)
		}
	}
	return out
}

// recordsOf turns saved parameters into the rows Memgraph would return,
// with integers widened to int64 the way the driver decodes them.
func recordsOf(rows []map[string]interface{}, keys ...string) []*neo4j.Record {
	var records []*neo4j.Record
	for _, row := range rows {
		values := make([]any, len(keys))
		for i, k := range keys {
			v := row[k]
			if n, ok := v.(int); ok {
				v = int64(n)
			}
			values[i] = v
		}
		records = append(records, &neo4j.Record{Keys: keys, Values: values})
	}
	return records
}

func fixedStore(d driver.GraphDriver) *Store {
	s := NewStore(d, nil)
	s.Now = func() time.Time { return time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	doc := decodeSample(t)

	writer := &MockDriver{}
	require.NoError(t, fixedStore(writer).Save(ctx, "checkout-v2", doc))

	require.NotEmpty(t, writer.Queries)
	assert.Equal(t, driver.DeleteScenarioQuery, writer.Queries[0].Query)

	endpoints := writer.paramsOf(driver.SaveEndpointQuery)
	require.Len(t, endpoints, 4)
	assert.Equal(t, "checkout-v2", endpoints[0]["scenario"])
	assert.Equal(t, "2026-10-01T12:00:00Z", endpoints[0]["saved_at"])

	calls := writer.paramsOf(driver.SaveCallQuery)
	require.Len(t, calls, 3)
	assert.Equal(t, 0, calls[0]["seq"])
	assert.Equal(t, "updated_target_version", calls[0]["kind"])
	assert.Equal(t, "v1", calls[0]["old_target_version"])
	assert.Equal(t, 42.5, calls[0]["max_deviation"])
	assert.Equal(t, "ADD_CALL_TO_NEW_SERVICE", calls[1]["diff_type"])
	assert.Equal(t, false, calls[2]["has_stats"])

	// replay the saved rows as query results
	for i := range endpoints {
		endpoints[i] = map[string]interface{}{
			"service":  endpoints[i]["service"],
			"version":  endpoints[i]["version"],
			"endpoint": endpoints[i]["endpoint"],
		}
	}
	reader := &MockDriver{Results: map[string]neo4j.EagerResult{
		driver.GetScenarioEndpointsQuery: {Records: recordsOf(endpoints, "service", "version", "endpoint")},
		driver.GetScenarioCallsQuery: {Records: recordsOf(calls,
			"source_service", "source_version", "source_endpoint",
			"target_service", "target_version", "target_endpoint",
			"kind", "diff_type", "old_source_version", "old_target_version",
			"has_stats", "critical", "max_deviation", "call_count")},
	}}

	loaded, err := fixedStore(reader).Load(ctx, "checkout-v2")
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)
	assert.Equal(t, "checkout-v2", reader.Queries[0].Params["scenario"])
}

func TestStore_LoadMissingScenario(t *testing.T) {
	_, err := fixedStore(&MockDriver{}).Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrScenarioNotFound)
}

func TestStore_SaveRejectsInvalidDocuments(t *testing.T) {
	ctx := context.Background()

	m := &MockDriver{}
	err := fixedStore(m).Save(ctx, "", decodeSample(t))
	assert.ErrorIs(t, err, ErrInvalidDocument)

	doc := decodeSample(t)
	doc.Endpoints = doc.Endpoints[1:]
	err = fixedStore(m).Save(ctx, "broken", doc)
	assert.ErrorIs(t, err, ErrInvalidDocument)
	assert.Empty(t, m.Queries)
}

func TestStore_DriverError(t *testing.T) {
	boom := errors.New("connection refused")
	m := &MockDriver{Err: boom}

	err := fixedStore(m).Save(context.Background(), "s", decodeSample(t))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, m.Queries, 1)

	_, err = fixedStore(m).Load(context.Background(), "s")
	assert.ErrorIs(t, err, boom)
}

func TestStore_List(t *testing.T) {
	m := &MockDriver{Results: map[string]neo4j.EagerResult{
		driver.ListScenariosQuery: {Records: recordsOf([]map[string]interface{}{
			{"scenario": "a"}, {"scenario": "b"},
		}, "scenario")},
	}}

	scenarios, err := fixedStore(m).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, scenarios)
}
