package driver

const (
	DeleteScenarioQuery = `
		MATCH (n:Endpoint {scenario: $scenario})
		DETACH DELETE n
	`

	SaveEndpointQuery = `
		MERGE (n:Endpoint {scenario: $scenario, service: $service, version: $version, endpoint: $endpoint})
		SET n.idx = $idx,
			n.saved_at = $saved_at
		RETURN n.idx AS idx
	`

	SaveCallQuery = `
		MATCH (source:Endpoint {scenario: $scenario, service: $source_service, version: $source_version, endpoint: $source_endpoint})
		MATCH (target:Endpoint {scenario: $scenario, service: $target_service, version: $target_version, endpoint: $target_endpoint})
		CREATE (source)-[c:CALLS {scenario: $scenario, seq: $seq}]->(target)
		SET c.kind = $kind,
			c.diff_type = $diff_type,
			c.old_source_version = $old_source_version,
			c.old_target_version = $old_target_version,
			c.has_stats = $has_stats,
			c.critical = $critical,
			c.max_deviation = $max_deviation,
			c.call_count = $call_count
		RETURN c.seq AS seq
	`

	GetScenarioEndpointsQuery = `
		MATCH (n:Endpoint {scenario: $scenario})
		RETURN n.service AS service, n.version AS version, n.endpoint AS endpoint
		ORDER BY n.idx
	`

	GetScenarioCallsQuery = `
		MATCH (s:Endpoint {scenario: $scenario})-[c:CALLS {scenario: $scenario}]->(t:Endpoint {scenario: $scenario})
		RETURN s.service AS source_service, s.version AS source_version, s.endpoint AS source_endpoint,
			t.service AS target_service, t.version AS target_version, t.endpoint AS target_endpoint,
			c.kind AS kind, c.diff_type AS diff_type,
			c.old_source_version AS old_source_version, c.old_target_version AS old_target_version,
			c.has_stats AS has_stats, c.critical AS critical,
			c.max_deviation AS max_deviation, c.call_count AS call_count
		ORDER BY c.seq
	`

	ListScenariosQuery = `
		MATCH (n:Endpoint)
		RETURN DISTINCT n.scenario AS scenario
		ORDER BY scenario
	`
)
