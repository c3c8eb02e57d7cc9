package model

import "fmt"

type DiffType string

const (
	RemoveCall DiffType = "REMOVE_CALL"

	// adding a call to an endpoint that already existed in the baseline version
	AddCallToExistingEndpoint DiffType = "ADD_CALL_TO_EXISTING_ENDPOINT"

	// adding a call to a new endpoint of an already existing version of a service
	AddCallToNewEndpointOfExistingVersion DiffType = "ADD_CALL_TO_NEW_ENDPOINT_OF_EXISTING_VERSION"

	// the canary case: same endpoint, different version
	AddCallToNewVersionOfExistingService DiffType = "ADD_CALL_TO_NEW_VERSION_OF_EXISTING_SERVICE"

	// adding a call to a new endpoint of a new version of an existing service
	AddCallToNewEndpointOfExistingService DiffType = "ADD_CALL_TO_NEW_ENDPOINT_OF_EXISTING_SERVICE"

	AddCallToNewService DiffType = "ADD_CALL_TO_NEW_SERVICE"
)

var diffTypes = map[DiffType]bool{
	RemoveCall:                            true,
	AddCallToExistingEndpoint:             true,
	AddCallToNewEndpointOfExistingVersion: true,
	AddCallToNewVersionOfExistingService:  true,
	AddCallToNewEndpointOfExistingService: true,
	AddCallToNewService:                   true,
}

func (t DiffType) Valid() bool {
	return diffTypes[t]
}

// CallKind names the concrete call variant.
type CallKind string

const (
	KindDiff                 CallKind = "diff"
	KindCommon               CallKind = "common"
	KindUpdatedSourceVersion CallKind = "updated_source_version"
	KindUpdatedTargetVersion CallKind = "updated_target_version"
	KindUpdatedVersion       CallKind = "updated_version"
)

// Call is one directed, classified edge between two endpoints of the diffed
// architecture. The variants are closed: DiffCall, CommonCall,
// UpdatedSourceVersion, UpdatedTargetVersion and UpdatedVersion. Calls are
// compared by pointer identity, never by value.
type Call interface {
	Source() Endpoint
	Target() Endpoint
	Kind() CallKind
	String() string
	ShortString() string
	sealed()
}

// ComparableCall is a call present in both versions, carrying response time
// statistics.
type ComparableCall interface {
	Call
	ComparableStatistics
}

// Link is the endpoint pair shared by every call variant.
type Link struct {
	SourceEndpoint Endpoint `json:"source"`
	TargetEndpoint Endpoint `json:"target"`
}

func (l Link) Source() Endpoint { return l.SourceEndpoint }
func (l Link) Target() Endpoint { return l.TargetEndpoint }

func (l Link) String() string {
	return fmt.Sprintf("%s ==> %s", l.SourceEndpoint, l.TargetEndpoint)
}

func (l Link) ShortString() string {
	return fmt.Sprintf("%s - %s ==> %s - %s",
		l.SourceEndpoint.Version, l.SourceEndpoint.Endpoint,
		l.TargetEndpoint.Version, l.TargetEndpoint.Endpoint)
}

// Measured delegates the response time questions to the attached statistics.
// A call without statistics is never critical.
type Measured struct {
	Stats ComparableStatistics `json:"-"`
}

func (m Measured) HasCriticalResponseTime() bool {
	return m.Stats != nil && m.Stats.HasCriticalResponseTime()
}

func (m Measured) MaxNegativeDeviation() float64 {
	if m.Stats == nil {
		return 0
	}
	return m.Stats.MaxNegativeDeviation()
}

func (m Measured) IsDeviationWithinBoundary(boundary float64) bool {
	return m.Stats != nil && m.Stats.IsDeviationWithinBoundary(boundary)
}

// DiffCall is a structurally changed call: it exists in only one version.
type DiffCall struct {
	Link
	Type  DiffType
	Stats SimpleStatistics
}

func NewDiffCall(source, target Endpoint, typ DiffType, stats SimpleStatistics) *DiffCall {
	return &DiffCall{Link: Link{source, target}, Type: typ, Stats: stats}
}

func (c *DiffCall) Kind() CallKind { return KindDiff }
func (c *DiffCall) sealed()        {}

func (c *DiffCall) String() string {
	return fmt.Sprintf("%s: %s", c.Type, c.Link.String())
}

func (c *DiffCall) ShortString() string {
	return fmt.Sprintf("%s: %s", c.Type, c.Link.ShortString())
}

// IsAddition reports whether the call was introduced by the new version.
func (c *DiffCall) IsAddition() bool {
	return c.Type != RemoveCall
}

// CommonCall is unchanged between the versions.
type CommonCall struct {
	Link
	Measured
}

func NewCommonCall(source, target Endpoint, stats ComparableStatistics) *CommonCall {
	return &CommonCall{Link: Link{source, target}, Measured: Measured{stats}}
}

func (c *CommonCall) Kind() CallKind { return KindCommon }
func (c *CommonCall) sealed()        {}

func (c *CommonCall) String() string {
	return "Common: " + c.Link.String()
}

func (c *CommonCall) ShortString() string {
	return "Common: " + c.Link.ShortString()
}

// UpdatedSourceVersion is a call whose caller moved to a new version.
type UpdatedSourceVersion struct {
	Link
	Measured
	OldSourceVersion string
}

func NewUpdatedSourceVersion(source, target Endpoint, oldSourceVersion string, stats ComparableStatistics) *UpdatedSourceVersion {
	return &UpdatedSourceVersion{Link: Link{source, target}, Measured: Measured{stats}, OldSourceVersion: oldSourceVersion}
}

func (c *UpdatedSourceVersion) Kind() CallKind { return KindUpdatedSourceVersion }
func (c *UpdatedSourceVersion) sealed()        {}

// OldEndpoint is the caller before the migration.
func (c *UpdatedSourceVersion) OldEndpoint() Endpoint {
	return c.SourceEndpoint.WithVersion(c.OldSourceVersion)
}

func (c *UpdatedSourceVersion) String() string {
	return "UpdatedSourceVersion: " + c.Link.String()
}

func (c *UpdatedSourceVersion) ShortString() string {
	return "UpdatedSourceVersion: " + c.Link.ShortString()
}

// UpdatedTargetVersion is a call whose callee moved to a new version.
type UpdatedTargetVersion struct {
	Link
	Measured
	OldTargetVersion string
}

func NewUpdatedTargetVersion(source, target Endpoint, oldTargetVersion string, stats ComparableStatistics) *UpdatedTargetVersion {
	return &UpdatedTargetVersion{Link: Link{source, target}, Measured: Measured{stats}, OldTargetVersion: oldTargetVersion}
}

func (c *UpdatedTargetVersion) Kind() CallKind { return KindUpdatedTargetVersion }
func (c *UpdatedTargetVersion) sealed()        {}

// OldEndpoint is the callee the call reached before the migration.
func (c *UpdatedTargetVersion) OldEndpoint() Endpoint {
	return c.TargetEndpoint.WithVersion(c.OldTargetVersion)
}

func (c *UpdatedTargetVersion) String() string {
	return "UpdatedTargetVersion: " + c.Link.String()
}

func (c *UpdatedTargetVersion) ShortString() string {
	return "UpdatedTargetVersion: " + c.Link.ShortString()
}

// UpdatedVersion is a call where both caller and callee changed version.
type UpdatedVersion struct {
	Link
	Measured
	OldSourceVersion string
	OldTargetVersion string
}

func NewUpdatedVersion(source, target Endpoint, oldSourceVersion, oldTargetVersion string, stats ComparableStatistics) *UpdatedVersion {
	return &UpdatedVersion{
		Link:             Link{source, target},
		Measured:         Measured{stats},
		OldSourceVersion: oldSourceVersion,
		OldTargetVersion: oldTargetVersion,
	}
}

func (c *UpdatedVersion) Kind() CallKind { return KindUpdatedVersion }
func (c *UpdatedVersion) sealed()        {}

// OldEndpoint is the prior callee, same as OldTargetEndpoint.
func (c *UpdatedVersion) OldEndpoint() Endpoint {
	return c.OldTargetEndpoint()
}

func (c *UpdatedVersion) OldSourceEndpoint() Endpoint {
	return c.SourceEndpoint.WithVersion(c.OldSourceVersion)
}

func (c *UpdatedVersion) OldTargetEndpoint() Endpoint {
	return c.TargetEndpoint.WithVersion(c.OldTargetVersion)
}

func (c *UpdatedVersion) String() string {
	return "UpdatedVersion: " + c.Link.String()
}

func (c *UpdatedVersion) ShortString() string {
	return "UpdatedVersion: " + c.Link.ShortString()
}

// MigrationTarget returns the endpoint a call reached before a callee version
// migration. Only UpdatedTargetVersion and UpdatedVersion have one.
func MigrationTarget(c Call) (Endpoint, bool) {
	switch v := c.(type) {
	case *UpdatedTargetVersion:
		return v.OldEndpoint(), true
	case *UpdatedVersion:
		return v.OldTargetEndpoint(), true
	default:
		return Endpoint{}, false
	}
}
