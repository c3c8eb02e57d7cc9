package model

import "encoding/json"

type SeverityLevel int

const (
	SeverityNone SeverityLevel = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
)

func (l SeverityLevel) String() string {
	switch l {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	default:
		return "NONE"
	}
}

func (l SeverityLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnreachedScore marks calls never reached from the target service.
const UnreachedScore = -1

// RankingScore is the score of one call. Level is only meaningful once every
// score of a run is known.
type RankingScore struct {
	Call  Call
	Score float64
	Level SeverityLevel
}

func NewRankingScore(call Call, score float64) *RankingScore {
	return &RankingScore{Call: call, Score: score, Level: SeverityNone}
}

func (s *RankingScore) Reached() bool {
	return s.Score >= 0
}

func (s *RankingScore) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Call   string        `json:"call"`
		Kind   CallKind      `json:"kind"`
		Source Endpoint      `json:"source"`
		Target Endpoint      `json:"target"`
		Score  float64       `json:"score"`
		Level  SeverityLevel `json:"level"`
	}{
		Call:   s.Call.String(),
		Kind:   s.Call.Kind(),
		Source: s.Call.Source(),
		Target: s.Call.Target(),
		Score:  s.Score,
		Level:  s.Level,
	})
}
