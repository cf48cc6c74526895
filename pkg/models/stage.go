package models

// Stage names the parser that consumes a fetched page.
type Stage int

const (
	StageMovie Stage = iota
	StageCastList
	StageActor
)

func (s Stage) String() string {
	switch s {
	case StageMovie:
		return "movie"
	case StageCastList:
		return "cast"
	case StageActor:
		return "actor"
	default:
		return "unknown"
	}
}
