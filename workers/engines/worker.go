package engines

type Worker interface {
	Process(payload []byte) error
}

const (
	MatchingJobKind   = "matching"
	SettlementJobKind = "settlement"
)
