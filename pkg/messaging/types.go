package messaging

type ChangeTopic string

const (
	// DataUpdated carries types.DataUpdate whenever municipality files are regenerated.
	DataUpdated ChangeTopic = "data_updated"
	Tracking    ChangeTopic = "tracking"
)
