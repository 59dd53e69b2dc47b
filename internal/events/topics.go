package events

const (
	TopicSessionState = "session.state"
	TopicRawFrameIn   = "frame.raw.in"
	TopicCommandOut   = "command.out"
	TopicFrameStats   = "frame.stats"
)
