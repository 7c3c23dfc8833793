package game

// MessageKind classifies a line of player-facing output so front ends can
// style it.
type MessageKind int

const (
	Info MessageKind = iota
	Warning
	Retry
	Damage
	Event
	GameOver
)

func (k MessageKind) String() string {
	switch k {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Retry:
		return "retry"
	case Damage:
		return "damage"
	case Event:
		return "event"
	case GameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Message is one line of output for the player.
type Message struct {
	Kind MessageKind
	Text string
}

// Step is the result of feeding one input line to a Session.
type Step struct {
	Messages  []Message
	RoundOver bool
	Outcome   Outcome
}

// LineReader supplies player input one line at a time.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Reporter receives player-facing output.
type Reporter interface {
	Report(msgs ...Message) error
}

func info(text string) Message     { return Message{Kind: Info, Text: text} }
func warning(text string) Message  { return Message{Kind: Warning, Text: text} }
func damage(text string) Message   { return Message{Kind: Damage, Text: text} }
func event(text string) Message    { return Message{Kind: Event, Text: text} }
func gameOver(text string) Message { return Message{Kind: GameOver, Text: text} }

func retry(texts ...string) []Message {
	msgs := make([]Message, len(texts))
	for i, t := range texts {
		msgs[i] = Message{Kind: Retry, Text: t}
	}
	return msgs
}
