package domain

// State is the conversational state of a user, derived from their session:
// a user with an assigned question is Attempting, everyone else is Choosing.
type State int

const (
	// Choosing means the user has no active question and may request one.
	Choosing State = iota
	// Attempting means a question is assigned and free text is treated as an answer.
	Attempting
)

func (s State) String() string {
	if s == Attempting {
		return "attempting"
	}
	return "choosing"
}

// Question is a single quiz entry. Answer holds the canonical comparison form
// produced at ingestion time (see corpus.NormalizeAnswer).
type Question struct {
	ID     string `json:"-"`
	Prompt string `json:"question"`
	Answer string `json:"answer"`
}

// Session records the question currently assigned to a user, if any.
type Session struct {
	LastQuestion string `json:"last_question"`
}

// Message is a single inbound chat event, already stripped of transport detail.
// UserKey is the platform-prefixed identifier under which the session is kept
// (e.g. "tg_user_123"). DisplayName is optional and only used for greetings.
type Message struct {
	UserKey     string
	DisplayName string
	Text        string
}

// Reply is what the engine wants said back to the user. Keyboard lists the
// reply buttons to offer, in order; RemoveKeyboard asks the transport to drop
// any previously shown keyboard.
type Reply struct {
	Text           string
	Keyboard       []string
	RemoveKeyboard bool
}
