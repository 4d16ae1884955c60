package vk

// Button colors defined by the VK keyboard API.
const (
	ColorPrimary   = "primary"
	ColorSecondary = "secondary"
	ColorPositive  = "positive"
	ColorNegative  = "negative"
)

// Keyboard is the reply keyboard payload for messages.send.
type Keyboard struct {
	OneTime bool       `json:"one_time"`
	Buttons [][]Button `json:"buttons"`
}

type Button struct {
	Action ButtonAction `json:"action"`
	Color  string       `json:"color,omitempty"`
}

type ButtonAction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

// TextButton builds a plain text button.
func TextButton(label, color string) Button {
	return Button{
		Action: ButtonAction{Type: "text", Label: label},
		Color:  color,
	}
}
