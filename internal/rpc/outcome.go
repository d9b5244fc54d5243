package rpc

// Outcome is the success result of an action. Empty Content means the action
// succeeded with nothing further to show.
type Outcome struct {
	Content string
}

func NoContent() Outcome {
	return Outcome{}
}

func Content(text string) Outcome {
	return Outcome{Content: text}
}

func (o Outcome) HasContent() bool {
	return o.Content != ""
}
