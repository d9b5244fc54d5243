package dto

type RPCRequest struct {
	Method string            `json:"method"`
	Fields map[string]string `json:"fields"`
}

// RPCResponse is the terminal result of one direct invocation. Context is
// null when the action had nothing further to report.
type RPCResponse struct {
	Done    bool    `json:"done"`
	Reason  string  `json:"reason"`
	Context *string `json:"context"`
}

type FieldSchema struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Kind        string `json:"kind"`
	Placeholder string `json:"placeholder,omitempty"`
	Paragraph   bool   `json:"paragraph"`
}

type MethodSchema struct {
	Method string        `json:"method"`
	Title  string        `json:"title"`
	Fields []FieldSchema `json:"fields"`
}

type MethodsResponse struct {
	Items []MethodSchema `json:"items"`
}
