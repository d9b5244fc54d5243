package model

import (
	"encoding/json"
	"time"
)

type RPCLog struct {
	ID        string
	Method    string
	UserID    string
	Data      json.RawMessage
	CreatedAt time.Time
}
