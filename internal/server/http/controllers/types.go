package controllers

// Common request/response types for HTTP controllers

// createReq represents a request to create an event log.
type createReq struct {
	Key *uint64 `json:"key"`
}

// appendReq represents a request to append one event. Payload is base64 in JSON.
type appendReq struct {
	Key     *uint64 `json:"key"`
	Payload []byte  `json:"payload"`
}

type addressResp struct {
	Key       uint64 `json:"key"`
	Address   string `json:"address"`
	Tag       byte   `json:"tag"`
	ProgramID string `json:"program_id"`
}

type createResp struct {
	Key     uint64 `json:"key"`
	Address string `json:"address"`
	Tag     byte   `json:"tag"`
}

type appendResp struct {
	Key uint64 `json:"key"`
	Len int    `json:"len"`
}

type instructionResp struct {
	Instruction string `json:"instruction"`
	Key         uint64 `json:"key"`
	Address     string `json:"address,omitempty"`
	Tag         byte   `json:"tag,omitempty"`
	Len         int    `json:"len"`
}

// errorResp carries a program error. Code is stable across releases.
type errorResp struct {
	Error string `json:"error"`
	Code  uint32 `json:"code"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
}
