package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/rzbill/blocklog/internal/auth"
	"github.com/rzbill/blocklog/internal/eventlog"
	"github.com/rzbill/blocklog/internal/program"
	"github.com/rzbill/blocklog/internal/runtime"
	logpkg "github.com/rzbill/blocklog/pkg/log"
)

// maxInstructionBytes bounds raw instruction bodies: discriminator, key,
// length prefix and the largest accepted payload.
const maxInstructionBytes = 8 + 8 + 4 + eventlog.MaxEventBytes

// LogsController exposes the event log program over JSON.
type LogsController struct {
	prog   *program.Program
	logger logpkg.Logger
}

// NewLogsController creates a controller for rt's program.
func NewLogsController(rt *runtime.Runtime, logger logpkg.Logger) *LogsController {
	return &LogsController{prog: rt.Program(), logger: logger}
}

// RegisterRoutes registers event log routes with the given mux.
func (c *LogsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/logs/address", c.handleAddress)
	mux.HandleFunc("/v1/logs/create", c.handleCreate)
	mux.HandleFunc("/v1/logs/append", c.handleAppend)
	mux.HandleFunc("/v1/instructions", c.handleInstruction)
}

// handleAddress reports where the log for ?key= lives. No caller is needed.
func (c *LogsController) handleAddress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	key, err := strconv.ParseUint(r.URL.Query().Get("key"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid key")
		return
	}
	addr, tag, err := c.prog.Address(key)
	if err != nil {
		c.writeProgramError(w, err)
		return
	}
	writeJSON(w, addressResp{Key: key, Address: addr.String(), Tag: tag, ProgramID: c.prog.ID().String()})
}

// handleCreate expects {"key": n}. Returns 201 with the new log's address.
func (c *LogsController) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	addr, tag, err := c.prog.CreateLog(r.Context(), auth.CallerFrom(r.Context()), *req.Key)
	if err != nil {
		c.writeProgramError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(createResp{Key: *req.Key, Address: addr.String(), Tag: tag})
}

// handleAppend expects {"key": n, "payload": "<base64>"}. Returns the new length.
func (c *LogsController) handleAppend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req appendReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	n, err := c.prog.AppendEvent(r.Context(), auth.CallerFrom(r.Context()), *req.Key, req.Payload)
	if err != nil {
		c.writeProgramError(w, err)
		return
	}
	writeJSON(w, appendResp{Key: *req.Key, Len: n})
}

// handleInstruction executes a wire-encoded instruction from the raw body.
func (c *LogsController) handleInstruction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxInstructionBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(body) > maxInstructionBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "Instruction too large")
		return
	}
	res, err := c.prog.ProcessRaw(r.Context(), auth.CallerFrom(r.Context()), body)
	if err != nil {
		c.writeProgramError(w, err)
		return
	}
	writeJSON(w, instructionResp{
		Instruction: res.Instruction,
		Key:         res.Key,
		Address:     res.Address.String(),
		Tag:         res.Tag,
		Len:         res.Len,
	})
}

func (c *LogsController) writeProgramError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	pe, ok := program.AsError(err)
	if !ok {
		c.logger.Error("request failed", logpkg.Err(err))
		writeError(w, status, "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResp{
		Error: pe.Error(),
		Code:  uint32(pe.Code),
		Name:  pe.Code.Name(),
		Kind:  pe.Kind().String(),
	})
}
