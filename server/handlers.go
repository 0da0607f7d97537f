package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rushteam/placekit/core"
)

var (
	errEmptyBody = core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "request body is empty")
	errNotObject = core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "request body must be a JSON object")
	errTooLarge  = core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "request body too large")
)

// POST /predict
func (s *Server) predict(c *gin.Context) {
	raw, err := decodeProfile(c.Request.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := s.svc.Predict(c.Request.Context(), raw)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// GET /branches
func (s *Server) branches(c *gin.Context) {
	respondOK(c, gin.H{"branches": s.svc.Branches()})
}

// GET /health
func (s *Server) health(c *gin.Context) {
	respondOK(c, s.svc.Health())
}

// decodeProfile 解析请求体，只接受 JSON 对象
func decodeProfile(body io.Reader) (core.RawProfile, error) {
	if body == nil {
		return nil, errEmptyBody
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errTooLarge
		}
		return nil, core.WrapDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "failed to read request body", err)
	}
	if len(data) == 0 {
		return nil, errEmptyBody
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, core.WrapDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "malformed JSON: "+err.Error(), err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return core.RawProfile(obj), nil
}
