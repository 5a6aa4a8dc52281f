package service

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/lyzr/crewledger/common/logger"
	"github.com/lyzr/crewledger/common/validation"
)

// PatchError reports an RFC 6902 patch that could not be decoded or applied
type PatchError struct {
	Err error
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("invalid patch: %v", e.Err)
}

func (e *PatchError) Unwrap() error {
	return e.Err
}

// PatchService applies JSON Patch documents to month edit forms
type PatchService struct {
	validator *validation.PatchValidator
	log       *logger.Logger
}

// NewPatchService creates a new patch service
func NewPatchService(log *logger.Logger) *PatchService {
	return &PatchService{
		validator: validation.NewPatchValidator(),
		log:       log,
	}
}

// Apply validates patchJSON and applies it to doc
func (s *PatchService) Apply(doc []byte, patchJSON []byte) ([]byte, error) {
	var operations []map[string]interface{}
	if err := json.Unmarshal(patchJSON, &operations); err != nil {
		return nil, &PatchError{Err: fmt.Errorf("patch must be an array of operations: %w", err)}
	}
	if err := s.validator.ValidateOperations(operations); err != nil {
		return nil, &PatchError{Err: err}
	}

	patch, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return nil, &PatchError{Err: fmt.Errorf("failed to decode patch: %w", err)}
	}

	s.log.Debug("applying patch", "operations", len(patch))

	modified, err := patch.Apply(doc)
	if err != nil {
		return nil, &PatchError{Err: fmt.Errorf("failed to apply patch operations: %w", err)}
	}
	return modified, nil
}
