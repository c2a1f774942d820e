package app

import (
	"encoding/json"
	"fmt"

	"github.com/hyperifyio/laudo/internal/record"
)

// parseCasePatch checks that patch is a JSON object whose present fields fit
// the case record.
func parseCasePatch(patch []byte) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(patch, &doc); err != nil || doc == nil {
		return nil, fmt.Errorf("%w: case patch must be a JSON object", ErrInvalidInput)
	}
	var typed record.CaseRecord
	if err := json.Unmarshal(patch, &typed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if typed.Status != "" && !typed.Status.Valid() {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, typed.Status)
	}
	return doc, nil
}

// mergeCase applies a JSON merge patch to rec. Absent keys keep their value,
// null clears it and objects merge recursively.
func mergeCase(rec record.CaseRecord, patch map[string]any) (record.CaseRecord, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return rec, err
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return rec, err
	}
	mergePatch(doc, patch)
	b, err = json.Marshal(doc)
	if err != nil {
		return rec, err
	}
	var out record.CaseRecord
	if err := json.Unmarshal(b, &out); err != nil {
		return rec, err
	}
	return out, nil
}

func mergePatch(target, patch map[string]any) {
	for key, val := range patch {
		if val == nil {
			delete(target, key)
			continue
		}
		pm, ok := val.(map[string]any)
		if !ok {
			target[key] = val
			continue
		}
		if tm, ok := target[key].(map[string]any); ok {
			mergePatch(tm, pm)
			continue
		}
		fresh := map[string]any{}
		mergePatch(fresh, pm)
		target[key] = fresh
	}
}
