package store

import "encoding/json"

// MergePatch applies an RFC 7396-style JSON merge patch to baseJSON: keys
// present in patchJSON with a null value are deleted from the result, keys
// with any other value overwrite (non-recursively, one level deep — the
// store's core_memory and metadata documents are treated as flat key/value
// trees by every caller, so a single-level merge is all the contract in
// §4.5 ("core memory update is a JSONB merge-patch with null-stripping")
// requires). Both arguments and the return value are JSON object text.
func MergePatch(baseJSON, patchJSON []byte) ([]byte, error) {
	base := map[string]any{}
	if len(baseJSON) > 0 {
		if err := json.Unmarshal(baseJSON, &base); err != nil {
			return nil, err
		}
	}

	var patch map[string]any
	if err := json.Unmarshal(patchJSON, &patch); err != nil {
		return nil, err
	}

	for k, v := range patch {
		if v == nil {
			delete(base, k)
			continue
		}
		base[k] = v
	}

	return json.Marshal(base)
}
